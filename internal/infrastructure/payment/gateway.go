package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrSignatureMismatch = errors.New("payment signature mismatch")

type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
}

// GatewayOrder is the order object exactly as the gateway returned it.
type GatewayOrder map[string]any

func (o GatewayOrder) ID() string {
	id, _ := o["id"].(string)
	return id
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) error
}

// Sign computes the checkout callback signature: hex(HMAC-SHA256(secret, orderID|paymentID)).
func Sign(secret, orderID, paymentID string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(orderID))
	m.Write([]byte("|"))
	m.Write([]byte(paymentID))
	return hex.EncodeToString(m.Sum(nil))
}

func verify(secret, orderID, paymentID, signature string) error {
	expected := Sign(secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
