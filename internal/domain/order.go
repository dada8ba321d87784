package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Currency       = "INR"
	DefaultProduct = "Unnamed product"

	// createdAtLayout matches the format the checkout frontend already renders.
	createdAtLayout = "02 January 2006 03:04 PM"
)

type Order struct {
	ID               uuid.UUID       `json:"id"`
	Product          string          `json:"product"`
	Amount           decimal.Decimal `json:"amount"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	IsPaid           bool            `json:"is_paid"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}

// AmountMinor returns the amount in paise.
func (o *Order) AmountMinor() int64 {
	return o.Amount.Shift(2).IntPart()
}

// OrderView is the public representation returned by the HTTP API.
type OrderView struct {
	ID             string `json:"id"`
	Amount         string `json:"order_amount"`
	GatewayOrderID string `json:"order_payment_id"`
	Product        string `json:"order_product"`
	IsPaid         bool   `json:"isPaid"`
	CreatedAt      string `json:"created_at"`
}

func (o *Order) View() OrderView {
	return OrderView{
		ID:             o.ID.String(),
		Amount:         o.Amount.StringFixed(2),
		GatewayOrderID: o.GatewayOrderID,
		Product:        o.Product,
		IsPaid:         o.IsPaid,
		CreatedAt:      o.CreatedAt.Format(createdAtLayout),
	}
}
