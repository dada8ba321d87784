package payment

import (
	"context"
	"errors"
	"maps"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrGatewayUnavailable = errors.New("gateway unavailable")

// MockGateway is an in-memory stand-in for Razorpay. It signs callbacks with the
// same scheme, so orders it creates can be confirmed end to end.
type MockGateway struct {
	mu          sync.RWMutex
	secret      string
	failureRate int
	orders      map[string]GatewayOrder
}

type MockOption func(*MockGateway)

// WithFailureRate makes CreateOrder fail for roughly percent% of calls.
func WithFailureRate(percent int) MockOption {
	return func(m *MockGateway) { m.failureRate = percent }
}

func NewMockGateway(secret string, opts ...MockOption) *MockGateway {
	m := &MockGateway{secret: secret, orders: make(map[string]GatewayOrder)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failureRate > 0 && rand.IntN(100) < m.failureRate {
		return nil, ErrGatewayUnavailable
	}

	id := "order_" + randomRef()
	order := GatewayOrder{
		"id":          id,
		"entity":      "order",
		"amount":      req.AmountMinor,
		"amount_paid": 0,
		"amount_due":  req.AmountMinor,
		"currency":    req.Currency,
		"receipt":     req.Receipt,
		"status":      "created",
		"attempts":    0,
		"created_at":  time.Now().Unix(),
	}

	m.mu.Lock()
	m.orders[id] = order
	m.mu.Unlock()
	return maps.Clone(order), nil
}

func (m *MockGateway) VerifySignature(orderID, paymentID, signature string) error {
	return verify(m.secret, orderID, paymentID, signature)
}

// Pay simulates the customer completing checkout and returns the callback
// fields the frontend would post back.
func (m *MockGateway) Pay(orderID string) (paymentID, signature string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return "", "", errors.New("unknown gateway order")
	}
	order["status"] = "paid"
	order["amount_paid"] = order["amount"]
	order["amount_due"] = 0

	paymentID = "pay_" + randomRef()
	return paymentID, Sign(m.secret, orderID, paymentID), nil
}

func (m *MockGateway) Order(orderID string) (GatewayOrder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	return maps.Clone(o), ok
}

func randomRef() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
