package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"razorpay-checkout/internal/domain"
	"razorpay-checkout/internal/infrastructure/payment"
	"razorpay-checkout/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrGateway          = errors.New("payment gateway error")
	ErrMalformedPayload = errors.New("malformed payment payload")
	ErrOrderNotFound    = errors.New("order not found")
	ErrSignatureInvalid = errors.New("payment signature verification failed")
)

// maxAmount keeps amounts inside NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

const maxProductLen = 100

type OrderService interface {
	StartPayment(ctx context.Context, amount, product string) (*StartResult, error)
	ConfirmPayment(ctx context.Context, payload []byte) (*ConfirmResult, error)
}

type StartResult struct {
	Payment payment.GatewayOrder
	Order   *domain.Order
}

type ConfirmResult struct {
	Order       *domain.Order
	AlreadyPaid bool
}

// Callback holds the fields the checkout widget posts back after payment.
type Callback struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type orderService struct {
	orderRepo  repo.OrderRepo
	paymentGtw payment.PaymentGateway
	logger     *zap.Logger
	now        func() time.Time
}

func NewOrderService(
	orderRepo repo.OrderRepo,
	paymentGtw payment.PaymentGateway,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		paymentGtw: paymentGtw,
		logger:     logger,
		now:        time.Now,
	}
}

// ParseAmount accepts a decimal rupee amount with at most two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return amount, nil
}

func (s *orderService) StartPayment(ctx context.Context, rawAmount, product string) (*StartResult, error) {
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	product = strings.TrimSpace(product)
	if product == "" {
		product = domain.DefaultProduct
	}
	if r := []rune(product); len(r) > maxProductLen {
		product = string(r[:maxProductLen])
	}

	order := &domain.Order{
		ID:      uuid.New(),
		Product: product,
		Amount:  amount,
		IsPaid:  false,
	}

	gwOrder, err := s.paymentGtw.CreateOrder(ctx, payment.CreateOrderRequest{
		AmountMinor: order.AmountMinor(),
		Currency:    domain.Currency,
		Receipt:     order.ID.String(),
	})
	if err != nil {
		s.logger.Error("Gateway create order failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	order.GatewayOrderID = gwOrder.ID()
	order.CreatedAt = s.now().UTC()

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		s.logger.Error("Failed to save order",
			zap.String("order_id", order.ID.String()),
			zap.String("gateway_order_id", order.GatewayOrderID),
			zap.Error(err))
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info("Payment started",
		zap.String("order_id", order.ID.String()),
		zap.String("gateway_order_id", order.GatewayOrderID),
		zap.String("amount", order.Amount.StringFixed(2)))

	return &StartResult{Payment: gwOrder, Order: order}, nil
}

// ParseCallback decodes the callback blob. The frontend sends it as a
// JSON-encoded string, but a plain object is accepted too.
func ParseCallback(payload []byte) (Callback, error) {
	var cb Callback

	raw := []byte(strings.TrimSpace(string(payload)))
	if len(raw) == 0 {
		return cb, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return cb, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		raw = []byte(inner)
	}
	if err := json.Unmarshal(raw, &cb); err != nil {
		return cb, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var missing []string
	if cb.OrderID == "" {
		missing = append(missing, "razorpay_order_id")
	}
	if cb.PaymentID == "" {
		missing = append(missing, "razorpay_payment_id")
	}
	if cb.Signature == "" {
		missing = append(missing, "razorpay_signature")
	}
	if len(missing) > 0 {
		return cb, fmt.Errorf("%w: missing %s", ErrMalformedPayload, strings.Join(missing, ", "))
	}
	return cb, nil
}

func (s *orderService) ConfirmPayment(ctx context.Context, payload []byte) (*ConfirmResult, error) {
	cb, err := ParseCallback(payload)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, cb.OrderID)
	if errors.Is(err, repo.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, cb.OrderID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.paymentGtw.VerifySignature(cb.OrderID, cb.PaymentID, cb.Signature); err != nil {
		s.logger.Warn("Payment signature rejected",
			zap.String("gateway_order_id", cb.OrderID),
			zap.String("gateway_payment_id", cb.PaymentID))
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	paidAt := s.now().UTC()
	changed, err := s.orderRepo.MarkPaid(ctx, cb.OrderID, cb.PaymentID, paidAt)
	if errors.Is(err, repo.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, cb.OrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	if !changed {
		s.logger.Info("Payment already confirmed",
			zap.String("gateway_order_id", cb.OrderID),
			zap.String("gateway_payment_id", cb.PaymentID))
		fresh, err := s.orderRepo.FindByGatewayOrderID(ctx, cb.OrderID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Order: fresh, AlreadyPaid: true}, nil
	}

	order.IsPaid = true
	order.GatewayPaymentID = cb.PaymentID
	order.PaidAt = &paidAt

	s.logger.Info("Payment confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("gateway_order_id", cb.OrderID),
		zap.String("gateway_payment_id", cb.PaymentID))

	return &ConfirmResult{Order: order}, nil
}
