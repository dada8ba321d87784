package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"razorpay-checkout/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("gateway order id already recorded")
)

const uniqueViolation = "23505"

type OrderRepo interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error)
	// MarkPaid flips is_paid for an unpaid order. It reports false when the
	// order was already paid, leaving the stored payment untouched.
	MarkPaid(ctx context.Context, gatewayOrderID, paymentID string, paidAt time.Time) (bool, error)
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

const orderColumns = `id, product, amount, gateway_order_id, is_paid, gateway_payment_id, created_at, paid_at`

func (r *orderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO orders (id, product, amount, gateway_order_id, is_paid, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		order.ID, order.Product, order.Amount, order.GatewayOrderID, order.IsPaid, order.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateOrder
	}
	return err
}

func (r *orderRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	var (
		order     domain.Order
		paymentID sql.NullString
		paidAt    sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE gateway_order_id = $1", gatewayOrderID).Scan(
		&order.ID,
		&order.Product,
		&order.Amount,
		&order.GatewayOrderID,
		&order.IsPaid,
		&paymentID,
		&order.CreatedAt,
		&paidAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	order.GatewayPaymentID = paymentID.String
	if paidAt.Valid {
		t := paidAt.Time
		order.PaidAt = &t
	}
	return &order, nil
}

func (r *orderRepo) MarkPaid(ctx context.Context, gatewayOrderID, paymentID string, paidAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET is_paid = TRUE, gateway_payment_id = $2, paid_at = $3 WHERE gateway_order_id = $1 AND is_paid = FALSE",
		gatewayOrderID, paymentID, paidAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	// nothing updated: either already paid or missing
	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM orders WHERE gateway_order_id = $1)", gatewayOrderID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrOrderNotFound
	}
	return false, nil
}
