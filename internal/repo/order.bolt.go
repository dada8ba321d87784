package repo

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"razorpay-checkout/internal/domain"

	bolt "github.com/boltdb/bolt"
)

const ordersBucket = "orders"

// BoltOrderRepo keeps orders in a single-file BoltDB database keyed by gateway
// order id. Used for local development without Postgres.
type BoltOrderRepo struct {
	db *bolt.DB
}

func NewBoltOrderRepo(path string) (*BoltOrderRepo, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ordersBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltOrderRepo{db: db}, nil
}

func (r *BoltOrderRepo) Close() error {
	return r.db.Close()
}

func (r *BoltOrderRepo) Health() map[string]string {
	stats := r.db.Stats()
	return map[string]string{
		"status":  "up",
		"driver":  "bolt",
		"path":    r.db.Path(),
		"tx_open": strconv.Itoa(stats.OpenTxN),
	}
}

func (r *BoltOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ordersBucket))
		if b.Get([]byte(order.GatewayOrderID)) != nil {
			return ErrDuplicateOrder
		}
		return b.Put([]byte(order.GatewayOrderID), data)
	})
}

func (r *BoltOrderRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var order domain.Order
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(ordersBucket)).Get([]byte(gatewayOrderID))
		if v == nil {
			return ErrOrderNotFound
		}
		return json.Unmarshal(v, &order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *BoltOrderRepo) MarkPaid(ctx context.Context, gatewayOrderID, paymentID string, paidAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	written := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ordersBucket))
		v := b.Get([]byte(gatewayOrderID))
		if v == nil {
			return ErrOrderNotFound
		}

		var order domain.Order
		if err := json.Unmarshal(v, &order); err != nil {
			return err
		}
		if order.IsPaid {
			return nil
		}

		order.IsPaid = true
		order.GatewayPaymentID = paymentID
		order.PaidAt = &paidAt

		data, err := json.Marshal(order)
		if err != nil {
			return err
		}
		written = true
		return b.Put([]byte(gatewayOrderID), data)
	})
	if err != nil {
		return false, err
	}
	return written, nil
}
