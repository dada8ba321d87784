package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"razorpay-checkout/internal/domain"
	"razorpay-checkout/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(gatewayOrderID string) *domain.Order {
	return &domain.Order{
		ID:             uuid.New(),
		Product:        "Career report",
		Amount:         decimal.RequireFromString("149.50"),
		GatewayOrderID: gatewayOrderID,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// runOrderRepoContract exercises behaviour every OrderRepo implementation shares.
func runOrderRepoContract(t *testing.T, newRepo func(t *testing.T) repo.OrderRepo) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		r := newRepo(t)
		o := newOrder("order_find")
		require.NoError(t, r.CreateOrder(ctx, o))

		got, err := r.FindByGatewayOrderID(ctx, "order_find")
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, "Career report", got.Product)
		assert.True(t, o.Amount.Equal(got.Amount), "amount %s != %s", o.Amount, got.Amount)
		assert.False(t, got.IsPaid)
		assert.Empty(t, got.GatewayPaymentID)
		assert.Nil(t, got.PaidAt)
		assert.WithinDuration(t, o.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("find missing", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.FindByGatewayOrderID(ctx, "order_nope")
		assert.ErrorIs(t, err, repo.ErrOrderNotFound)
	})

	t.Run("duplicate gateway order id", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.CreateOrder(ctx, newOrder("order_dup")))
		assert.ErrorIs(t, r.CreateOrder(ctx, newOrder("order_dup")), repo.ErrDuplicateOrder)
	})

	t.Run("mark paid once", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.CreateOrder(ctx, newOrder("order_pay")))

		paidAt := time.Now().UTC().Truncate(time.Microsecond)
		changed, err := r.MarkPaid(ctx, "order_pay", "pay_first", paidAt)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = r.MarkPaid(ctx, "order_pay", "pay_second", paidAt.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, changed)

		got, err := r.FindByGatewayOrderID(ctx, "order_pay")
		require.NoError(t, err)
		assert.True(t, got.IsPaid)
		assert.Equal(t, "pay_first", got.GatewayPaymentID)
		require.NotNil(t, got.PaidAt)
		assert.WithinDuration(t, paidAt, *got.PaidAt, time.Millisecond)
	})

	t.Run("mark paid missing", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.MarkPaid(ctx, "order_ghost", "pay_1", time.Now())
		assert.ErrorIs(t, err, repo.ErrOrderNotFound)
	})

	t.Run("concurrent mark paid writes once", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.CreateOrder(ctx, newOrder("order_race")))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			written int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				changed, err := r.MarkPaid(ctx, "order_race", uuid.NewString(), time.Now())
				assert.NoError(t, err)
				if changed {
					mu.Lock()
					written++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, written)
	})
}
