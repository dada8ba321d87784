package repo_test

import (
	"context"
	"path/filepath"
	"testing"

	"razorpay-checkout/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoltRepo(t *testing.T) *repo.BoltOrderRepo {
	t.Helper()
	r, err := repo.NewBoltOrderRepo(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestBoltOrderRepo(t *testing.T) {
	runOrderRepoContract(t, func(t *testing.T) repo.OrderRepo { return newBoltRepo(t) })
}

func TestBoltOrderRepoPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	ctx := context.Background()

	r, err := repo.NewBoltOrderRepo(path)
	require.NoError(t, err)
	require.NoError(t, r.CreateOrder(ctx, newOrder("order_keep")))
	require.NoError(t, r.Close())

	r, err = repo.NewBoltOrderRepo(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.FindByGatewayOrderID(ctx, "order_keep")
	require.NoError(t, err)
	assert.Equal(t, "order_keep", got.GatewayOrderID)
}

func TestBoltOrderRepoHealth(t *testing.T) {
	r := newBoltRepo(t)
	h := r.Health()
	assert.Equal(t, "up", h["status"])
	assert.Equal(t, "bolt", h["driver"])
}
