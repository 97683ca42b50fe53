package store_test

import (
	"bytes"
	"context"
	"database/sql/driver"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/internal/store/memstore"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

// flakyStore wraps a real in-memory store and injects failures on demand.
type flakyStore struct {
	inner *memstore.Store
	fail  atomic.Bool
	err   error
	calls atomic.Int64
}

func newFlakyStore(err error) *flakyStore {
	return &flakyStore{inner: memstore.New(memstore.DefaultCatalog()), err: err}
}

func (f *flakyStore) maybeFail() error {
	f.calls.Add(1)
	if f.fail.Load() {
		return f.err
	}
	return nil
}

func (f *flakyStore) UpsertRow(ctx context.Context, userID, productID int64, quantity int) (models.CartRow, error) {
	if err := f.maybeFail(); err != nil {
		return models.CartRow{}, err
	}
	return f.inner.UpsertRow(ctx, userID, productID, quantity)
}

func (f *flakyStore) UpdateQuantity(ctx context.Context, userID, rowID int64, quantity int) (int64, error) {
	if err := f.maybeFail(); err != nil {
		return 0, err
	}
	return f.inner.UpdateQuantity(ctx, userID, rowID, quantity)
}

func (f *flakyStore) DeleteRow(ctx context.Context, userID, rowID int64) (int64, error) {
	if err := f.maybeFail(); err != nil {
		return 0, err
	}
	return f.inner.DeleteRow(ctx, userID, rowID)
}

func (f *flakyStore) RowsByUser(ctx context.Context, userID int64) ([]models.CartRow, error) {
	if err := f.maybeFail(); err != nil {
		return nil, err
	}
	return f.inner.RowsByUser(ctx, userID)
}

func (f *flakyStore) RowsWithProducts(ctx context.Context, userID int64) ([]store.CartProductRow, error) {
	if err := f.maybeFail(); err != nil {
		return nil, err
	}
	return f.inner.RowsWithProducts(ctx, userID)
}

func (f *flakyStore) ProductByID(ctx context.Context, productID int64) (models.Product, error) {
	if err := f.maybeFail(); err != nil {
		return models.Product{}, err
	}
	return f.inner.ProductByID(ctx, productID)
}

func (f *flakyStore) Products(ctx context.Context, productID *int64) ([]models.Product, error) {
	if err := f.maybeFail(); err != nil {
		return nil, err
	}
	return f.inner.Products(ctx, productID)
}

func (f *flakyStore) Ping(ctx context.Context) error {
	if err := f.maybeFail(); err != nil {
		return err
	}
	return f.inner.Ping(ctx)
}

func newTestSelector(t *testing.T, primary store.Store, out *bytes.Buffer) *store.Selector {
	t.Helper()

	if out == nil {
		out = &bytes.Buffer{}
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: out})
	selector, err := store.NewSelector(store.SelectorParams{
		Primary:  primary,
		Fallback: memstore.New(memstore.DefaultCatalog()),
		Logger:   logg,
	})
	require.NoError(t, err)
	return selector
}

func TestSelectorServesPrimaryWhenHealthy(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore(driver.ErrBadConn)
	selector := newTestSelector(t, primary, nil)

	row, err := selector.UpsertRow(context.Background(), 1, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 2, row.Quantity)
	require.Equal(t, store.ModePrimary, selector.Mode())
}

func TestSelectorFailsOverAndSticks(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore(driver.ErrBadConn)
	primary.fail.Store(true)
	logOut := &bytes.Buffer{}
	selector := newTestSelector(t, primary, logOut)
	ctx := context.Background()

	row, err := selector.UpsertRow(ctx, 1, 1, 2)
	require.NoError(t, err, "the in-flight operation must be served by the fallback")
	require.Equal(t, 2, row.Quantity)
	require.Equal(t, store.ModeFallback, selector.Mode())

	callsAfterFailover := primary.calls.Load()
	_, err = selector.UpsertRow(ctx, 1, 1, 3)
	require.NoError(t, err)
	require.Equal(t, callsAfterFailover, primary.calls.Load(),
		"sticky fallback must not re-probe the primary per call")

	require.Equal(t, 1, bytes.Count(logOut.Bytes(), []byte("switching to fallback")),
		"the transition must be logged exactly once")

	// Cart state accumulated on the fallback.
	rows, err := selector.RowsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 5, rows[0].Quantity)
}

func TestSelectorDataErrorsPropagateWithoutFailover(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore(nil)
	selector := newTestSelector(t, primary, nil)

	_, err := selector.ProductByID(context.Background(), 999)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, store.ModePrimary, selector.Mode(),
		"a data-level error must not trigger fallback")
}

func TestSelectorBothStoresFailing(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore(driver.ErrBadConn)
	primary.fail.Store(true)
	fallback := newFlakyStore(driver.ErrBadConn)
	fallback.fail.Store(true)

	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	selector, err := store.NewSelector(store.SelectorParams{
		Primary:  primary,
		Fallback: fallback,
		Logger:   logg,
	})
	require.NoError(t, err)

	_, err = selector.UpsertRow(context.Background(), 1, 1, 1)
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnavailable),
		"both stores failing must surface StoreUnavailable, got %v", err)
}

func TestSelectorNilPrimaryStartsOnFallback(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	selector, err := store.NewSelector(store.SelectorParams{
		Fallback: memstore.New(memstore.DefaultCatalog()),
		Logger:   logg,
	})
	require.NoError(t, err)
	require.Equal(t, store.ModeFallback, selector.Mode())

	_, err = selector.UpsertRow(context.Background(), 1, 1, 1)
	require.NoError(t, err)
}

func TestSelectorRequiresFallback(t *testing.T) {
	t.Parallel()

	_, err := store.NewSelector(store.SelectorParams{})
	require.Error(t, err)
}

func TestSelectorReprobeRestoresPrimary(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore(driver.ErrBadConn)
	primary.fail.Store(true)

	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	selector, err := store.NewSelector(store.SelectorParams{
		Primary:         primary,
		Fallback:        memstore.New(memstore.DefaultCatalog()),
		Logger:          logg,
		ReprobeInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	selector.StartReprobe(ctx)

	_, err = selector.UpsertRow(ctx, 1, 1, 1)
	require.NoError(t, err)
	require.Equal(t, store.ModeFallback, selector.Mode())

	primary.fail.Store(false)

	require.Eventually(t, func() bool {
		return selector.Mode() == store.ModePrimary
	}, 2*time.Second, 10*time.Millisecond, "re-probe should restore the primary store")
}
