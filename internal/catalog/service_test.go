package catalog

import (
	"context"
	"testing"

	"github.com/storefrontlab/storefront-backend/internal/store/memstore"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestFixture(t *testing.T) (Service, *memstore.Store) {
	t.Helper()

	rows := memstore.New(memstore.DefaultCatalog())
	svc, err := NewService(rows)
	require.NoError(t, err)
	return svc, rows
}

func TestBuildAnonymous(t *testing.T) {
	t.Parallel()

	svc, rows := newTestFixture(t)
	ctx := context.Background()

	_, err := rows.UpsertRow(ctx, 1, 1, 2)
	require.NoError(t, err)

	entries, err := svc.Build(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, len(memstore.DefaultCatalog()))
	for _, entry := range entries {
		require.False(t, entry.InCart, "anonymous view must never show cart state")
		require.Zero(t, entry.Quantity)
		require.Nil(t, entry.RowID)
	}
}

func TestBuildAnnotatesOnlyOwnRows(t *testing.T) {
	t.Parallel()

	svc, rows := newTestFixture(t)
	ctx := context.Background()

	mine, err := rows.UpsertRow(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = rows.UpsertRow(ctx, 2, 2, 5)
	require.NoError(t, err)

	userID := int64(1)
	entries, err := svc.Build(ctx, &userID, nil)
	require.NoError(t, err)

	byProduct := map[int64]Entry{}
	for _, entry := range entries {
		byProduct[entry.ProductID] = entry
	}

	annotated := byProduct[1]
	require.True(t, annotated.InCart)
	require.Equal(t, 2, annotated.Quantity)
	require.NotNil(t, annotated.RowID)
	require.Equal(t, mine.ID, *annotated.RowID)

	// product 2 is in someone else's cart only
	require.False(t, byProduct[2].InCart)
	require.Zero(t, byProduct[2].Quantity)
}

func TestBuildSingleProduct(t *testing.T) {
	t.Parallel()

	svc, rows := newTestFixture(t)
	ctx := context.Background()

	_, err := rows.UpsertRow(ctx, 1, 2, 3)
	require.NoError(t, err)

	userID, productID := int64(1), int64(2)
	entries, err := svc.Build(ctx, &userID, &productID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, productID, entries[0].ProductID)
	require.True(t, entries[0].InCart)
	require.Equal(t, 3, entries[0].Quantity)
}

func TestGetUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestFixture(t)

	_, err := svc.Get(context.Background(), nil, 99999)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeProductNotFound), "got %v", err)
}

func TestBuildReflectsCartChanges(t *testing.T) {
	t.Parallel()

	svc, rows := newTestFixture(t)
	ctx := context.Background()
	userID := int64(1)

	row, err := rows.UpsertRow(ctx, userID, 1, 1)
	require.NoError(t, err)

	entries, err := svc.Build(ctx, &userID, nil)
	require.NoError(t, err)
	require.True(t, entries[0].InCart)

	_, err = rows.DeleteRow(ctx, userID, row.ID)
	require.NoError(t, err)

	entries, err = svc.Build(ctx, &userID, nil)
	require.NoError(t, err)
	require.False(t, entries[0].InCart, "the view must be recomputed, not cached")
}
