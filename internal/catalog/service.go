package catalog

import (
	"context"
	"fmt"

	"github.com/storefrontlab/storefront-backend/internal/store"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
)

// Service builds the catalog view. The cart annotation is recomputed from the
// row store on every call so the view always reflects the current cart.
type Service interface {
	Build(ctx context.Context, userID *int64, productID *int64) ([]Entry, error)
	Get(ctx context.Context, userID *int64, productID int64) (Entry, error)
}

type service struct {
	rows store.Store
}

// NewService builds a catalog service backed by the provided row store.
func NewService(rows store.Store) (Service, error) {
	if rows == nil {
		return nil, fmt.Errorf("row store required")
	}
	return &service{rows: rows}, nil
}

// Build lists products, optionally narrowed to one, annotated with the user's
// cart rows when userID is present.
func (s *service) Build(ctx context.Context, userID *int64, productID *int64) ([]Entry, error) {
	if productID != nil && *productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}

	products, err := s.rows.Products(ctx, productID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(products))
	for _, product := range products {
		entries = append(entries, entryFromProduct(product))
	}
	if userID == nil {
		return entries, nil
	}

	rows, err := s.rows.RowsByUser(ctx, *userID)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int64]int, len(rows))
	for i, row := range rows {
		byProduct[row.ProductID] = i
	}
	for i := range entries {
		idx, ok := byProduct[entries[i].ProductID]
		if !ok {
			continue
		}
		row := rows[idx]
		entries[i].InCart = true
		entries[i].Quantity = row.Quantity
		entries[i].RowID = &row.ID
	}
	return entries, nil
}

// Get returns a single annotated catalog entry.
func (s *service) Get(ctx context.Context, userID *int64, productID int64) (Entry, error) {
	entries, err := s.Build(ctx, userID, &productID)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, pkgerrors.New(pkgerrors.CodeProductNotFound,
			fmt.Sprintf("product %d does not exist", productID))
	}
	return entries[0], nil
}
