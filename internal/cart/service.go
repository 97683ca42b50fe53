package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefrontlab/storefront-backend/internal/store"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
)

// Service exposes the per-user cart operations. Every row is scoped to its
// owner: a row id belonging to another user behaves exactly like a missing row.
type Service interface {
	List(ctx context.Context, userID int64) ([]ItemDTO, error)
	Add(ctx context.Context, userID, productID int64, quantity int) (RowDTO, error)
	SetQuantity(ctx context.Context, userID, rowID int64, quantity int) (RowDTO, error)
	Remove(ctx context.Context, userID, rowID int64) error
}

type service struct {
	rows store.Store
}

// NewService builds a cart service backed by the provided row store.
func NewService(rows store.Store) (Service, error) {
	if rows == nil {
		return nil, fmt.Errorf("row store required")
	}
	return &service{rows: rows}, nil
}

// List returns the user's cart rows joined with product data. An empty cart
// yields an empty slice, never nil.
func (s *service) List(ctx context.Context, userID int64) ([]ItemDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	rows, err := s.rows.RowsWithProducts(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemDTO(row))
	}
	return items, nil
}

// Add puts quantity units of a product into the user's cart. Adding a product
// that is already present merges into the existing row instead of creating a
// duplicate, so concurrent adds of the same product always land on one row.
func (s *service) Add(ctx context.Context, userID, productID int64, quantity int) (RowDTO, error) {
	if userID <= 0 {
		return RowDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if productID <= 0 {
		return RowDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	if quantity <= 0 {
		return RowDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	if _, err := s.rows.ProductByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RowDTO{}, pkgerrors.Wrap(pkgerrors.CodeProductNotFound, err,
				fmt.Sprintf("product %d does not exist", productID))
		}
		return RowDTO{}, err
	}

	row, err := s.rows.UpsertRow(ctx, userID, productID, quantity)
	if err != nil {
		return RowDTO{}, err
	}
	return rowDTO(row), nil
}

// SetQuantity overwrites a row's quantity. A non-positive quantity removes the
// row instead; carts never hold zero or negative quantities.
func (s *service) SetQuantity(ctx context.Context, userID, rowID int64, quantity int) (RowDTO, error) {
	if userID <= 0 {
		return RowDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if rowID <= 0 {
		return RowDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "row id must be a positive integer")
	}

	if quantity <= 0 {
		if err := s.Remove(ctx, userID, rowID); err != nil {
			return RowDTO{}, err
		}
		return RowDTO{ID: rowID, UserID: userID}, nil
	}

	affected, err := s.rows.UpdateQuantity(ctx, userID, rowID, quantity)
	if err != nil {
		return RowDTO{}, err
	}
	if affected == 0 {
		return RowDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart row not found")
	}
	return RowDTO{ID: rowID, UserID: userID, Quantity: quantity}, nil
}

// Remove deletes a row by id. Removing a row that does not exist for this user
// reports NotFound; callers treating removal as idempotent can ignore it.
func (s *service) Remove(ctx context.Context, userID, rowID int64) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if rowID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "row id must be a positive integer")
	}

	affected, err := s.rows.DeleteRow(ctx, userID, rowID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart row not found")
	}
	return nil
}
