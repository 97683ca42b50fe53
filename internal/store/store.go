package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
)

// ErrNotFound reports that no row matched the id/owner predicate. Implementations
// return it for both "row absent" and "row owned by someone else"; callers must
// not be able to tell the difference.
var ErrNotFound = errors.New("store: row not found")

// ErrNonPositiveQuantity mirrors the quantity > 0 check the schema enforces.
var ErrNonPositiveQuantity = errors.New("store: quantity must be positive")

// CartProductRow is a cart row joined with the product fields the cart view
// renders. Never persisted in this shape.
type CartProductRow struct {
	RowID     int64           `json:"row_id"`
	UserID    int64           `json:"user_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  *string         `json:"category,omitempty"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// Store is the row-store capability set the cart engine and catalog builder
// run against. Two implementations exist: the durable GORM-backed store
// (dbstore) and the in-process fallback (memstore); the Selector multiplexes
// between them and satisfies the same interface.
type Store interface {
	// UpsertRow atomically inserts a cart row or, when the (userID, productID)
	// pair already exists, increments the existing row's quantity. Returns the
	// resulting row.
	UpsertRow(ctx context.Context, userID, productID int64, quantity int) (models.CartRow, error)

	// UpdateQuantity sets the quantity on the row matching both rowID and
	// userID, reporting how many rows matched (0 or 1).
	UpdateQuantity(ctx context.Context, userID, rowID int64, quantity int) (int64, error)

	// DeleteRow removes the row matching both rowID and userID, reporting how
	// many rows matched (0 or 1).
	DeleteRow(ctx context.Context, userID, rowID int64) (int64, error)

	// RowsByUser returns every cart row owned by userID, ordered by row id.
	RowsByUser(ctx context.Context, userID int64) ([]models.CartRow, error)

	// RowsWithProducts returns the user's cart rows joined with product data,
	// ordered by row id.
	RowsWithProducts(ctx context.Context, userID int64) ([]CartProductRow, error)

	// ProductByID loads a single product; ErrNotFound when absent.
	ProductByID(ctx context.Context, productID int64) (models.Product, error)

	// Products lists the catalog, optionally filtered to one product id,
	// ordered by product id.
	Products(ctx context.Context, productID *int64) ([]models.Product, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
