package cart

import (
	"github.com/shopspring/decimal"
	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
)

// RowDTO is the write-path view of a single cart row.
type RowDTO struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ItemDTO is a cart row joined with its product, as returned by List.
type ItemDTO struct {
	RowID     int64           `json:"row_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  *string         `json:"category,omitempty"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

func rowDTO(row models.CartRow) RowDTO {
	return RowDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
	}
}

func itemDTO(row store.CartProductRow) ItemDTO {
	return ItemDTO{
		RowID:     row.RowID,
		ProductID: row.ProductID,
		Name:      row.Name,
		Price:     row.Price,
		Quantity:  row.Quantity,
		Category:  row.Category,
		ImageURL:  row.ImageURL,
	}
}
