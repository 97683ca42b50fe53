package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
)

// Entry is one catalog product, annotated with the viewing user's cart state.
// Anonymous viewers always see InCart=false.
type Entry struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  *string         `json:"category,omitempty"`
	ImageURL  *string         `json:"image_url,omitempty"`
	InCart    bool            `json:"is_in_cart"`
	Quantity  int             `json:"quantity,omitempty"`
	RowID     *int64          `json:"row_id,omitempty"`
}

func entryFromProduct(product models.Product) Entry {
	return Entry{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Category:  product.Category,
		ImageURL:  product.ImageURL,
	}
}
