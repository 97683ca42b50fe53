package dbstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/storefrontlab/storefront-backend/internal/repo"
	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable row store, backed by the shared GORM connection. Every
// predicate goes through GORM's parameter binding; no values are ever
// concatenated into SQL.
type Store struct {
	base repo.Base
}

// New constructs a Store bound to the provided GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{base: repo.NewBase(db)}
}

// UpsertRow relies on the cart_rows_user_product_key unique index: the insert
// either lands or atomically increments the existing row, which is what makes
// two concurrent adds for the same pair merge instead of duplicating.
func (s *Store) UpsertRow(ctx context.Context, userID, productID int64, quantity int) (models.CartRow, error) {
	if quantity <= 0 {
		return models.CartRow{}, store.ErrNonPositiveQuantity
	}

	row := models.CartRow{UserID: userID, ProductID: productID, Quantity: quantity}
	err := s.base.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_rows.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&row).Error
	if err != nil {
		return models.CartRow{}, err
	}

	// Re-read: on the conflict path the driver does not report the merged
	// quantity or the surviving row id.
	return s.rowByUserAndProduct(ctx, userID, productID)
}

func (s *Store) rowByUserAndProduct(ctx context.Context, userID, productID int64) (models.CartRow, error) {
	var row models.CartRow
	err := s.base.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CartRow{}, store.ErrNotFound
		}
		return models.CartRow{}, err
	}
	return row, nil
}

// UpdateQuantity filters by both row id and owner so a foreign rowId matches
// nothing, indistinguishable from a missing row.
func (s *Store) UpdateQuantity(ctx context.Context, userID, rowID int64, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, store.ErrNonPositiveQuantity
	}

	res := s.base.DB(ctx).
		Model(&models.CartRow{}).
		Where("id = ? AND user_id = ?", rowID, userID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteRow(ctx context.Context, userID, rowID int64) (int64, error) {
	res := s.base.DB(ctx).
		Where("id = ? AND user_id = ?", rowID, userID).
		Delete(&models.CartRow{})
	return res.RowsAffected, res.Error
}

func (s *Store) RowsByUser(ctx context.Context, userID int64) ([]models.CartRow, error) {
	rows := make([]models.CartRow, 0)
	err := s.base.DB(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (s *Store) RowsWithProducts(ctx context.Context, userID int64) ([]store.CartProductRow, error) {
	var records []cartProductRecord
	err := s.base.DB(ctx).
		Table("cart_rows cr").
		Select("cr.id AS row_id, cr.user_id, cr.product_id, cr.quantity, p.name, p.price, p.category, p.image_url").
		Joins("JOIN products p ON p.id = cr.product_id").
		Where("cr.user_id = ?", userID).
		Order("cr.id ASC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	joined := make([]store.CartProductRow, 0, len(records))
	for _, record := range records {
		joined = append(joined, record.toRow())
	}
	return joined, nil
}

func (s *Store) ProductByID(ctx context.Context, productID int64) (models.Product, error) {
	var product models.Product
	err := s.base.DB(ctx).First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, store.ErrNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}

func (s *Store) Products(ctx context.Context, productID *int64) ([]models.Product, error) {
	query := s.base.DB(ctx).Model(&models.Product{}).Order("id ASC")
	if productID != nil {
		query = query.Where("id = ?", *productID)
	}

	products := make([]models.Product, 0)
	err := query.Find(&products).Error
	return products, err
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.base.DB(ctx).DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ store.Store = (*Store)(nil)

type cartProductRecord struct {
	RowID     int64           `gorm:"column:row_id"`
	UserID    int64           `gorm:"column:user_id"`
	ProductID int64           `gorm:"column:product_id"`
	Quantity  int             `gorm:"column:quantity"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price"`
	Category  sql.NullString  `gorm:"column:category"`
	ImageURL  sql.NullString  `gorm:"column:image_url"`
}

func (r cartProductRecord) toRow() store.CartProductRow {
	return store.CartProductRow{
		RowID:     r.RowID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Name:      r.Name,
		Price:     r.Price,
		Category:  nullStringPtr(r.Category),
		ImageURL:  nullStringPtr(r.ImageURL),
	}
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
