package models

import "time"

// CartRow is one line in one user's cart. The (user_id, product_id) unique
// index is what makes insert-or-increment upserts safe under concurrent adds.
type CartRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;index:cart_rows_user_id_idx;uniqueIndex:cart_rows_user_product_key"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:cart_rows_user_product_key"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartRow) TableName() string {
	return "cart_rows"
}
