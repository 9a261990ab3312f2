package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wishlist is the single per-user list of product ids, in insertion order.
type Wishlist struct {
	ID        uuid.UUID                      `gorm:"column:id;primaryKey;size:36"`
	UserID    string                         `gorm:"column:user_id;size:191;not null;uniqueIndex:wishlists_user_id_key"`
	Products  datatypes.JSONSlice[uuid.UUID] `gorm:"column:products;not null"`
	CreatedAt time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Wishlist) TableName() string { return "wishlists" }

func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Products == nil {
		w.Products = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

// Contains reports whether productID is already in the list.
func (w *Wishlist) Contains(productID uuid.UUID) bool {
	for _, id := range w.Products {
		if id == productID {
			return true
		}
	}
	return false
}
