package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultProductImage = "default-product.jpg"

// Variant is a priced, stocked configuration of a product. Stored inline on the product row.
type Variant struct {
	Ram   string          `json:"ram"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// Product references its Category and SubCategory by id only; neither side cascades.
type Product struct {
	ID            uuid.UUID                    `gorm:"column:id;primaryKey;size:36"`
	Name          string                       `gorm:"column:name;size:255;not null;index:products_name_idx"`
	Description   string                       `gorm:"column:description;type:text"`
	Image         string                       `gorm:"column:image;size:512;not null"`
	CategoryID    uuid.UUID                    `gorm:"column:category_id;size:36;not null;index:products_category_id_idx"`
	SubCategoryID uuid.UUID                    `gorm:"column:subcategory_id;size:36;not null;index:products_subcategory_id_idx"`
	Variants      datatypes.JSONSlice[Variant] `gorm:"column:variants;not null"`
	CreatedAt     time.Time                    `gorm:"column:created_at;autoCreateTime;index:products_created_at_idx"`
	UpdatedAt     time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Image == "" {
		p.Image = DefaultProductImage
	}
	return nil
}
