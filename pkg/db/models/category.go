package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is the top level of the catalog taxonomy.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey;size:36"`
	Name        string    `gorm:"column:name;size:255;not null;index:categories_name_idx"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
