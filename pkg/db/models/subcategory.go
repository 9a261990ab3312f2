package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubCategory belongs to exactly one Category; its name is unique within that category.
type SubCategory struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey;size:36"`
	Name        string    `gorm:"column:name;size:255;not null;uniqueIndex:subcategories_name_category_key,priority:1"`
	Description string    `gorm:"column:description;type:text"`
	CategoryID  uuid.UUID `gorm:"column:category_id;size:36;not null;index:subcategories_category_id_idx;uniqueIndex:subcategories_name_category_key,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SubCategory) TableName() string { return "subcategories" }

func (s *SubCategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
