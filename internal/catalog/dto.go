package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput carries optional changes; nil fields are left untouched.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
}

type CreateSubCategoryInput struct {
	Name        string
	Description string
	CategoryID  string
}

// UpdateSubCategoryInput treats nil and blank values alike as not supplied.
type UpdateSubCategoryInput struct {
	Name        *string
	Description *string
	CategoryID  *string
}

type VariantInput struct {
	Ram   string
	Price decimal.Decimal
	Qty   int
}

type CreateProductInput struct {
	Name          string
	Description   string
	Image         string
	CategoryID    string
	SubCategoryID string
	Variants      []VariantInput
}

// UpdateProductInput follows the blank-means-absent rule for the scalar fields.
// Variants is the exception: a non-nil pointer to an empty slice is rejected.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Image         *string
	CategoryID    *string
	SubCategoryID *string
	Variants      *[]VariantInput
}

type ListProductsInput struct {
	CategoryID    string
	SubCategoryID string
	Search        string
	Page          int
	Limit         int
}

// Ref is the populated {id, name} of a referenced category or subcategory.
type Ref struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SubCategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"categoryId"`
	Category    *Ref      `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type VariantDTO struct {
	Ram   string  `json:"ram"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

type ProductDTO struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Image         string       `json:"image"`
	CategoryID    uuid.UUID    `json:"categoryId"`
	SubCategoryID uuid.UUID    `json:"subCategoryId"`
	Category      *Ref         `json:"category"`
	SubCategory   *Ref         `json:"subCategory"`
	Variants      []VariantDTO `json:"variants"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	Pagination Pagination   `json:"pagination"`
}

func newCategoryDTO(c *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newSubCategoryDTO(sc *models.SubCategory, parent *models.Category) *SubCategoryDTO {
	dto := &SubCategoryDTO{
		ID:          sc.ID,
		Name:        sc.Name,
		Description: sc.Description,
		CategoryID:  sc.CategoryID,
		CreatedAt:   sc.CreatedAt,
		UpdatedAt:   sc.UpdatedAt,
	}
	if parent != nil {
		dto.Category = &Ref{ID: parent.ID, Name: parent.Name}
	}
	return dto
}

func newProductDTO(p *models.Product, category *models.Category, sub *models.SubCategory) *ProductDTO {
	dto := &ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Image:         p.Image,
		CategoryID:    p.CategoryID,
		SubCategoryID: p.SubCategoryID,
		Variants:      make([]VariantDTO, 0, len(p.Variants)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if category != nil {
		dto.Category = &Ref{ID: category.ID, Name: category.Name}
	}
	if sub != nil {
		dto.SubCategory = &Ref{ID: sub.ID, Name: sub.Name}
	}
	for _, v := range p.Variants {
		price, _ := v.Price.Float64()
		dto.Variants = append(dto.Variants, VariantDTO{Ram: v.Ram, Price: price, Qty: v.Qty})
	}
	return dto
}
