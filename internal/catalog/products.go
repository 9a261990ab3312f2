package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelmondragon/catalog-backend/internal/store"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

// CreateProduct requires the subcategory to sit under the given category, at
// least one variant, and a non-blank name and description.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (dto *ProductDTO, err error) {
	defer func() { s.observe(pkgerrors.EntityProduct, "create", err) }()

	categoryID, supplied, err := parseRef(input.CategoryID, pkgerrors.EntityCategory, msgCategoryNotFound)
	if err != nil {
		return nil, err
	}
	if !supplied {
		return nil, pkgerrors.NotFound(pkgerrors.EntityCategory, msgCategoryNotFound)
	}
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	sub, err := s.requirePair(ctx, categoryID, input.SubCategoryID)
	if err != nil {
		return nil, err
	}

	if len(input.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidVariants, msgVariantsRequired)
	}
	variants, err := toVariants(input.Variants)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	product := &models.Product{
		Name:          name,
		Description:   description,
		Image:         strings.TrimSpace(input.Image),
		CategoryID:    category.ID,
		SubCategoryID: sub.ID,
		Variants:      variants,
	}
	if err := s.store.Products().Insert(ctx, product); err != nil {
		return nil, internal(err, "create product")
	}

	s.logMutation(ctx, pkgerrors.EntityProduct, product.ID, "product created")
	return newProductDTO(product, category, sub), nil
}

// UpdateProduct validates references before checking the product itself exists.
// A subcategory supplied without a category is only checked for existence.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (dto *ProductDTO, err error) {
	defer func() { s.observe(pkgerrors.EntityProduct, "update", err) }()

	changes := map[string]any{}

	var categoryID uuid.UUID
	var hasCategory bool
	if input.CategoryID != nil {
		categoryID, hasCategory, err = parseRef(*input.CategoryID, pkgerrors.EntityCategory, msgCategoryNotFound)
		if err != nil {
			return nil, err
		}
		if hasCategory {
			if _, err := s.requireCategory(ctx, categoryID); err != nil {
				return nil, err
			}
			changes["category_id"] = categoryID
		}
	}

	if raw := trimmed(input.SubCategoryID); raw != "" {
		if hasCategory {
			sub, err := s.requirePair(ctx, categoryID, raw)
			if err != nil {
				return nil, err
			}
			changes["subcategory_id"] = sub.ID
		} else {
			subID, _, err := parseRef(raw, pkgerrors.EntitySubCategory, msgSubCategoryNotFound)
			if err != nil {
				return nil, err
			}
			if _, err := s.requireSubCategory(ctx, subID); err != nil {
				return nil, err
			}
			changes["subcategory_id"] = subID
		}
	}

	if input.Variants != nil {
		if len(*input.Variants) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidVariants, msgVariantsRequired)
		}
		variants, err := toVariants(*input.Variants)
		if err != nil {
			return nil, err
		}
		changes["variants"] = variants
	}

	if name := trimmed(input.Name); name != "" {
		changes["name"] = name
	}
	if desc := trimmed(input.Description); desc != "" {
		changes["description"] = desc
	}
	if image := trimmed(input.Image); image != "" {
		changes["image"] = image
	}

	updated, err := s.store.Products().UpdateByID(ctx, id, changes)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntityProduct, msgProductNotFound)
	}
	if err != nil {
		return nil, internal(err, "update product")
	}

	details, err := s.detail(ctx, []models.Product{*updated})
	if err != nil {
		return nil, internal(err, "load product references")
	}

	s.logMutation(ctx, pkgerrors.EntityProduct, id, "product updated")
	return &details[0], nil
}

// DeleteProduct leaves wishlist references in place; they are skipped on read.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.observe(pkgerrors.EntityProduct, "delete", err) }()

	deleted, err := s.store.Products().DeleteByID(ctx, id)
	if err != nil {
		return internal(err, "delete product")
	}
	if !deleted {
		return pkgerrors.NotFound(pkgerrors.EntityProduct, msgProductNotFound)
	}
	s.logMutation(ctx, pkgerrors.EntityProduct, id, "product deleted")
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntityProduct, msgProductNotFound)
	}
	if err != nil {
		return nil, internal(err, "load product")
	}
	details, err := s.detail(ctx, []models.Product{*product})
	if err != nil {
		return nil, internal(err, "load product references")
	}
	return &details[0], nil
}

// ListProducts filters by exact references and a case-insensitive name fragment,
// newest first.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	page := pagination.NormalizePage(input.Page)
	limit := pagination.NormalizeLimit(input.Limit)

	filter := store.Filter{}
	for col, raw := range map[string]string{"category_id": input.CategoryID, "subcategory_id": input.SubCategoryID} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			// an unparseable reference matches nothing
			return &ProductListResult{
				Products:   []ProductDTO{},
				Pagination: Pagination{Page: page, Limit: limit},
			}, nil
		}
		filter[col] = id
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		filter["name"] = store.Contains(search)
	}

	total, err := s.store.Products().Count(ctx, filter)
	if err != nil {
		return nil, internal(err, "count products")
	}
	rows, err := s.store.Products().Find(ctx, filter, store.FindOptions{
		Sort:  []store.Sort{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
		Skip:  pagination.Offset(page, limit),
		Limit: limit,
	})
	if err != nil {
		return nil, internal(err, "list products")
	}
	details, err := s.detail(ctx, rows)
	if err != nil {
		return nil, internal(err, "load product references")
	}

	return &ProductListResult{
		Products: details,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: pagination.Pages(total, limit),
			Limit: limit,
		},
	}, nil
}

func (s *service) ResolveProducts(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error) {
	if len(ids) == 0 {
		return []ProductDTO{}, nil
	}
	rows, err := s.store.Products().Find(ctx, store.Filter{"id": anyOf(ids)})
	if err != nil {
		return nil, internal(err, "load products")
	}
	details, err := s.detail(ctx, rows)
	if err != nil {
		return nil, internal(err, "load product references")
	}

	byID := make(map[uuid.UUID]ProductDTO, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}
	out := make([]ProductDTO, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// detail populates category and subcategory names; dangling references stay nil.
func (s *service) detail(ctx context.Context, rows []models.Product) ([]ProductDTO, error) {
	catIDs := make([]uuid.UUID, 0, len(rows))
	subIDs := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		catIDs = append(catIDs, p.CategoryID)
		subIDs = append(subIDs, p.SubCategoryID)
	}

	categories, err := s.categoriesByID(ctx, catIDs)
	if err != nil {
		return nil, err
	}
	subs := make(map[uuid.UUID]*models.SubCategory, len(subIDs))
	if len(subIDs) > 0 {
		subRows, err := s.store.SubCategories().Find(ctx, store.Filter{"id": anyOf(subIDs)})
		if err != nil {
			return nil, err
		}
		for i := range subRows {
			subs[subRows[i].ID] = &subRows[i]
		}
	}

	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newProductDTO(&rows[i], categories[rows[i].CategoryID], subs[rows[i].SubCategoryID]))
	}
	return out, nil
}

// requirePair resolves a subcategory that must belong to categoryID. A missing
// subcategory and one filed under another category share the same message but
// carry different codes.
func (s *service) requirePair(ctx context.Context, categoryID uuid.UUID, rawSubID string) (*models.SubCategory, error) {
	subID, supplied, err := parseRef(rawSubID, pkgerrors.EntitySubCategory, msgSubCategoryMismatch)
	if err != nil {
		return nil, err
	}
	if !supplied {
		return nil, pkgerrors.NotFound(pkgerrors.EntitySubCategory, msgSubCategoryMismatch)
	}

	sub, err := s.store.SubCategories().FindOne(ctx, store.Filter{"id": subID, "category_id": categoryID})
	if err == nil {
		return sub, nil
	}
	if !isNotFound(err) {
		return nil, internal(err, "load subcategory")
	}

	exists, err := s.store.SubCategories().Count(ctx, store.Filter{"id": subID})
	if err != nil {
		return nil, internal(err, "load subcategory")
	}
	if exists > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInconsistentReference, msgSubCategoryMismatch).
			WithDetails(map[string]string{"entity": pkgerrors.EntitySubCategory})
	}
	return nil, pkgerrors.NotFound(pkgerrors.EntitySubCategory, msgSubCategoryMismatch)
}

func (s *service) requireSubCategory(ctx context.Context, id uuid.UUID) (*models.SubCategory, error) {
	sub, err := s.store.SubCategories().FindByID(ctx, id)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntitySubCategory, msgSubCategoryNotFound)
	}
	if err != nil {
		return nil, internal(err, "load subcategory")
	}
	return sub, nil
}

func toVariants(in []VariantInput) (datatypes.JSONSlice[models.Variant], error) {
	out := make(datatypes.JSONSlice[models.Variant], 0, len(in))
	for i, v := range in {
		ram := strings.TrimSpace(v.Ram)
		switch {
		case ram == "":
			return nil, variantError(i, "ram", "is required")
		case v.Price.IsNegative():
			return nil, variantError(i, "price", "must be non-negative")
		case v.Qty < 0:
			return nil, variantError(i, "qty", "must be non-negative")
		}
		out = append(out, models.Variant{Ram: ram, Price: v.Price, Qty: v.Qty})
	}
	return out, nil
}

func variantError(index int, field, problem string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid variant").
		WithDetails(map[string]any{"index": index, "field": field, "problem": problem})
}
