package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/store"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

// CreateSubCategory requires an existing parent and a name unused within it.
func (s *service) CreateSubCategory(ctx context.Context, input CreateSubCategoryInput) (dto *SubCategoryDTO, err error) {
	defer func() { s.observe(pkgerrors.EntitySubCategory, "create", err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	categoryID, supplied, err := parseRef(input.CategoryID, pkgerrors.EntityCategory, msgCategoryNotFound)
	if err != nil {
		return nil, err
	}
	if !supplied {
		return nil, pkgerrors.NotFound(pkgerrors.EntityCategory, msgCategoryNotFound)
	}
	parent, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.SubCategories().Count(ctx, store.Filter{"name": name, "category_id": categoryID})
	if err != nil {
		return nil, internal(err, "check subcategory name")
	}
	if existing > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, msgSubCategoryExists)
	}

	sub := &models.SubCategory{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  categoryID,
	}
	if err := s.store.SubCategories().Insert(ctx, sub); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicateName, err, msgSubCategoryExists)
		}
		return nil, internal(err, "create subcategory")
	}

	s.logMutation(ctx, pkgerrors.EntitySubCategory, sub.ID, "subcategory created")
	return newSubCategoryDTO(sub, parent), nil
}

// UpdateSubCategory validates a supplied parent before touching the record. The
// (name, category) pair is not re-checked here; only the unique index can reject it.
func (s *service) UpdateSubCategory(ctx context.Context, id uuid.UUID, input UpdateSubCategoryInput) (dto *SubCategoryDTO, err error) {
	defer func() { s.observe(pkgerrors.EntitySubCategory, "update", err) }()

	changes := map[string]any{}
	if name := trimmed(input.Name); name != "" {
		changes["name"] = name
	}
	if desc := trimmed(input.Description); desc != "" {
		changes["description"] = desc
	}
	if input.CategoryID != nil {
		categoryID, supplied, err := parseRef(*input.CategoryID, pkgerrors.EntityCategory, msgCategoryNotFound)
		if err != nil {
			return nil, err
		}
		if supplied {
			if _, err := s.requireCategory(ctx, categoryID); err != nil {
				return nil, err
			}
			changes["category_id"] = categoryID
		}
	}

	updated, err := s.store.SubCategories().UpdateByID(ctx, id, changes)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntitySubCategory, msgSubCategoryNotFound)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicateName, err, msgSubCategoryExists)
	}
	if err != nil {
		return nil, internal(err, "update subcategory")
	}

	parents, err := s.categoriesByID(ctx, []uuid.UUID{updated.CategoryID})
	if err != nil {
		return nil, internal(err, "load subcategory parent")
	}

	s.logMutation(ctx, pkgerrors.EntitySubCategory, id, "subcategory updated")
	return newSubCategoryDTO(updated, parents[updated.CategoryID]), nil
}

// DeleteSubCategory removes only the subcategory; products keep their reference.
func (s *service) DeleteSubCategory(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.observe(pkgerrors.EntitySubCategory, "delete", err) }()

	deleted, err := s.store.SubCategories().DeleteByID(ctx, id)
	if err != nil {
		return internal(err, "delete subcategory")
	}
	if !deleted {
		return pkgerrors.NotFound(pkgerrors.EntitySubCategory, msgSubCategoryNotFound)
	}
	s.logMutation(ctx, pkgerrors.EntitySubCategory, id, "subcategory deleted")
	return nil
}

func (s *service) ListSubCategories(ctx context.Context) ([]SubCategoryDTO, error) {
	return s.listSubCategories(ctx, nil)
}

// ListSubCategoriesByCategory returns an empty list for an unknown category.
func (s *service) ListSubCategoriesByCategory(ctx context.Context, categoryID uuid.UUID) ([]SubCategoryDTO, error) {
	return s.listSubCategories(ctx, store.Filter{"category_id": categoryID})
}

func (s *service) listSubCategories(ctx context.Context, filter store.Filter) ([]SubCategoryDTO, error) {
	rows, err := s.store.SubCategories().Find(ctx, filter, store.FindOptions{Sort: []store.Sort{{Column: "name"}}})
	if err != nil {
		return nil, internal(err, "list subcategories")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CategoryID)
	}
	parents, err := s.categoriesByID(ctx, ids)
	if err != nil {
		return nil, internal(err, "load subcategory parents")
	}

	out := make([]SubCategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newSubCategoryDTO(&rows[i], parents[rows[i].CategoryID]))
	}
	return out, nil
}

func (s *service) requireCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.store.Categories().FindByID(ctx, id)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntityCategory, msgCategoryNotFound)
	}
	if err != nil {
		return nil, internal(err, "load category")
	}
	return category, nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
