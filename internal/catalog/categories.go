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

// CreateCategory rejects a name already used by any category (exact match).
func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (dto *CategoryDTO, err error) {
	defer func() { s.observe(pkgerrors.EntityCategory, "create", err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	existing, err := s.store.Categories().Count(ctx, store.Filter{"name": name})
	if err != nil {
		return nil, internal(err, "check category name")
	}
	if existing > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateName, msgCategoryExists)
	}

	category := &models.Category{Name: name, Description: strings.TrimSpace(input.Description)}
	if err := s.store.Categories().Insert(ctx, category); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicateName, err, msgCategoryExists)
		}
		return nil, internal(err, "create category")
	}

	s.logMutation(ctx, pkgerrors.EntityCategory, category.ID, "category created")
	return newCategoryDTO(category), nil
}

// UpdateCategory applies the supplied fields. Name uniqueness is only enforced on create.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (dto *CategoryDTO, err error) {
	defer func() { s.observe(pkgerrors.EntityCategory, "update", err) }()

	changes := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		changes["name"] = name
	}
	if input.Description != nil {
		changes["description"] = strings.TrimSpace(*input.Description)
	}

	updated, err := s.store.Categories().UpdateByID(ctx, id, changes)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntityCategory, msgCategoryNotFound)
	}
	if err != nil {
		return nil, internal(err, "update category")
	}

	s.logMutation(ctx, pkgerrors.EntityCategory, id, "category updated")
	return newCategoryDTO(updated), nil
}

// DeleteCategory removes the category and its subcategories together. Products that
// reference either are left in place.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.observe(pkgerrors.EntityCategory, "delete", err) }()

	var removedSubs int64
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		deleted, err := tx.Categories().DeleteByID(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return pkgerrors.NotFound(pkgerrors.EntityCategory, msgCategoryNotFound)
		}
		removedSubs, err = tx.SubCategories().DeleteMany(ctx, store.Filter{"category_id": id})
		return err
	})
	if err != nil {
		return internal(err, "delete category")
	}

	if s.logg != nil {
		logCtx := s.logg.WithField(s.logg.WithEntity(ctx, pkgerrors.EntityCategory, id.String()), "subcategories_removed", removedSubs)
		s.logg.Info(logCtx, "category deleted")
	}
	return nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.store.Categories().FindByID(ctx, id)
	if isNotFound(err) {
		return nil, pkgerrors.NotFound(pkgerrors.EntityCategory, msgCategoryNotFound)
	}
	if err != nil {
		return nil, internal(err, "load category")
	}
	return newCategoryDTO(category), nil
}

// ListCategories returns every category ordered by name.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.store.Categories().Find(ctx, nil, store.FindOptions{Sort: []store.Sort{{Column: "name"}}})
	if err != nil {
		return nil, internal(err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newCategoryDTO(&rows[i]))
	}
	return out, nil
}

// categoriesByID loads the distinct categories referenced by ids.
func (s *service) categoriesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Category, error) {
	out := make(map[uuid.UUID]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.store.Categories().Find(ctx, store.Filter{"id": anyOf(ids)})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func anyOf(ids []uuid.UUID) store.AnyOf {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make(store.AnyOf, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
