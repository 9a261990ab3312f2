package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/store"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const (
	msgCategoryExists      = "Category already exists"
	msgCategoryNotFound    = "Category not found"
	msgSubCategoryExists   = "Subcategory already exists in this category"
	msgSubCategoryNotFound = "Subcategory not found"
	msgSubCategoryMismatch = "Subcategory not found or does not belong to the specified category"
	msgVariantsRequired    = "At least one variant is required"
	msgProductNotFound     = "Product not found"
)

// Service gatekeeps every catalog mutation so category, subcategory and product
// references stay consistent.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)

	CreateSubCategory(ctx context.Context, input CreateSubCategoryInput) (*SubCategoryDTO, error)
	UpdateSubCategory(ctx context.Context, id uuid.UUID, input UpdateSubCategoryInput) (*SubCategoryDTO, error)
	DeleteSubCategory(ctx context.Context, id uuid.UUID) error
	ListSubCategories(ctx context.Context) ([]SubCategoryDTO, error)
	ListSubCategoriesByCategory(ctx context.Context, categoryID uuid.UUID) ([]SubCategoryDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	// ResolveProducts returns details for ids in the given order, skipping unknown ids.
	ResolveProducts(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error)
}

// MutationRecorder receives one observation per accepted or rejected mutation.
type MutationRecorder interface {
	ObserveMutation(entity, op string, err error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Store   store.Store
	Logger  *logger.Logger
	Metrics MutationRecorder
}

type service struct {
	store   store.Store
	logg    *logger.Logger
	metrics MutationRecorder
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	return &service{
		store:   params.Store,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) observe(entity, op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveMutation(entity, op, err)
	}
}

func (s *service) logMutation(ctx context.Context, entity string, id uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithEntity(ctx, entity, id.String()), msg)
}

// internal wraps a store failure; typed errors pass through untouched.
func internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

// parseRef turns a client-supplied reference into an id. Blank means not supplied;
// anything unparseable can never resolve and is reported as not found.
func parseRef(raw string, entity, notFound string) (uuid.UUID, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, true, pkgerrors.NotFound(entity, notFound)
	}
	return id, true, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
