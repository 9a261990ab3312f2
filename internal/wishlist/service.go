package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/internal/store"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const (
	msgProductNotFound  = "Product not found"
	msgAlreadyInList    = "Product already in wishlist"
	msgWishlistNotFound = "Wishlist not found"
)

// ProductResolver loads current catalog detail for product ids.
type ProductResolver interface {
	ResolveProducts(ctx context.Context, ids []uuid.UUID) ([]catalog.ProductDTO, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store    store.Store
	Products ProductResolver
	Logger   *logger.Logger
}

// Service manages the single product list each user owns.
type Service interface {
	AddProduct(ctx context.Context, userID, productID string) (*WishlistDTO, error)
	GetWishlist(ctx context.Context, userID string) (*ItemsDTO, error)
	RemoveProduct(ctx context.Context, userID, productID string) (*WishlistDTO, error)
	Clear(ctx context.Context, userID string) (*WishlistDTO, error)
}

type service struct {
	store    store.Store
	products ProductResolver
	logg     *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product resolver is required")
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		logg:     params.Logger,
	}, nil
}

// AddProduct creates the wishlist on first use and rejects products already listed.
func (s *service) AddProduct(ctx context.Context, userID, productID string) (*WishlistDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil {
		return nil, pkgerrors.NotFound(pkgerrors.EntityProduct, msgProductNotFound)
	}
	if _, err := s.store.Products().FindByID(ctx, pid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.NotFound(pkgerrors.EntityProduct, msgProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	existing, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		created := &models.Wishlist{UserID: userID, Products: datatypes.JSONSlice[uuid.UUID]{pid}}
		err := s.store.Wishlists().Insert(ctx, created)
		if err == nil {
			s.log(ctx, userID, "wishlist created")
			return newWishlistDTO(created), nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wishlist")
		}
		// a concurrent first add won the insert; apply ours to its record
		if existing, err = s.find(ctx, userID); err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist vanished after conflicting insert")
		}
	}

	if existing.Contains(pid) {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyExists, msgAlreadyInList)
	}

	products := append(datatypes.JSONSlice[uuid.UUID]{}, existing.Products...)
	products = append(products, pid)
	updated, err := s.save(ctx, existing.ID, products)
	if err != nil {
		return nil, err
	}
	s.log(ctx, userID, "wishlist product added")
	return newWishlistDTO(updated), nil
}

// GetWishlist resolves listed products; deleted products are left out.
func (s *service) GetWishlist(ctx context.Context, userID string) (*ItemsDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	existing, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil || len(existing.Products) == 0 {
		return &ItemsDTO{Products: []catalog.ProductDTO{}}, nil
	}

	products, err := s.products.ResolveProducts(ctx, existing.Products)
	if err != nil {
		return nil, err
	}
	return &ItemsDTO{Products: products}, nil
}

// RemoveProduct drops every occurrence of the product. Removing an unlisted product succeeds.
func (s *service) RemoveProduct(ctx context.Context, userID, productID string) (*WishlistDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	existing, err := s.require(ctx, userID)
	if err != nil {
		return nil, err
	}

	pid, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil || !existing.Contains(pid) {
		return newWishlistDTO(existing), nil
	}

	kept := make(datatypes.JSONSlice[uuid.UUID], 0, len(existing.Products))
	for _, id := range existing.Products {
		if id != pid {
			kept = append(kept, id)
		}
	}
	updated, err := s.save(ctx, existing.ID, kept)
	if err != nil {
		return nil, err
	}
	s.log(ctx, userID, "wishlist product removed")
	return newWishlistDTO(updated), nil
}

// Clear empties the list but keeps the record.
func (s *service) Clear(ctx context.Context, userID string) (*WishlistDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	existing, err := s.require(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.save(ctx, existing.ID, datatypes.JSONSlice[uuid.UUID]{})
	if err != nil {
		return nil, err
	}
	s.log(ctx, userID, "wishlist cleared")
	return newWishlistDTO(updated), nil
}

// find returns nil without error when the user has no wishlist yet.
func (s *service) find(ctx context.Context, userID string) (*models.Wishlist, error) {
	w, err := s.store.Wishlists().FindOne(ctx, store.Filter{"user_id": userID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	return w, nil
}

func (s *service) require(ctx context.Context, userID string) (*models.Wishlist, error) {
	w, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, pkgerrors.NotFound(pkgerrors.EntityWishlist, msgWishlistNotFound)
	}
	return w, nil
}

func (s *service) save(ctx context.Context, id uuid.UUID, products datatypes.JSONSlice[uuid.UUID]) (*models.Wishlist, error) {
	updated, err := s.store.Wishlists().UpdateByID(ctx, id, map[string]any{"products": products})
	if errors.Is(err, store.ErrNotFound) {
		return nil, pkgerrors.NotFound(pkgerrors.EntityWishlist, msgWishlistNotFound)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save wishlist")
	}
	return updated, nil
}

func (s *service) log(ctx context.Context, userID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID), msg)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	return nil
}
