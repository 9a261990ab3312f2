package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/catalog"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// WishlistDTO is the stored list as returned by mutations.
type WishlistDTO struct {
	ID        uuid.UUID   `json:"id"`
	UserID    string      `json:"user"`
	Products  []uuid.UUID `json:"products"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ItemsDTO is the resolved wishlist: current product details in list order.
type ItemsDTO struct {
	Products []catalog.ProductDTO `json:"products"`
}

func newWishlistDTO(w *models.Wishlist) *WishlistDTO {
	products := make([]uuid.UUID, len(w.Products))
	copy(products, w.Products)
	return &WishlistDTO{
		ID:        w.ID,
		UserID:    w.UserID,
		Products:  products,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
