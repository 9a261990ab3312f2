package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

var (
	// ErrNotFound is returned when an id or filter matches no record.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Filter maps column names to match values. Plain values match by equality;
// Contains and AnyOf change the comparison.
type Filter map[string]any

// Contains matches a case-insensitive substring of the column. Case folding is
// Unicode-aware on every driver; sqlite gets it from db.SQLiteDialector.
type Contains string

// AnyOf matches any of the listed values.
type AnyOf []any

// Sort orders results by a column.
type Sort struct {
	Column string
	Desc   bool
}

type FindOptions struct {
	Sort  []Sort
	Skip  int
	Limit int
}

// Collection is the record-level surface of one entity kind.
type Collection[T any] interface {
	Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Insert(ctx context.Context, doc *T) error
	UpdateByID(ctx context.Context, id uuid.UUID, changes map[string]any) (*T, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Store groups the catalog collections.
type Store interface {
	Categories() Collection[models.Category]
	SubCategories() Collection[models.SubCategory]
	Products() Collection[models.Product]
	Wishlists() Collection[models.Wishlist]
	// WithinTx runs fn against a Store bound to one transaction. Nested calls reuse it.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
