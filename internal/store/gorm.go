package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

const likeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type gormStore struct {
	conn *gorm.DB
	// nil once bound to a transaction
	client *db.Client
}

// New returns a Store backed by the client's connection.
func New(client *db.Client) Store {
	return &gormStore{conn: client.DB(), client: client}
}

func (s *gormStore) Categories() Collection[models.Category] {
	return &collection[models.Category]{base: base{db: s.conn}}
}

func (s *gormStore) SubCategories() Collection[models.SubCategory] {
	return &collection[models.SubCategory]{base: base{db: s.conn}}
}

func (s *gormStore) Products() Collection[models.Product] {
	return &collection[models.Product]{base: base{db: s.conn}}
}

func (s *gormStore) Wishlists() Collection[models.Wishlist] {
	return &collection[models.Wishlist]{base: base{db: s.conn}}
}

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.client == nil {
		return fn(s)
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(&gormStore{conn: tx})
	})
}

type base struct {
	db *gorm.DB
}

func (b base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

type collection[T any] struct {
	base
}

func (c *collection[T]) scoped(ctx context.Context, filter Filter) *gorm.DB {
	q := c.DB(ctx).Model(new(T))

	cols := make([]string, 0, len(filter))
	for col := range filter {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		column := clause.Column{Name: col}
		switch v := filter[col].(type) {
		case Contains:
			pattern := "%" + likeEscaper.Replace(strings.ToLower(string(v))) + "%"
			q = q.Where("LOWER(?) LIKE ? ESCAPE '"+likeEscape+"'", column, pattern)
		case AnyOf:
			q = q.Where(clause.IN{Column: column, Values: v})
		default:
			q = q.Where(clause.Eq{Column: column, Value: v})
		}
	}
	return q
}

func (c *collection[T]) Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]T, error) {
	q := c.scoped(ctx, filter)
	for _, opt := range opts {
		for _, s := range opt.Sort {
			q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
		}
		if opt.Skip > 0 {
			q = q.Offset(opt.Skip)
		}
		if opt.Limit > 0 {
			q = q.Limit(opt.Limit)
		}
	}

	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", tableOf[T](), err)
	}
	return out, nil
}

func (c *collection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	var out T
	err := c.scoped(ctx, filter).Limit(1).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", tableOf[T](), err)
	}
	return &out, nil
}

func (c *collection[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return c.FindOne(ctx, Filter{"id": id})
}

func (c *collection[T]) Insert(ctx context.Context, doc *T) error {
	if err := c.DB(ctx).Create(doc).Error; err != nil {
		return translate(err, "insert "+tableOf[T]())
	}
	return nil
}

func (c *collection[T]) UpdateByID(ctx context.Context, id uuid.UUID, changes map[string]any) (*T, error) {
	if len(changes) > 0 {
		res := c.DB(ctx).Model(new(T)).Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Updates(changes)
		if res.Error != nil {
			return nil, translate(res.Error, "update "+tableOf[T]())
		}
	}
	// mysql reports zero affected rows for no-op updates, so re-read rather than trust RowsAffected
	return c.FindByID(ctx, id)
}

func (c *collection[T]) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := c.DB(ctx).Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Delete(new(T))
	if res.Error != nil {
		return false, fmt.Errorf("delete %s: %w", tableOf[T](), res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *collection[T]) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("delete many %s: empty filter", tableOf[T]())
	}
	res := c.scoped(ctx, filter).Delete(new(T))
	if res.Error != nil {
		return 0, fmt.Errorf("delete many %s: %w", tableOf[T](), res.Error)
	}
	return res.RowsAffected, nil
}

func (c *collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	if err := c.scoped(ctx, filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", tableOf[T](), err)
	}
	return n, nil
}

func translate(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type tabler interface {
	TableName() string
}

func tableOf[T any]() string {
	var zero T
	if t, ok := any(zero).(tabler); ok {
		return t.TableName()
	}
	if t, ok := any(&zero).(tabler); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", zero)
}
