package repository

import (
	"context"
	"fmt"
	"strings"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// SlugRepository covers the entities that are addressed by slug and only
// support create, list and delete (categories and genres).
type SlugRepository[T any] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, item *T) error
	DeleteBySlug(ctx context.Context, slug string) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	FindBySlug(ctx context.Context, slug string) (*T, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]T, error)
}

type slugRepo[T any] struct {
	db   *gorm.DB
	name string // used in error messages
}

func NewSlugRepo[T any](db *gorm.DB, name string) SlugRepository[T] {
	return &slugRepo[T]{db: db, name: name}
}

func NewCategoryRepo(db *gorm.DB) SlugRepository[models.Category] {
	return NewSlugRepo[models.Category](db, "category")
}

func NewGenreRepo(db *gorm.DB) SlugRepository[models.Genre] {
	return NewSlugRepo[models.Genre](db, "genre")
}

func (r *slugRepo[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	var list []T
	var total int64

	if err := r.db.WithContext(ctx).Model(new(T)).
		Scopes(nameContains(search)).
		Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count "+r.name, err)
	}

	if err := r.db.WithContext(ctx).Model(new(T)).
		Scopes(nameContains(search)).
		Order("name asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, wrapErr("list "+r.name, err)
	}
	return list, total, nil
}

func nameContains(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(search); s != "" {
			return db.Where("name ILIKE ?", "%"+s+"%")
		}
		return db
	}
}

func (r *slugRepo[T]) Create(ctx context.Context, item *T) error {
	return wrapErr("create "+r.name, r.db.WithContext(ctx).Create(item).Error)
}

func (r *slugRepo[T]) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if result.Error != nil {
		return wrapErr("delete "+r.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", r.name, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *slugRepo[T]) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, wrapErr("check "+r.name, err)
	}
	return count > 0, nil
}

func (r *slugRepo[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, wrapErr("get "+r.name, err)
	}
	return &item, nil
}

// FindBySlugs returns the rows matching slugs; callers compare lengths to
// detect unknown slugs.
func (r *slugRepo[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	var list []T
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, wrapErr("get "+r.name+"s", err)
	}
	return list, nil
}
