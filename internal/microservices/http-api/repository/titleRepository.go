package repository

import (
	"context"
	"fmt"
	"strings"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ratingColumn computes the average score on the fly so it can never drift
// from the reviews table.
const ratingColumn = "(SELECT AVG(reviews.score)::float8 FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows the title list; zero values are ignored.
type TitleFilter struct {
	Name     string
	Year     *int
	Genre    string // genre slug
	Category string // category slug
}

type TitleRepository interface {
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

type titleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) TitleRepository {
	return &titleRepo{db: db}
}

func (f TitleFilter) scope(db *gorm.DB) *gorm.DB {
	if name := strings.TrimSpace(f.Name); name != "" {
		db = db.Where("titles.name ILIKE ?", "%"+name+"%")
	}
	if f.Year != nil {
		db = db.Where("titles.year = ?", *f.Year)
	}
	if f.Genre != "" {
		db = db.Where(`EXISTS (SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = titles.id AND g.slug = ?)`, f.Genre)
	}
	if f.Category != "" {
		db = db.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	return db
}

func (r *titleRepo) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Scopes(f.scope).
		Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count titles", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, " + ratingColumn).
		Scopes(f.scope).
		Preload("Category").
		Preload("Genres").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, wrapErr("list titles", err)
	}
	return list, total, nil
}

func (r *titleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres").
		Where("titles.id = ?", id).
		First(&t).Error; err != nil {
		return nil, wrapErr("get title", err)
	}
	return &t, nil
}

func (r *titleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapErr("check title", err)
	}
	return count > 0, nil
}

// Create inserts the title and its genre links; genres themselves must exist.
func (r *titleRepo) Create(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(t).Error; err != nil {
		return wrapErr("create title", err)
	}
	return nil
}

func (r *titleRepo) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Title{ID: t.ID}).
			Select("name", "year", "description", "category_id").
			Updates(map[string]interface{}{
				"name":        t.Name,
				"year":        t.Year,
				"description": t.Description,
				"category_id": t.CategoryID,
			})
		if result.Error != nil {
			return wrapErr("update title", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("update title: %w", gorm.ErrRecordNotFound)
		}
		if !replaceGenres {
			return nil
		}
		if err := tx.Model(&models.Title{ID: t.ID}).Association("Genres").Replace(t.Genres); err != nil {
			return wrapErr("replace genres", err)
		}
		return nil
	})
}

func (r *titleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return wrapErr("delete title", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete title: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
