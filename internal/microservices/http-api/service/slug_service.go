package service

import (
	"context"
	"errors"
	"strings"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

// SlugService is the shared list/create/delete surface of categories and genres.
type SlugService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.SlugResponse], error)
	Create(ctx context.Context, req dto.CreateSlugDTO) (*dto.SlugResponse, error)
	Delete(ctx context.Context, slug string) error
}

type slugService[T any] struct {
	repo     repository.SlugRepository[T]
	resource string
	build    func(req dto.CreateSlugDTO) T
	view     func(T) dto.SlugResponse
	cache    TitleCache
}

func NewCategoryService(repo repository.SlugRepository[models.Category], cache TitleCache) SlugService {
	return &slugService[models.Category]{
		repo:     repo,
		resource: "category",
		build: func(req dto.CreateSlugDTO) models.Category {
			return models.Category{Name: req.Name, Slug: req.Slug}
		},
		view:  dto.CategoryFromModel,
		cache: cacheOrNoop(cache),
	}
}

func NewGenreService(repo repository.SlugRepository[models.Genre], cache TitleCache) SlugService {
	return &slugService[models.Genre]{
		repo:     repo,
		resource: "genre",
		build: func(req dto.CreateSlugDTO) models.Genre {
			return models.Genre{Name: req.Name, Slug: req.Slug}
		},
		view:  dto.GenreFromModel,
		cache: cacheOrNoop(cache),
	}
}

func (s *slugService[T]) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.SlugResponse], error) {
	items, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPaginated(items, total, page, pageSize, s.view), nil
}

func (s *slugService[T]) Create(ctx context.Context, req dto.CreateSlugDTO) (*dto.SlugResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, newValidationError("name", "this field may not be blank")
	}

	exists, err := s.repo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newValidationError("slug", s.resource+" with this slug already exists")
	}

	item := s.build(req)
	if err := s.repo.Create(ctx, &item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("slug", s.resource+" with this slug already exists")
		}
		return nil, err
	}

	resp := s.view(item)
	return &resp, nil
}

// Delete removes the entry; titles keep existing but their nested view changes,
// so cached title shapes are dropped.
func (s *slugService[T]) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return translate(s.resource, err)
	}
	s.cache.InvalidateAll(ctx)
	return nil
}
