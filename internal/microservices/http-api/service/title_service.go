package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// TitleCache stores rendered title read shapes. Implementations must treat
// every failure as a miss.
type TitleCache interface {
	Get(ctx context.Context, id int64) (*dto.TitleResponse, bool)
	Set(ctx context.Context, id int64, title *dto.TitleResponse)
	Invalidate(ctx context.Context, id int64)
	InvalidateAll(ctx context.Context)
}

type noopCache struct{}

func (noopCache) Get(context.Context, int64) (*dto.TitleResponse, bool) { return nil, false }
func (noopCache) Set(context.Context, int64, *dto.TitleResponse)        {}
func (noopCache) Invalidate(context.Context, int64)                     {}
func (noopCache) InvalidateAll(context.Context)                         {}

// cacheOrNoop lets callers pass a nil cache.
func cacheOrNoop(c TitleCache) TitleCache {
	if c == nil {
		return noopCache{}
	}
	return c
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.SlugRepository[models.Category]
	genres     repository.SlugRepository[models.Genre]
	cache      TitleCache
	now        func() time.Time
}

func NewTitleService(
	titles repository.TitleRepository,
	categories repository.SlugRepository[models.Category],
	genres repository.SlugRepository[models.Genre],
	cache TitleCache,
) TitleService {
	return &titleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		cache:      cacheOrNoop(cache),
		now:        time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	titles, total, err := s.titles.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPaginated(titles, total, page, pageSize, dto.FromModelToTitleResponse), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	return s.load(ctx, id)
}

// load reads the title with its rating and refreshes the cache entry.
func (s *titleService) load(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, translate("title", err)
	}
	resp := dto.FromModelToTitleResponse(*title)
	s.cache.Set(ctx, id, &resp)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "this field may not be blank")
	}
	if err := s.validateYear(*req.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        name,
		Year:        *req.Year,
		Description: req.Description,
	}

	if req.Category != nil && *req.Category != "" {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &categoryID
	}

	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titles.Create(ctx, title); err != nil {
		return nil, err
	}
	return s.load(ctx, title.ID)
}

// Update applies a partial change; fields absent from the payload keep their value.
func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, translate("title", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name", "this field may not be blank")
		}
		title.Name = name
	}
	if req.Year != nil {
		if err := s.validateYear(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
		} else {
			categoryID, err := s.resolveCategory(ctx, *req.Category)
			if err != nil {
				return nil, err
			}
			title.CategoryID = &categoryID
		}
	}

	replaceGenres := req.Genre != nil
	if replaceGenres {
		genres, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titles.Update(ctx, title, replaceGenres); err != nil {
		return nil, translate("title", err)
	}
	s.cache.Invalidate(ctx, id)
	return s.load(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titles.Delete(ctx, id); err != nil {
		return translate("title", err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *titleService) validateYear(year int) error {
	current := s.now().Year()
	if year < 1 || year > current {
		return newValidationError("year", fmt.Sprintf("year must be between 1 and %d", current))
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (int64, error) {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, newValidationError("category", fmt.Sprintf("object with slug %q does not exist", slug))
		}
		return 0, err
	}
	return category.ID, nil
}

// resolveGenres maps slugs to genres, rejecting the first unknown slug.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}

	genres, err := s.genres.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) == len(unique) {
		return genres, nil
	}

	found := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		found[g.Slug] = struct{}{}
	}
	for _, slug := range unique {
		if _, ok := found[slug]; !ok {
			return nil, newValidationError("genre", fmt.Sprintf("object with slug %q does not exist", slug))
		}
	}
	return genres, nil
}
