package dto

import "yamdb/internal/microservices/http-api/models"

// CreateSlugDTO is the body for POST /categories and POST /genres
type CreateSlugDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CategoryFromModel(c models.Category) SlugResponse {
	return SlugResponse{Name: c.Name, Slug: c.Slug}
}

func GenreFromModel(g models.Genre) SlugResponse {
	return SlugResponse{Name: g.Name, Slug: g.Slug}
}
