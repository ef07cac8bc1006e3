package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTitleDTO used for POST /titles; category and genres are referenced by slug
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required"`
	Year        *int     `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Genre       []string `json:"genre,omitempty"`
}

// UpdateTitleDTO used for PATCH /titles/:title_id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,min=1"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Genre       *[]string `json:"genre,omitempty"`
}

// TitleResponse is the read shape: nested category/genres plus the computed rating
type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Description *string        `json:"description"`
	Rating      *float64       `json:"rating"`
	Category    *SlugResponse  `json:"category"`
	Genre       []SlugResponse `json:"genre"`
}

func FromModelToTitleResponse(m models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          m.ID,
		Name:        m.Name,
		Year:        m.Year,
		Description: m.Description,
		Rating:      m.Rating,
		Genre:       make([]SlugResponse, 0, len(m.Genres)),
	}
	if m.Category != nil {
		c := CategoryFromModel(*m.Category)
		resp.Category = &c
	}
	for _, g := range m.Genres {
		resp.Genre = append(resp.Genre, GenreFromModel(g))
	}
	return resp
}
