package models

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"type:text;not null"`
	Year        int     `json:"year" gorm:"not null;index;check:year >= 1"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64  `json:"-" gorm:"index"`

	// average of review scores, filled by the repository query and never persisted
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	// association
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre,omitempty" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
