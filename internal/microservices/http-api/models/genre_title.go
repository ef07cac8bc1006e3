package models

// explicit join model between titles and genres (has its own id)
type GenreTitle struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	GenreID int64 `json:"genre_id" gorm:"not null;uniqueIndex:idx_genre_title"`
	TitleID int64 `json:"title_id" gorm:"not null;uniqueIndex:idx_genre_title;index"`
}

func (GenreTitle) TableName() string {
	return "genre_titles"
}
