package models

import "time"

type Review struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID  int64     `json:"title_id" gorm:"not null;uniqueIndex:idx_review_author_title"`
	AuthorID string    `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_author_title"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Score    int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;<-:create;index"`

	// Associations
	Author User   `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Title  *Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
