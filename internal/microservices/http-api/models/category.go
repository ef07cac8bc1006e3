package models

type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
	Name string `json:"name" gorm:"size:256;not null"`
}

func (Category) TableName() string {
	return "categories"
}
