package models

// All lists every model AutoMigrate has to know about, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Genre{},
		&Title{},
		&GenreTitle{},
		&Review{},
		&Comment{},
	}
}
