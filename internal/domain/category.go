package domain

import "time"

// Category описывает категорию товара
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	IsArchived  bool
}

func NewCategory(name string, description string) *Category {
	return &Category{
		Name:        name,
		Description: description,
	}
}
