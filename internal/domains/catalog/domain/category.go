package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var ErrEmptyCategoryName = errors.New("category name is required")

// Category groups products for storefront navigation. Like products, the
// slug is derived from the name at creation and never changes afterwards.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

// NewCategory validates the invariants and derives the URL slug from the name.
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCategoryName
	}
	return &Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(description),
	}, nil
}

// Rename mutates the category name ensuring the invariant. The slug is kept.
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	c.Name = name
	return nil
}

// Validate re-applies core invariants for persistence.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
		return ErrEmptyCategoryName
	}
	return nil
}
