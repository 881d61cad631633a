package storage

import (
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

// ResolveCategory finds a category by id first, then by label.
func ResolveCategory(p Provider, ref string) (models.Category, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Category{}, fmt.Errorf("category reference cannot be empty")
	}

	c, err := p.GetCategory(ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, cerrors.ErrCategoryNotFound) {
		return models.Category{}, err
	}

	c, err = p.GetCategoryByLabel(ref)
	if errors.Is(err, cerrors.ErrCategoryNotFound) {
		return models.Category{}, fmt.Errorf("%w: %q", cerrors.ErrCategoryNotFound, ref)
	}
	return c, err
}

// CategoryIDs lists the ids of every stored category.
func CategoryIDs(p Provider) ([]string, error) {
	categories, err := p.GetAllCategories()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids, nil
}
