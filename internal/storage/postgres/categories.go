package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
)

const categoryColumns = "id, label, emoji, color, display_order, created_at, last_used_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	var lastUsedAt sql.NullTime

	if err := row.Scan(&c.ID, &c.Label, &c.Emoji, &c.Color, &c.DisplayOrder, &c.CreatedAt, &lastUsedAt); err != nil {
		return models.Category{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	if lastUsedAt.Valid {
		t := lastUsedAt.Time.UTC()
		c.LastUsedAt = &t
	}
	return c, nil
}

func (s *Store) AddCategory(c models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := s.GetCategoryByLabel(c.Label); err == nil {
		return fmt.Errorf("%w: %q", cerrors.ErrCategoryExists, c.Label)
	} else if !errors.Is(err, cerrors.ErrCategoryNotFound) {
		return err
	}

	var lastUsed any
	if c.LastUsedAt != nil {
		lastUsed = c.LastUsedAt.UTC().Truncate(time.Second)
	}
	_, err := s.db.Exec(`
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Label, c.Emoji, c.Color, c.DisplayOrder, c.CreatedAt.UTC().Truncate(time.Second), lastUsed)
	return err
}

func (s *Store) GetCategory(id string) (models.Category, error) {
	row := s.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("%w: %s", cerrors.ErrCategoryNotFound, id)
	}
	return c, err
}

func (s *Store) GetCategoryByLabel(label string) (models.Category, error) {
	row := s.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE LOWER(label) = LOWER($1)", label)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("%w: %q", cerrors.ErrCategoryNotFound, label)
	}
	return c, err
}

func (s *Store) GetAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query("SELECT " + categoryColumns + " FROM categories ORDER BY display_order, LOWER(label)")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) UpdateCategory(c models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if other, err := s.GetCategoryByLabel(c.Label); err == nil && other.ID != c.ID {
		return fmt.Errorf("%w: %q", cerrors.ErrCategoryExists, c.Label)
	}

	res, err := s.db.Exec(`
		UPDATE categories SET label = $1, emoji = $2, color = $3, display_order = $4
		WHERE id = $5`,
		c.Label, c.Emoji, c.Color, c.DisplayOrder, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res, cerrors.ErrCategoryNotFound, c.ID)
}

func (s *Store) DeleteCategory(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE category_id = $1", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	if err := requireRow(res, cerrors.ErrCategoryNotFound, id); err != nil {
		return err
	}
	return tx.Commit()
}

func requireRow(res sql.Result, sentinel error, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return nil
}
