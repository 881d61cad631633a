package sqlite

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
	var createdAt string
	var lastUsedAt sql.NullString

	if err := row.Scan(&c.ID, &c.Label, &c.Emoji, &c.Color, &c.DisplayOrder, &createdAt, &lastUsedAt); err != nil {
		return models.Category{}, err
	}

	var err error
	c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to parse created_at for category %s: %w", c.ID, err)
	}
	if lastUsedAt.Valid {
		t, err := time.Parse(time.RFC3339, lastUsedAt.String)
		if err != nil {
			return models.Category{}, fmt.Errorf("failed to parse last_used_at for category %s: %w", c.ID, err)
		}
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
		lastUsed = c.LastUsedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Label, c.Emoji, c.Color, c.DisplayOrder, c.CreatedAt.UTC().Format(time.RFC3339), lastUsed)
	return err
}

func (s *Store) GetCategory(id string) (models.Category, error) {
	row := s.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("%w: %s", cerrors.ErrCategoryNotFound, id)
	}
	return c, err
}

func (s *Store) GetCategoryByLabel(label string) (models.Category, error) {
	row := s.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE label = ? COLLATE NOCASE", label)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("%w: %q", cerrors.ErrCategoryNotFound, label)
	}
	return c, err
}

func (s *Store) GetAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query("SELECT " + categoryColumns + " FROM categories ORDER BY display_order, label COLLATE NOCASE")
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
		UPDATE categories SET label = ?, emoji = ?, color = ?, display_order = ?
		WHERE id = ?`,
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

	// explicit so the cascade holds even on connections without foreign keys
	if _, err := tx.Exec("DELETE FROM events WHERE category_id = ?", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM categories WHERE id = ?", id)
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
