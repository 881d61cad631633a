package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

func scanEvent(row rowScanner) (models.Event, error) {
	var ev models.Event
	var occurredAt int64
	var createdAt string

	if err := row.Scan(&ev.ID, &ev.CategoryID, &occurredAt, &createdAt); err != nil {
		return models.Event{}, err
	}
	ev.OccurredAt = time.Unix(occurredAt, 0).UTC()

	var err error
	ev.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse created_at for event %s: %w", ev.ID, err)
	}
	return ev, nil
}

func (s *Store) AddEvent(ev models.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE categories SET last_used_at = ?
		WHERE id = ? AND (last_used_at IS NULL OR last_used_at < ?)`,
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.CategoryID, ev.OccurredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM categories WHERE id = ?", ev.CategoryID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", cerrors.ErrCategoryNotFound, ev.CategoryID)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO events (id, category_id, occurred_at, created_at)
		VALUES (?, ?, ?, ?)`,
		ev.ID, ev.CategoryID, ev.OccurredAt.Unix(), ev.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) GetEvent(id string) (models.Event, error) {
	row := s.db.QueryRow("SELECT id, category_id, occurred_at, created_at FROM events WHERE id = ?", id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("%w: %s", cerrors.ErrEventNotFound, id)
	}
	return ev, err
}

func (s *Store) QueryEvents(ctx context.Context, categoryID string, since, until time.Time) ([]models.Event, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE id = ?", categoryID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrCategoryNotFound, categoryID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, occurred_at, created_at FROM events
		WHERE category_id = ? AND occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at, id`,
		categoryID, ceilUnix(since), until.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) DeleteEvent(id string) error {
	res, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, cerrors.ErrEventNotFound, id)
}

func (s *Store) PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE occurred_at < ?", ceilUnix(cutoff))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	logger.Debug("Purged expired events", "cutoff", cutoff.Format(time.RFC3339), "count", n)
	return n, nil
}

func (s *Store) Stats(ctx context.Context, now, cutoff time.Time) (storage.Stats, error) {
	var st storage.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM events WHERE occurred_at < ?),
			(SELECT COUNT(*) FROM events WHERE occurred_at > ?),
			(SELECT COUNT(*) FROM events e LEFT JOIN categories c ON c.id = e.category_id WHERE c.id IS NULL)`,
		ceilUnix(cutoff), now.Unix(),
	).Scan(&st.Categories, &st.Events, &st.ExpiredEvents, &st.FutureEvents, &st.OrphanedEvents)
	return st, err
}

// ceilUnix rounds up to whole seconds so a stored second never falls before t.
func ceilUnix(t time.Time) int64 {
	secs := t.Unix()
	if t.Nanosecond() > 0 {
		secs++
	}
	return secs
}
