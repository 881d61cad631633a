package postgres

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

const eventColumns = "id, category_id, occurred_at, created_at"

func scanEvent(row rowScanner) (models.Event, error) {
	var ev models.Event
	var occurredAt int64

	if err := row.Scan(&ev.ID, &ev.CategoryID, &occurredAt, &ev.CreatedAt); err != nil {
		return models.Event{}, err
	}
	ev.OccurredAt = time.Unix(occurredAt, 0).UTC()
	ev.CreatedAt = ev.CreatedAt.UTC()
	return ev, nil
}

func (s *Store) AddEvent(ev models.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	occurred := ev.OccurredAt.UTC().Truncate(time.Second)
	var exists bool
	if err := tx.QueryRow("SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", ev.CategoryID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", cerrors.ErrCategoryNotFound, ev.CategoryID)
	}

	if _, err := tx.Exec(`
		UPDATE categories SET last_used_at = $1
		WHERE id = $2 AND (last_used_at IS NULL OR last_used_at < $1)`,
		occurred, ev.CategoryID); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4)`,
		ev.ID, ev.CategoryID, ev.OccurredAt.Unix(), ev.CreatedAt.UTC().Truncate(time.Second)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) GetEvent(id string) (models.Event, error) {
	row := s.db.QueryRow("SELECT "+eventColumns+" FROM events WHERE id = $1", id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("%w: %s", cerrors.ErrEventNotFound, id)
	}
	return ev, err
}

func (s *Store) QueryEvents(ctx context.Context, categoryID string, since, until time.Time) ([]models.Event, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", categoryID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrCategoryNotFound, categoryID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE category_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
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
	res, err := s.db.Exec("DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, cerrors.ErrEventNotFound, id)
}

func (s *Store) PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE occurred_at < $1", ceilUnix(cutoff))
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
			(SELECT COUNT(*) FROM events WHERE occurred_at < $1),
			(SELECT COUNT(*) FROM events WHERE occurred_at > $2),
			(SELECT COUNT(*) FROM events e LEFT JOIN categories c ON c.id = e.category_id WHERE c.id IS NULL)`,
		ceilUnix(cutoff), now.Unix(),
	).Scan(&st.Categories, &st.Events, &st.ExpiredEvents, &st.FutureEvents, &st.OrphanedEvents)
	return st, err
}

func ceilUnix(t time.Time) int64 {
	secs := t.Unix()
	if t.Nanosecond() > 0 {
		secs++
	}
	return secs
}
