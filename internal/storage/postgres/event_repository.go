package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/adrian-inthe/events7/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT id, name, description, type, priority
FROM events
ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id int) (domain.Event, error) {
	const query = `
SELECT id, name, description, type, priority
FROM events
WHERE id = $1`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) InsertEvent(ctx context.Context, fields domain.EventFields) (domain.Event, error) {
	const stmt = `
INSERT INTO events (name, description, type, priority)
VALUES ($1, $2, $3, $4)
RETURNING id, name, description, type, priority`
	event, err := scanEvent(r.pool.QueryRow(ctx, stmt,
		fields.Name, fields.Description, string(fields.Category), fields.Priority))
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return domain.Event{}, verr
		}
		return domain.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) ReplaceEvent(ctx context.Context, event domain.Event, expected domain.Category) (domain.Event, error) {
	const stmt = `
UPDATE events
SET name = $2, description = $3, type = $4, priority = $5
WHERE id = $1 AND type = $6
RETURNING id, name, description, type, priority`
	updated, err := scanEvent(r.pool.QueryRow(ctx, stmt,
		event.ID, event.Name, event.Description, string(event.Category), event.Priority, string(expected)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, r.missOrChanged(ctx, event.ID)
		}
		if verr := constraintError(err); verr != nil {
			return domain.Event{}, verr
		}
		return domain.Event{}, fmt.Errorf("replace event: %w", err)
	}
	return updated, nil
}

func (r *EventRepository) RemoveEvent(ctx context.Context, id int, expected domain.Category) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND type = $2`, id, string(expected))
	if err != nil {
		return fmt.Errorf("remove event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrChanged(ctx, id)
	}
	return nil
}

// missOrChanged explains why a conditional write matched no row.
func (r *EventRepository) missOrChanged(ctx context.Context, id int) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if exists {
		return domain.ErrEventChanged
	}
	return domain.ErrEventNotFound
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		event    domain.Event
		category string
	)
	if err := row.Scan(&event.ID, &event.Name, &event.Description, &category, &event.Priority); err != nil {
		return domain.Event{}, err
	}
	event.Category = domain.Category(category)
	return event, nil
}
