package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"evently/internal/domain"
)

const eventSelect = `
	SELECT e.id, e.title, e.description, e.location, e.created_at, e.image_url,
		e.start_date_time, e.end_date_time, e.price, e.is_free, e.url,
		ARRAY(SELECT ec.category_id::text FROM event_categories ec WHERE ec.event_id = e.id ORDER BY ec.category_id),
		ARRAY(SELECT eo.user_id::text FROM event_organizers eo WHERE eo.event_id = e.id ORDER BY eo.user_id)
	FROM events e
`

type eventRepository struct {
	conn Connector
}

func NewEventRepository(conn Connector) domain.EventRepository {
	return &eventRepository{conn: conn}
}

// Create inserts the event and its category and organizer links. Callers
// should run it inside a transaction so a bad reference leaves nothing behind.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, description, location, created_at, image_url, start_date_time, end_date_time, price, is_free, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.CreatedAt, e.ImageURL,
		e.StartDate, e.EndDateTime, e.Price, e.IsFree, e.URL,
	).Scan(&e.ID)
	if err != nil {
		return err
	}
	for _, categoryID := range e.Category {
		if _, err := db.ExecContext(ctx, `INSERT INTO event_categories (event_id, category_id) VALUES ($1, $2)`, e.ID, categoryID); err != nil {
			return referenceError(err, "category", categoryID)
		}
	}
	for _, userID := range e.Organizer {
		if _, err := db.ExecContext(ctx, `INSERT INTO event_organizers (event_id, user_id) VALUES ($1, $2)`, e.ID, userID); err != nil {
			return referenceError(err, "organizer", userID)
		}
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}
	e, err := scanEvent(db.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := db.QueryContext(ctx, eventSelect+` ORDER BY e.created_at DESC LIMIT $1 OFFSET $2`, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var startNull, endNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.CreatedAt, &e.ImageURL,
		&startNull, &endNull, &e.Price, &e.IsFree, &e.URL,
		pq.Array(&e.Category), pq.Array(&e.Organizer),
	)
	if err != nil {
		return nil, err
	}
	if startNull.Valid {
		e.StartDate = &startNull.Time
	}
	if endNull.Valid {
		e.EndDateTime = &endNull.Time
	}
	if e.Category == nil {
		e.Category = []string{}
	}
	if e.Organizer == nil {
		e.Organizer = []string{}
	}
	return e, nil
}

func referenceError(err error, kind, id string) error {
	switch pqCode(err) {
	case pqForeignKeyViolation, pqInvalidTextRepresentation:
		return fmt.Errorf("%w: %s %q", domain.ErrInvalidReference, kind, id)
	}
	return err
}
