package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/pkg/database"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// eventSelect loads an event with its ordered room ids, the count of
// non-cancelled reservations and the city of its first room's locality.
const eventSelect = `
	SELECT e.id::text, e.name, e.description, e.category, e.max_capacity, e.price::float8,
		to_char(e.event_date, 'YYYY-MM-DD'), to_char(e.start_time, 'HH24:MI'),
		e.duration_minutes, e.status, e.organizer_id::text, e.created_at, e.updated_at,
		ARRAY(SELECT er.room_id::text FROM event_rooms er WHERE er.event_id = e.id ORDER BY er.position, er.room_id) AS room_ids,
		(SELECT COUNT(*) FROM reservations r WHERE r.event_id = e.id AND r.status <> 'CANCELLED') AS reservation_count,
		c.id::text, c.name, c.country, c.latitude, c.longitude
	FROM events e
	LEFT JOIN LATERAL (
		SELECT ci.id, ci.name, ci.country, ci.latitude, ci.longitude
		FROM event_rooms er
		JOIN rooms ro ON ro.id = er.room_id
		JOIN localities l ON l.id = ro.locality_id
		LEFT JOIN cities ci ON ci.id = l.city_id
		WHERE er.event_id = e.id
		ORDER BY er.position, er.room_id
		LIMIT 1
	) c ON true`

// scanEvent scans one eventSelect row
func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		cityID, cityName, cityCountry *string
		lat, lon                      *float64
	)

	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Category,
		&event.MaxCapacity,
		&event.Price,
		&event.Date,
		&event.StartTime,
		&event.DurationMinutes,
		&event.Status,
		&event.OrganizerID,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.RoomIDs,
		&event.ReservationCount,
		&cityID,
		&cityName,
		&cityCountry,
		&lat,
		&lon,
	)
	if err != nil {
		return nil, err
	}

	if cityID != nil {
		event.City = &domain.City{
			ID:        *cityID,
			Name:      deref(cityName),
			Country:   deref(cityCountry),
			Latitude:  lat,
			Longitude: lon,
		}
	}
	return event, nil
}

// scanEvents scans multiple eventSelect rows
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// loadEvent reads one event inside tx, returning nil when absent
func loadEvent(ctx context.Context, tx pgx.Tx, id string) (*domain.Event, error) {
	event, err := scanEvent(tx.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Create creates a new event together with its room links
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (
			id, name, description, category, max_capacity, price, event_date,
			start_time, duration_minutes, status, organizer_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8::time, $9, $10, $11, $12, $13)
	`

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			event.ID,
			event.Name,
			event.Description,
			event.Category,
			event.MaxCapacity,
			event.Price,
			event.Date,
			event.StartTime,
			event.DurationMinutes,
			event.Status,
			event.OrganizerID,
			event.CreatedAt,
			event.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return replaceEventRooms(ctx, tx, event.ID, event.RoomIDs)
	})
}

// replaceEventRooms rewrites the room links of an event keeping roomIDs order
func replaceEventRooms(ctx context.Context, tx pgx.Tx, eventID string, roomIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM event_rooms WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear event rooms: %w", err)
	}

	batch := &pgx.Batch{}
	for i, roomID := range roomIDs {
		batch.Queue(`INSERT INTO event_rooms (event_id, room_id, position) VALUES ($1, $2, $3)`, eventID, roomID, i)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to link event rooms: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List retrieves events matching the filter
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter) ([]*domain.Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}

	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OrganizerID != "" {
		conditions = append(conditions, "e.organizer_id = "+arg(filter.OrganizerID))
	}
	if filter.LocalityID != "" {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM event_rooms er JOIN rooms ro ON ro.id = er.room_id
			WHERE er.event_id = e.id AND ro.locality_id = `+arg(filter.LocalityID)+`)`)
	}
	if len(filter.RoomIDs) > 0 {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM event_rooms er
			WHERE er.event_id = e.id AND er.room_id = ANY(`+arg(filter.RoomIDs)+`::uuid[]))`)
	}
	if filter.Date != "" {
		conditions = append(conditions, "e.event_date = "+arg(filter.Date)+"::date")
	}
	if filter.ReservedBy != "" {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.event_id = e.id AND r.user_id = `+arg(filter.ReservedBy)+`)`)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, "e.status = ANY("+arg(statuses)+")")
	}

	query := eventSelect
	if len(conditions) > 0 {
		query += "\n\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\tORDER BY e.event_date, e.start_time, e.created_at, e.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return scanEvents(rows)
}

// Update updates the editable fields and replaces the room links. Status is
// left alone; it is written by UpdateStatus or under the admission lock.
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events SET
			name = $2,
			description = $3,
			category = $4,
			max_capacity = $5,
			price = $6,
			event_date = $7::date,
			start_time = $8::time,
			duration_minutes = $9,
			updated_at = $10
		WHERE id = $1
	`

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query,
			event.ID,
			event.Name,
			event.Description,
			event.Category,
			event.MaxCapacity,
			event.Price,
			event.Date,
			event.StartTime,
			event.DurationMinutes,
			event.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrEventNotFound
		}
		return replaceEventRooms(ctx, tx, event.ID, event.RoomIDs)
	})
}

// UpdateStatus persists a status change
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Delete deletes an event
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
