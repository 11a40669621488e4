package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/pkg/database"
)

// activeReservationIndex backs the one-active-reservation-per-user rule
const activeReservationIndex = "uq_reservations_active"

// PostgresReservationRepository implements ReservationRepository and
// RatingRepository using PostgreSQL
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

const reservationColumns = `id::text, user_id::text, event_id::text, reservation_date, status, rating`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	var rating *int16

	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.EventID,
		&reservation.ReservationDate,
		&reservation.Status,
		&rating,
	)
	if err != nil {
		return nil, err
	}
	if rating != nil {
		v := int(*rating)
		reservation.Rating = &v
	}
	return reservation, nil
}

// WithEventLock locks the event row for the duration of fn
func (r *PostgresReservationRepository) WithEventLock(ctx context.Context, eventID string, fn func(tx AdmissionTx, event *domain.Event) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		err := tx.QueryRow(ctx, `SELECT id::text FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&locked)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to lock event: %w", err)
		}

		admission := &admissionTx{tx: tx, eventID: eventID}
		if errors.Is(err, pgx.ErrNoRows) {
			return fn(admission, nil)
		}

		event, err := loadEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		return fn(admission, event)
	})
}

// admissionTx implements AdmissionTx over a transaction holding the event lock
type admissionTx struct {
	tx      pgx.Tx
	eventID string
}

func (a *admissionTx) HasActiveReservation(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE event_id = $1 AND user_id = $2 AND status <> 'CANCELLED'
		)
	`

	var exists bool
	if err := a.tx.QueryRow(ctx, query, a.eventID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	return exists, nil
}

func (a *admissionTx) InsertReservation(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (id, user_id, event_id, reservation_date, status, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := a.tx.Exec(ctx, query,
		reservation.ID,
		reservation.UserID,
		a.eventID,
		reservation.ReservationDate,
		reservation.Status,
		reservation.Rating,
	)
	if err != nil {
		if database.IsUniqueViolation(err, activeReservationIndex) {
			return domain.ErrDuplicateReservation
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (a *admissionTx) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 AND event_id = $2 FOR UPDATE`

	reservation, err := scanReservation(a.tx.QueryRow(ctx, query, id, a.eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

func (a *admissionTx) SetReservationStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	result, err := a.tx.Exec(ctx, `UPDATE reservations SET status = $3 WHERE id = $1 AND event_id = $2`, id, a.eventID, status)
	if err != nil {
		if database.IsUniqueViolation(err, activeReservationIndex) {
			return domain.ErrDuplicateReservation
		}
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (a *admissionTx) SetEventStatus(ctx context.Context, status domain.EventStatus) error {
	_, err := a.tx.Exec(ctx, `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`, a.eventID, status)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return nil
}

// GetByID retrieves a reservation by ID
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

// FindByUserAndEvent retrieves the reservation a user holds for an event
func (r *PostgresReservationRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1 AND event_id = $2
		ORDER BY (status = 'CANCELLED'), reservation_date DESC
		LIMIT 1
	`

	reservation, err := scanReservation(r.pool.QueryRow(ctx, query, userID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return reservation, nil
}

// ListByUser retrieves a user's reservations with their events, newest first
func (r *PostgresReservationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ReservationDetails, error) {
	query := `
		SELECT r.id::text, r.user_id::text, r.event_id::text, r.reservation_date, r.status, r.rating,
			e.name, to_char(e.event_date, 'YYYY-MM-DD'), to_char(e.start_time, 'HH24:MI'), e.status
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.reservation_date DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var details []*domain.ReservationDetails
	for rows.Next() {
		d := &domain.ReservationDetails{}
		var rating *int16
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.EventID,
			&d.ReservationDate,
			&d.Status,
			&rating,
			&d.EventName,
			&d.EventDate,
			&d.EventStartTime,
			&d.EventStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		if rating != nil {
			v := int(*rating)
			d.Rating = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return details, nil
}

// Delete hard-deletes a reservation
func (r *PostgresReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// EventRatings retrieves every rating given to an event
func (r *PostgresReservationRepository) EventRatings(ctx context.Context, eventID string) ([]int, error) {
	return collectRatings(ctx, r.pool, `SELECT rating FROM reservations WHERE event_id = $1 AND rating IS NOT NULL`, eventID)
}

// WithOrganizerLock locks the organizer row for the duration of fn
func (r *PostgresReservationRepository) WithOrganizerLock(ctx context.Context, organizerID string, fn func(tx RatingTx) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		err := tx.QueryRow(ctx, `SELECT id::text FROM persons WHERE id = $1 FOR UPDATE`, organizerID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrPersonNotFound
			}
			return fmt.Errorf("failed to lock organizer: %w", err)
		}
		return fn(&ratingTx{tx: tx, organizerID: organizerID})
	})
}

// ratingTx implements RatingTx over a transaction holding the organizer lock
type ratingTx struct {
	tx          pgx.Tx
	organizerID string
}

func (t *ratingTx) SetReservationRating(ctx context.Context, reservationID string, rating int) error {
	result, err := t.tx.Exec(ctx, `UPDATE reservations SET rating = $2 WHERE id = $1`, reservationID, rating)
	if err != nil {
		return fmt.Errorf("failed to rate reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (t *ratingTx) OrganizerRatings(ctx context.Context) ([]int, error) {
	query := `
		SELECT r.rating
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE e.organizer_id = $1 AND r.rating IS NOT NULL
	`
	return collectRatings(ctx, t.tx, query, t.organizerID)
}

func (t *ratingTx) SetOrganizerAverage(ctx context.Context, average *float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE persons SET average_rating = $2, updated_at = NOW() WHERE id = $1`, t.organizerID, average)
	if err != nil {
		return fmt.Errorf("failed to update organizer rating: %w", err)
	}
	return nil
}

// rowQuerier is satisfied by *pgxpool.Pool and pgx.Tx
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func collectRatings(ctx context.Context, q rowQuerier, query string, args ...any) ([]int, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int16
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, int(rating))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}
	return ratings, nil
}
