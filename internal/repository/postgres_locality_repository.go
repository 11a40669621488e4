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

// PostgresLocalityRepository implements LocalityRepository using PostgreSQL
type PostgresLocalityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLocalityRepository creates a new PostgresLocalityRepository
func NewPostgresLocalityRepository(pool *pgxpool.Pool) *PostgresLocalityRepository {
	return &PostgresLocalityRepository{pool: pool}
}

const localitySelect = `
	SELECT l.id::text, l.name, l.address, l.total_capacity, l.renter_id::text,
		l.city_id::text, l.created_at, l.updated_at,
		c.name, c.country, c.latitude, c.longitude
	FROM localities l
	LEFT JOIN cities c ON c.id = l.city_id`

func scanLocality(row pgx.Row) (*domain.Locality, error) {
	locality := &domain.Locality{}
	var (
		cityID, cityName, cityCountry *string
		lat, lon                      *float64
	)

	err := row.Scan(
		&locality.ID,
		&locality.Name,
		&locality.Address,
		&locality.TotalCapacity,
		&locality.RenterID,
		&cityID,
		&locality.CreatedAt,
		&locality.UpdatedAt,
		&cityName,
		&cityCountry,
		&lat,
		&lon,
	)
	if err != nil {
		return nil, err
	}

	if cityID != nil {
		locality.CityID = *cityID
		locality.City = &domain.City{
			ID:        *cityID,
			Name:      deref(cityName),
			Country:   deref(cityCountry),
			Latitude:  lat,
			Longitude: lon,
		}
	}
	return locality, nil
}

// Create creates a locality and its first room
func (r *PostgresLocalityRepository) Create(ctx context.Context, locality *domain.Locality, room *domain.Room) error {
	query := `
		INSERT INTO localities (id, name, address, total_capacity, renter_id, city_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			locality.ID,
			locality.Name,
			locality.Address,
			locality.TotalCapacity,
			locality.RenterID,
			nullable(locality.CityID),
			locality.CreatedAt,
			locality.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create locality: %w", err)
		}
		if room == nil {
			return nil
		}
		return insertRoom(ctx, tx, room)
	})
}

// GetByID retrieves a locality by ID
func (r *PostgresLocalityRepository) GetByID(ctx context.Context, id string) (*domain.Locality, error) {
	locality, err := scanLocality(r.pool.QueryRow(ctx, localitySelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get locality: %w", err)
	}
	return locality, nil
}

// List retrieves all localities, or only the renter's
func (r *PostgresLocalityRepository) List(ctx context.Context, renterID string) ([]*domain.Locality, error) {
	query := localitySelect
	var args []any
	if renterID != "" {
		query += ` WHERE l.renter_id = $1`
		args = append(args, renterID)
	}
	query += ` ORDER BY l.name, l.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list localities: %w", err)
	}
	defer rows.Close()

	var localities []*domain.Locality
	for rows.Next() {
		locality, err := scanLocality(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locality: %w", err)
		}
		localities = append(localities, locality)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate localities: %w", err)
	}
	return localities, nil
}

// Update updates the descriptive fields of a locality
func (r *PostgresLocalityRepository) Update(ctx context.Context, locality *domain.Locality) error {
	query := `
		UPDATE localities SET
			name = $2,
			address = $3,
			city_id = $4,
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		locality.ID,
		locality.Name,
		locality.Address,
		nullable(locality.CityID),
		locality.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update locality: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrLocalityNotFound
	}
	return nil
}

// Delete detaches the locality's rooms from their events, forces those
// events INACTIVE and deletes the locality. Rooms cascade.
func (r *PostgresLocalityRepository) Delete(ctx context.Context, id string) ([]StatusChange, error) {
	var changes []StatusChange

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		changes, err = detachRooms(ctx, tx, `SELECT id FROM rooms WHERE locality_id = $1`, id)
		if err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `DELETE FROM localities WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete locality: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrLocalityNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// detachRooms unlinks the rooms selected by roomQuery from every event and
// forces the affected events INACTIVE
func detachRooms(ctx context.Context, tx pgx.Tx, roomQuery string, arg string) ([]StatusChange, error) {
	lockQuery := `
		SELECT e.id::text, e.status
		FROM events e
		WHERE e.id IN (SELECT er.event_id FROM event_rooms er WHERE er.room_id IN (` + roomQuery + `))
		ORDER BY e.id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, lockQuery, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to lock affected events: %w", err)
	}
	var (
		changes []StatusChange
		ids     []string
	)
	for rows.Next() {
		var change StatusChange
		if err := rows.Scan(&change.EventID, &change.From); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan affected event: %w", err)
		}
		change.To = domain.EventStatusInactive
		changes = append(changes, change)
		ids = append(ids, change.EventID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate affected events: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM event_rooms WHERE room_id IN (`+roomQuery+`)`, arg); err != nil {
		return nil, fmt.Errorf("failed to detach rooms: %w", err)
	}

	if len(ids) > 0 {
		query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = ANY($1::uuid[])`
		if _, err := tx.Exec(ctx, query, ids, domain.EventStatusInactive); err != nil {
			return nil, fmt.Errorf("failed to deactivate events: %w", err)
		}
	}
	return changes, nil
}

func insertRoom(ctx context.Context, tx pgx.Tx, room *domain.Room) error {
	query := `INSERT INTO rooms (id, locality_id, name, floor, capacity) VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, room.ID, room.LocalityID, room.Name, room.Floor, room.Capacity)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// adjustCapacity shifts a locality's total capacity by delta
func adjustCapacity(ctx context.Context, tx pgx.Tx, localityID string, delta int) error {
	query := `UPDATE localities SET total_capacity = total_capacity + $2, updated_at = NOW() WHERE id = $1`

	result, err := tx.Exec(ctx, query, localityID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust locality capacity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrLocalityNotFound
	}
	return nil
}

// CreateRoom creates a room and adds its capacity to the locality
func (r *PostgresLocalityRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertRoom(ctx, tx, room); err != nil {
			return err
		}
		return adjustCapacity(ctx, tx, room.LocalityID, room.Capacity)
	})
}

const roomColumns = `id::text, locality_id::text, name, floor, capacity`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	room := &domain.Room{}
	if err := row.Scan(&room.ID, &room.LocalityID, &room.Name, &room.Floor, &room.Capacity); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom retrieves a room by ID
func (r *PostgresLocalityRepository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := scanRoom(r.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// ListRooms retrieves the rooms of a locality
func (r *PostgresLocalityRepository) ListRooms(ctx context.Context, localityID string) ([]*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE locality_id = $1 ORDER BY floor, name, id`

	rows, err := r.pool.Query(ctx, query, localityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

// CountRooms counts how many of ids exist
func (r *PostgresLocalityRepository) CountRooms(ctx context.Context, ids []string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms WHERE id = ANY($1::uuid[])`, ids).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

// UpdateRoom updates a room and shifts the locality capacity by the change
func (r *PostgresLocalityRepository) UpdateRoom(ctx context.Context, room *domain.Room) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var previous int
		err := tx.QueryRow(ctx, `SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`, room.ID).Scan(&previous)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		query := `UPDATE rooms SET name = $2, floor = $3, capacity = $4 WHERE id = $1`
		if _, err := tx.Exec(ctx, query, room.ID, room.Name, room.Floor, room.Capacity); err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}

		if delta := room.Capacity - previous; delta != 0 {
			return adjustCapacity(ctx, tx, room.LocalityID, delta)
		}
		return nil
	})
}

// DeleteRoom detaches the room from its events, forces them INACTIVE,
// deletes the room and subtracts its capacity
func (r *PostgresLocalityRepository) DeleteRoom(ctx context.Context, id string) ([]StatusChange, error) {
	var changes []StatusChange

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		room, err := scanRoom(tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		changes, err = detachRooms(ctx, tx, `SELECT $1::uuid`, id)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}
		return adjustCapacity(ctx, tx, room.LocalityID, -room.Capacity)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// nullable maps "" to NULL for optional uuid columns
func nullable(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
