package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
)

// PostgresCityRepository implements CityRepository using PostgreSQL
type PostgresCityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCityRepository creates a new PostgresCityRepository
func NewPostgresCityRepository(pool *pgxpool.Pool) *PostgresCityRepository {
	return &PostgresCityRepository{pool: pool}
}

const cityColumns = `id::text, name, country, latitude, longitude`

func scanCity(row pgx.Row) (*domain.City, error) {
	city := &domain.City{}
	if err := row.Scan(&city.ID, &city.Name, &city.Country, &city.Latitude, &city.Longitude); err != nil {
		return nil, err
	}
	return city, nil
}

// GetByNameCountry retrieves a city by name and country, ignoring case
func (r *PostgresCityRepository) GetByNameCountry(ctx context.Context, name, country string) (*domain.City, error) {
	query := `
		SELECT ` + cityColumns + `
		FROM cities
		WHERE lower(name) = lower($1) AND lower(country) = lower($2)
	`

	city, err := scanCity(r.pool.QueryRow(ctx, query, strings.TrimSpace(name), strings.TrimSpace(country)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return city, nil
}

// GetByID retrieves a city by ID
func (r *PostgresCityRepository) GetByID(ctx context.Context, id string) (*domain.City, error) {
	city, err := scanCity(r.pool.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return city, nil
}

// Create inserts a city. When another writer created the same city first,
// the existing row is returned instead.
func (r *PostgresCityRepository) Create(ctx context.Context, city *domain.City) (*domain.City, error) {
	query := `
		INSERT INTO cities (id, name, country, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING ` + cityColumns

	created, err := scanCity(r.pool.QueryRow(ctx, query,
		city.ID,
		city.Name,
		city.Country,
		city.Latitude,
		city.Longitude,
	))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to create city: %w", err)
	}

	existing, err := r.GetByNameCountry(ctx, city.Name, city.Country)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("city conflict without existing row")
	}
	return existing, nil
}

// List retrieves all cities
func (r *PostgresCityRepository) List(ctx context.Context) ([]*domain.City, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cityColumns+` FROM cities ORDER BY country, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	var cities []*domain.City
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cities: %w", err)
	}
	return cities, nil
}
