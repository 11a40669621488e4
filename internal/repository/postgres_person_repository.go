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

// usernameConstraint is the UNIQUE constraint Postgres generates for persons.username
const usernameConstraint = "persons_username_key"

// PostgresPersonRepository implements PersonRepository using PostgreSQL.
// All roles share the persons table; unused variant columns keep defaults.
type PostgresPersonRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPersonRepository creates a new PostgresPersonRepository
func NewPostgresPersonRepository(pool *pgxpool.Pool) *PostgresPersonRepository {
	return &PostgresPersonRepository{pool: pool}
}

// Ensure inserts a bare row for the identity if none exists
func (r *PostgresPersonRepository) Ensure(ctx context.Context, identity domain.Identity) error {
	query := `
		INSERT INTO persons (id, username, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`

	username := identity.Username
	if username == "" {
		username = identity.UserID
	}
	if _, err := r.pool.Exec(ctx, query, identity.UserID, username, identity.Role); err != nil {
		if database.IsUniqueViolation(err, usernameConstraint) {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
		}
		return fmt.Errorf("failed to ensure person: %w", err)
	}
	return nil
}

// GetByID retrieves a person with the variant matching its role
func (r *PostgresPersonRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	query := `
		SELECT p.id::text, p.username, p.email, p.first_name, p.last_name, p.role,
			p.mobile_phone, p.organization_name, p.average_rating,
			p.preferred_category, p.min_price::float8, p.max_price::float8,
			c.id::text, c.name, c.country, c.latitude, c.longitude,
			p.created_at, p.updated_at
		FROM persons p
		LEFT JOIN cities c ON c.id = p.preferred_city_id
		WHERE p.id = $1
	`

	person := &domain.Person{}
	var (
		mobilePhone, organizationName string
		averageRating                 *float64
		category                      string
		minPrice, maxPrice            *float64
		cityID, cityName, cityCountry *string
		lat, lon                      *float64
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&person.ID,
		&person.Username,
		&person.Email,
		&person.FirstName,
		&person.LastName,
		&person.Role,
		&mobilePhone,
		&organizationName,
		&averageRating,
		&category,
		&minPrice,
		&maxPrice,
		&cityID,
		&cityName,
		&cityCountry,
		&lat,
		&lon,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	switch person.Role {
	case domain.RoleRegisteredUser:
		prefs := &domain.Preferences{
			Category: category,
			MinPrice: minPrice,
			MaxPrice: maxPrice,
		}
		if cityID != nil {
			prefs.CityID = *cityID
			prefs.City = &domain.City{
				ID:        *cityID,
				Name:      deref(cityName),
				Country:   deref(cityCountry),
				Latitude:  lat,
				Longitude: lon,
			}
		}
		person.Preferences = prefs
	case domain.RoleEventOrganizer:
		person.Organizer = &domain.OrganizerProfile{
			MobilePhone:      mobilePhone,
			OrganizationName: organizationName,
			AverageRating:    averageRating,
		}
	case domain.RoleSpaceRenter:
		person.Renter = &domain.RenterProfile{MobilePhone: mobilePhone}
	}
	return person, nil
}

// Upsert writes the base fields and the role's contact fields.
// Preferences and the organizer average have their own writers.
func (r *PostgresPersonRepository) Upsert(ctx context.Context, person *domain.Person) error {
	query := `
		INSERT INTO persons (
			id, username, email, first_name, last_name, role,
			mobile_phone, organization_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			mobile_phone = EXCLUDED.mobile_phone,
			organization_name = EXCLUDED.organization_name,
			updated_at = EXCLUDED.updated_at
	`

	var mobilePhone, organizationName string
	switch {
	case person.Organizer != nil:
		mobilePhone = person.Organizer.MobilePhone
		organizationName = person.Organizer.OrganizationName
	case person.Renter != nil:
		mobilePhone = person.Renter.MobilePhone
	}

	_, err := r.pool.Exec(ctx, query,
		person.ID,
		person.Username,
		person.Email,
		person.FirstName,
		person.LastName,
		person.Role,
		mobilePhone,
		organizationName,
		person.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, usernameConstraint) {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, person.Username)
		}
		return fmt.Errorf("failed to upsert person: %w", err)
	}
	return nil
}

// SavePreferences writes the preference columns of a registered user
func (r *PostgresPersonRepository) SavePreferences(ctx context.Context, userID string, prefs *domain.Preferences) error {
	query := `
		UPDATE persons SET
			preferred_category = $2,
			min_price = $3,
			max_price = $4,
			preferred_city_id = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	if prefs == nil {
		prefs = &domain.Preferences{}
	}
	result, err := r.pool.Exec(ctx, query,
		userID,
		prefs.Category,
		prefs.MinPrice,
		prefs.MaxPrice,
		nullable(prefs.CityID),
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}
