package repository

import (
	"context"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
)

// Lookups return (nil, nil) when the row does not exist.

// EventRepository defines the interface for event data access.
// Loaded events carry RoomIDs, ReservationCount and City.
type EventRepository interface {
	// Create inserts the event and its room links
	Create(ctx context.Context, event *domain.Event) error
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// List lists events matching filter, ordered by date and start time
	List(ctx context.Context, filter *EventFilter) ([]*domain.Event, error)
	// Update updates fields and replaces the room links; status is not written
	Update(ctx context.Context, event *domain.Event) error
	// UpdateStatus persists a status change only
	UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error
	// Delete deletes an event; reservations cascade
	Delete(ctx context.Context, id string) error
}

// EventFilter contains filter options for listing events. Zero values do not filter.
type EventFilter struct {
	OrganizerID string
	LocalityID  string
	// RoomIDs with Date selects events in any of the rooms on that day
	RoomIDs []string
	Date    string
	// ReservedBy selects events the user holds any reservation for
	ReservedBy string
	Statuses   []domain.EventStatus
}

// AdmissionTx runs inside a transaction holding the event row lock
type AdmissionTx interface {
	// HasActiveReservation reports a non-cancelled reservation by userID
	HasActiveReservation(ctx context.Context, userID string) (bool, error)
	// InsertReservation inserts a reservation for the locked event
	InsertReservation(ctx context.Context, reservation *domain.Reservation) error
	// GetReservation reads a reservation of the locked event
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	// SetReservationStatus updates a reservation of the locked event
	SetReservationStatus(ctx context.Context, id string, status domain.ReservationStatus) error
	// SetEventStatus persists the locked event's status
	SetEventStatus(ctx context.Context, status domain.EventStatus) error
}

// ReservationRepository defines the interface for reservation data access
type ReservationRepository interface {
	// WithEventLock locks the event row, loads it with its current
	// reservation count and runs fn in the same transaction. event is nil
	// when it does not exist. fn's error rolls the transaction back.
	WithEventLock(ctx context.Context, eventID string, fn func(tx AdmissionTx, event *domain.Event) error) error
	// GetByID retrieves a reservation by ID
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// FindByUserAndEvent prefers the non-cancelled reservation, then the newest
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Reservation, error)
	// ListByUser lists a user's reservations joined with their events
	ListByUser(ctx context.Context, userID string) ([]*domain.ReservationDetails, error)
	// Delete hard-deletes a reservation
	Delete(ctx context.Context, id string) error
	// EventRatings returns every rating given to an event
	EventRatings(ctx context.Context, eventID string) ([]int, error)
}

// RatingTx runs inside a transaction holding the organizer row lock
type RatingTx interface {
	// SetReservationRating stores a rating on a reservation
	SetReservationRating(ctx context.Context, reservationID string, rating int) error
	// OrganizerRatings returns every rating across the organizer's events
	OrganizerRatings(ctx context.Context) ([]int, error)
	// SetOrganizerAverage stores the average, nil when there are no ratings
	SetOrganizerAverage(ctx context.Context, average *float64) error
}

// RatingRepository serializes rating writes per organizer
type RatingRepository interface {
	WithOrganizerLock(ctx context.Context, organizerID string, fn func(tx RatingTx) error) error
}

// LocalityRepository defines the interface for locality and room data access
type LocalityRepository interface {
	// Create inserts a locality together with its first room
	Create(ctx context.Context, locality *domain.Locality, room *domain.Room) error
	// GetByID retrieves a locality with its city
	GetByID(ctx context.Context, id string) (*domain.Locality, error)
	// List lists all localities, or the renter's when renterID is set
	List(ctx context.Context, renterID string) ([]*domain.Locality, error)
	// Update updates a locality
	Update(ctx context.Context, locality *domain.Locality) error
	// Delete detaches every room from its events, forces those events
	// INACTIVE and deletes the locality with its rooms. It returns the
	// events whose status was forced.
	Delete(ctx context.Context, id string) ([]StatusChange, error)

	// CreateRoom inserts a room and adds its capacity to the locality
	CreateRoom(ctx context.Context, room *domain.Room) error
	// GetRoom retrieves a room by ID
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	// ListRooms lists the rooms of a locality
	ListRooms(ctx context.Context, localityID string) ([]*domain.Room, error)
	// CountRooms counts how many of ids exist
	CountRooms(ctx context.Context, ids []string) (int, error)
	// UpdateRoom updates a room and shifts the locality capacity by the difference
	UpdateRoom(ctx context.Context, room *domain.Room) error
	// DeleteRoom detaches the room like Delete does and subtracts its capacity
	DeleteRoom(ctx context.Context, id string) ([]StatusChange, error)
}

// StatusChange records an event status written by a cascading operation
type StatusChange struct {
	EventID string
	From    domain.EventStatus
	To      domain.EventStatus
}

// CityRepository defines the interface for city data access
type CityRepository interface {
	// GetByNameCountry matches case-insensitively
	GetByNameCountry(ctx context.Context, name, country string) (*domain.City, error)
	// GetByID retrieves a city by ID
	GetByID(ctx context.Context, id string) (*domain.City, error)
	// Create inserts a city; on a concurrent duplicate it returns the existing row
	Create(ctx context.Context, city *domain.City) (*domain.City, error)
	// List lists all cities
	List(ctx context.Context) ([]*domain.City, error)
}

// PersonRepository defines the interface for person data access
type PersonRepository interface {
	// Ensure inserts a bare row for the identity if none exists
	Ensure(ctx context.Context, identity domain.Identity) error
	// GetByID retrieves a person with the variant for its role
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	// Upsert writes the base fields and the role's variant
	Upsert(ctx context.Context, person *domain.Person) error
	// SavePreferences writes only the preference columns
	SavePreferences(ctx context.Context, userID string, prefs *domain.Preferences) error
}
