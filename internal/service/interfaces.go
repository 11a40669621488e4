package service

import (
	"context"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/geo"
	"github.com/prohmpiriya/venue-reservation/internal/scoring"
)

// Every event returned by these services carries its current derived status.

// EventService defines the interface for event business logic
type EventService interface {
	// CreateEvent creates a new ACTIVE event owned by the organizer
	CreateEvent(ctx context.Context, identity domain.Identity, req *dto.CreateEventRequest) (*domain.Event, error)
	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	// ListEvents lists all events, or only ACTIVE ones when upcoming is set
	ListEvents(ctx context.Context, upcoming bool) ([]*domain.Event, error)
	// ListMyEvents lists the organizer's events
	ListMyEvents(ctx context.Context, identity domain.Identity) ([]*domain.Event, error)
	// UpdateEvent applies a partial update
	UpdateEvent(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	// DeleteEvent deletes an event with its reservations
	DeleteEvent(ctx context.Context, identity domain.Identity, id string) error
	// OccupiedTimes lists the slots taken in any of the rooms on date
	OccupiedTimes(ctx context.Context, roomIDs []string, date, excludeEventID string) ([]domain.TimeSlot, error)
}

// ReservationService defines the interface for reservation business logic
type ReservationService interface {
	// CreateReservation admits the user to the event
	CreateReservation(ctx context.Context, identity domain.Identity, eventID string) (*domain.Reservation, error)
	// CancelReservation soft-deletes the caller's reservation
	CancelReservation(ctx context.Context, identity domain.Identity, id string) (*domain.Reservation, error)
	// DeleteReservation hard-deletes the caller's reservation
	DeleteReservation(ctx context.Context, identity domain.Identity, id string) error
	// ListMyReservations lists the caller's reservations with their events
	ListMyReservations(ctx context.Context, identity domain.Identity) ([]*domain.ReservationDetails, error)
}

// RatingService defines the interface for rating business logic
type RatingService interface {
	// RateEvent rates a concluded event the caller reserved
	RateEvent(ctx context.Context, identity domain.Identity, eventID string, rating int) (*domain.Reservation, error)
	// EventRatingStats summarizes an event's ratings
	EventRatingStats(ctx context.Context, eventID string) (*domain.RatingStats, error)
	// UserRating returns the caller's rating of an event, 0 when unrated
	UserRating(ctx context.Context, identity domain.Identity, eventID string) (int, error)
	// OrganizerRating returns the organizer's stored average
	OrganizerRating(ctx context.Context, organizerID string) (*float64, error)
}

// SuggestionService defines the interface for event suggestions
type SuggestionService interface {
	// SuggestEvents ranks ACTIVE events for the viewer. A nil identity or
	// one that is not a registered user is treated as anonymous.
	SuggestEvents(ctx context.Context, identity *domain.Identity, point *geo.Point) ([]scoring.Scored, error)
}

// CityService defines the interface for city lookups
type CityService interface {
	// FindOrCreate returns the city, creating and geocoding it when new
	FindOrCreate(ctx context.Context, name, country string) (*domain.City, error)
	// ListCities lists all cities
	ListCities(ctx context.Context) ([]*domain.City, error)
}

// LocalityService defines the interface for locality and room business logic
type LocalityService interface {
	CreateLocality(ctx context.Context, identity domain.Identity, req *dto.CreateLocalityRequest) (*domain.Locality, error)
	GetLocality(ctx context.Context, id string) (*domain.Locality, error)
	ListLocalities(ctx context.Context) ([]*domain.Locality, error)
	ListMyLocalities(ctx context.Context, identity domain.Identity) ([]*domain.Locality, error)
	UpdateLocality(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateLocalityRequest) (*domain.Locality, error)
	DeleteLocality(ctx context.Context, identity domain.Identity, id string) error
	// ListLocalityEvents lists events held in any of the locality's rooms
	ListLocalityEvents(ctx context.Context, id string) ([]*domain.Event, error)
	// LocalityEventCounts counts the locality's ACTIVE and total events
	LocalityEventCounts(ctx context.Context, id string) (*domain.EventCounts, error)

	CreateRoom(ctx context.Context, identity domain.Identity, localityID string, req *dto.CreateRoomRequest) (*domain.Room, error)
	ListRooms(ctx context.Context, localityID string) ([]*domain.Room, error)
	UpdateRoom(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateRoomRequest) (*domain.Room, error)
	DeleteRoom(ctx context.Context, identity domain.Identity, id string) error
}

// ProfileService defines the interface for person profiles and preferences
type ProfileService interface {
	GetProfile(ctx context.Context, identity domain.Identity) (*domain.Person, error)
	UpdateProfile(ctx context.Context, identity domain.Identity, req *dto.UpdateProfileRequest) (*domain.Person, error)
	GetPreferences(ctx context.Context, identity domain.Identity) (*domain.Preferences, error)
	SavePreferences(ctx context.Context, identity domain.Identity, req *dto.PreferencesRequest) (*domain.Preferences, error)
}

// Reconciler brings every stored event status up to date
type Reconciler interface {
	// ReconcileAll returns the number of events whose status changed
	ReconcileAll(ctx context.Context) (int, error)
}
