package dto

import (
	"strings"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/geo"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Name            string   `json:"name" binding:"required,max=200"`
	Description     string   `json:"description"`
	Category        string   `json:"category" binding:"max=100"`
	MaxCapacity     int      `json:"max_capacity"`
	Price           float64  `json:"price"`
	Date            string   `json:"date" binding:"required,isodate"`
	StartTime       string   `json:"start_time" binding:"required,hhmm"`
	DurationMinutes int      `json:"duration_minutes"`
	RoomIDs         []string `json:"room_ids" binding:"dive,uuid"`
}

// Validate checks the domain rules and normalizes StartTime to HH:MM
func (r *CreateEventRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return domain.ErrNameRequired
	}
	if r.MaxCapacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	if r.Price < 0 {
		return domain.ErrInvalidPrice
	}
	if r.DurationMinutes < domain.MinEventDurationMinutes {
		return domain.ErrInvalidDuration
	}
	if _, err := domain.ParseDate(r.Date); err != nil {
		return err
	}
	clock, err := domain.NormalizeClock(r.StartTime)
	if err != nil {
		return err
	}
	r.StartTime = clock
	if len(r.RoomIDs) == 0 {
		return domain.ErrRoomsRequired
	}
	r.RoomIDs = uniqueIDs(r.RoomIDs)
	return nil
}

// UpdateEventRequest represents a partial event update; nil fields are kept
type UpdateEventRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=200"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category" binding:"omitempty,max=100"`
	MaxCapacity     *int     `json:"max_capacity"`
	Price           *float64 `json:"price"`
	Date            *string  `json:"date" binding:"omitempty,isodate"`
	StartTime       *string  `json:"start_time" binding:"omitempty,hhmm"`
	DurationMinutes *int     `json:"duration_minutes"`
	RoomIDs         []string `json:"room_ids" binding:"omitempty,dive,uuid"`
}

// Validate applies the creation rules to the supplied fields
func (r *UpdateEventRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return domain.ErrNameRequired
		}
		r.Name = &name
	}
	if r.MaxCapacity != nil && *r.MaxCapacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	if r.Price != nil && *r.Price < 0 {
		return domain.ErrInvalidPrice
	}
	if r.DurationMinutes != nil && *r.DurationMinutes < domain.MinEventDurationMinutes {
		return domain.ErrInvalidDuration
	}
	if r.Date != nil {
		if _, err := domain.ParseDate(*r.Date); err != nil {
			return err
		}
	}
	if r.StartTime != nil {
		clock, err := domain.NormalizeClock(*r.StartTime)
		if err != nil {
			return err
		}
		r.StartTime = &clock
	}
	// A present but empty list would detach the event from every room
	if r.RoomIDs != nil {
		if len(r.RoomIDs) == 0 {
			return domain.ErrRoomsRequired
		}
		r.RoomIDs = uniqueIDs(r.RoomIDs)
	}
	return nil
}

// OccupiedTimesQuery selects the busy slots of some rooms on one day
type OccupiedTimesQuery struct {
	RoomIDs        string `form:"room_ids" binding:"required"`
	Date           string `form:"date" binding:"required,isodate"`
	ExcludeEventID string `form:"exclude_event_id" binding:"omitempty,uuid"`
}

// RoomIDList splits the comma separated room ids
func (q *OccupiedTimesQuery) RoomIDList() []string {
	var ids []string
	for _, id := range strings.Split(q.RoomIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return uniqueIDs(ids)
}

// SuggestQuery carries the optional viewer position
type SuggestQuery struct {
	Lat *float64 `form:"lat" binding:"omitempty,latitude"`
	Lon *float64 `form:"lon" binding:"omitempty,longitude"`
}

// Point returns the viewer position, nil when neither coordinate is given.
// A lone coordinate is an error.
func (q *SuggestQuery) Point() (*geo.Point, error) {
	switch {
	case q.Lat == nil && q.Lon == nil:
		return nil, nil
	case q.Lat == nil || q.Lon == nil:
		return nil, domain.ErrInvalidCoordinate
	}
	return &geo.Point{Lat: *q.Lat, Lon: *q.Lon}, nil
}

// SuggestedEventResponse is one ranked suggestion
type SuggestedEventResponse struct {
	*domain.Event
	Score float64 `json:"score"`
}

// uniqueIDs drops duplicates keeping first occurrences
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
