package domain

import (
	"fmt"
	"time"
)

// EventStatus is the derived lifecycle state of an event
type EventStatus string

const (
	EventStatusActive   EventStatus = "ACTIVE"
	EventStatusFull     EventStatus = "FULL"
	EventStatusInactive EventStatus = "INACTIVE"
)

const (
	// DateLayout is the wire and storage format of Event.Date
	DateLayout = "2006-01-02"
	// ClockLayout is the wire and storage format of Event.StartTime
	ClockLayout = "15:04"

	MinEventDurationMinutes = 15
)

// Event represents an event held in one or more rooms
type Event struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	MaxCapacity     int         `json:"max_capacity"`
	Price           float64     `json:"price"`
	Date            string      `json:"date"`
	StartTime       string      `json:"start_time"`
	DurationMinutes int         `json:"duration_minutes"`
	Status          EventStatus `json:"status"`
	OrganizerID     string      `json:"organizer_id"`
	RoomIDs         []string    `json:"room_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Loaded alongside the row, not stored on it
	ReservationCount int   `json:"reservation_count"` // non-cancelled
	City             *City `json:"city,omitempty"`    // city of the first room's locality
}

// StartsAt combines Date and StartTime in loc
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, e.Date+" "+e.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s has malformed schedule: %w", e.ID, err)
	}
	return t, nil
}

// EndsAt is StartsAt plus the duration
func (e *Event) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := e.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(e.DurationMinutes) * time.Minute), nil
}

// RemainingCapacity never goes below zero
func (e *Event) RemainingCapacity() int {
	if remaining := e.MaxCapacity - e.ReservationCount; remaining > 0 {
		return remaining
	}
	return 0
}

func (e *Event) IsFree() bool {
	return e.Price == 0
}

// CityID returns the id of the resolved city or ""
func (e *Event) CityID() string {
	if e.City == nil {
		return ""
	}
	return e.City.ID
}

// DeriveStatus computes the status from ReservationCount and the schedule.
// An event detached from all of its rooms stays INACTIVE, and one whose
// schedule cannot be parsed is treated as concluded.
func (e *Event) DeriveStatus(now time.Time) EventStatus {
	if len(e.RoomIDs) == 0 {
		return EventStatusInactive
	}
	start, err := e.StartsAt(now.Location())
	if err != nil {
		if e.ReservationCount >= e.MaxCapacity {
			return EventStatusFull
		}
		return EventStatusInactive
	}
	return DeriveStatus(e.MaxCapacity, e.ReservationCount, start, now)
}

// DeriveStatus applies, in order: FULL when active reservations reach capacity,
// INACTIVE when the start instant is strictly before now, ACTIVE otherwise.
func DeriveStatus(maxCapacity, activeReservations int, startsAt, now time.Time) EventStatus {
	if activeReservations >= maxCapacity {
		return EventStatusFull
	}
	if startsAt.Before(now) {
		return EventStatusInactive
	}
	return EventStatusActive
}

// Refresh sets Status to the derived value and reports whether it changed
func (e *Event) Refresh(now time.Time) bool {
	derived := e.DeriveStatus(now)
	if derived == e.Status {
		return false
	}
	e.Status = derived
	return true
}

// TimeSlot is an occupied [Start, End) interval on a day, both HH:MM
type TimeSlot struct {
	EventID string `json:"event_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// ParseDate validates a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidSchedule)
	}
	return t, nil
}

// NormalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM
func NormalizeClock(s string) (string, error) {
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", fmt.Errorf("%w: start time must be HH:MM", ErrInvalidSchedule)
}
