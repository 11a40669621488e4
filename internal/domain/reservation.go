package domain

import "time"

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

const (
	MinRating = 0
	MaxRating = 5
)

// Reservation is one user's spot at one event
type Reservation struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	EventID         string            `json:"event_id"`
	ReservationDate time.Time         `json:"reservation_date"`
	Status          ReservationStatus `json:"status"`
	Rating          *int              `json:"rating,omitempty"`
}

// IsActive reports whether the reservation holds capacity
func (r *Reservation) IsActive() bool {
	return r.Status != ReservationStatusCancelled
}

// ReservationDetails is a reservation joined with its event for "my reservations"
type ReservationDetails struct {
	Reservation
	EventName      string      `json:"event_name"`
	EventDate      string      `json:"event_date"`
	EventStartTime string      `json:"event_start_time"`
	EventStatus    EventStatus `json:"event_status"`
}

// RatingStats summarizes the ratings of one event
type RatingStats struct {
	EventID      string      `json:"event_id"`
	Average      *float64    `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// NewRatingStats builds stats from raw ratings; every bucket 0..5 is present
func NewRatingStats(eventID string, ratings []int) *RatingStats {
	stats := &RatingStats{
		EventID:      eventID,
		Distribution: make(map[int]int, MaxRating-MinRating+1),
	}
	for r := MinRating; r <= MaxRating; r++ {
		stats.Distribution[r] = 0
	}
	stats.Average = MeanRating(ratings)
	for _, r := range ratings {
		stats.Distribution[r]++
	}
	stats.Count = len(ratings)
	return stats
}

// MeanRating returns nil for no ratings
func MeanRating(ratings []int) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg
}
