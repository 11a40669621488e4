package dto

import "github.com/prohmpiriya/venue-reservation/internal/domain"

// CreateReservationRequest represents the request to reserve a spot
type CreateReservationRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}

// RateEventRequest represents the request to rate a concluded event
type RateEventRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

// Validate checks the rating bounds
func (r *RateEventRequest) Validate() error {
	if r.Rating == nil || *r.Rating < domain.MinRating || *r.Rating > domain.MaxRating {
		return domain.ErrInvalidRating
	}
	return nil
}

// UserRatingResponse is the caller's rating of one event, 0 when unrated
type UserRatingResponse struct {
	EventID string `json:"event_id"`
	Rating  int    `json:"rating"`
}

// OrganizerRatingResponse is an organizer's stored average
type OrganizerRatingResponse struct {
	OrganizerID   string   `json:"organizer_id"`
	AverageRating *float64 `json:"average_rating"`
}
