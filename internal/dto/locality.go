package dto

import (
	"strings"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
)

// CreateLocalityRequest represents the request to register a locality
type CreateLocalityRequest struct {
	Name          string `json:"name" binding:"max=200"`
	Address       string `json:"address" binding:"max=300"`
	TotalCapacity int    `json:"total_capacity"`
	City          string `json:"city" binding:"max=120"`
	Country       string `json:"country" binding:"max=120"`
}

// Validate validates the CreateLocalityRequest
func (r *CreateLocalityRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	if r.Name == "" {
		return domain.ErrNameRequired
	}
	if r.Address == "" {
		return domain.ErrAddressRequired
	}
	if r.TotalCapacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	return nil
}

// UpdateLocalityRequest represents a partial locality update
type UpdateLocalityRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=200"`
	Address *string `json:"address" binding:"omitempty,max=300"`
	City    *string `json:"city" binding:"omitempty,max=120"`
	Country *string `json:"country" binding:"omitempty,max=120"`
}

// Validate validates the UpdateLocalityRequest
func (r *UpdateLocalityRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return domain.ErrNameRequired
	}
	if r.Address != nil && strings.TrimSpace(*r.Address) == "" {
		return domain.ErrAddressRequired
	}
	return nil
}

// CreateRoomRequest represents the request to add a room to a locality
type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Floor    int    `json:"floor"`
	Capacity int    `json:"capacity"`
}

// Validate validates the CreateRoomRequest
func (r *CreateRoomRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return domain.ErrNameRequired
	}
	if r.Capacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	return nil
}

// UpdateRoomRequest represents a partial room update
type UpdateRoomRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=200"`
	Floor    *int    `json:"floor"`
	Capacity *int    `json:"capacity"`
}

// Validate validates the UpdateRoomRequest
func (r *UpdateRoomRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return domain.ErrNameRequired
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	return nil
}
