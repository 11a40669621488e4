package dto

import (
	"strings"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
)

// UpdateProfileRequest represents the profile fields a person may set.
// Fields that do not apply to the caller's role are ignored.
type UpdateProfileRequest struct {
	Email            string `json:"email" binding:"omitempty,email,max=255"`
	FirstName        string `json:"first_name" binding:"max=100"`
	LastName         string `json:"last_name" binding:"max=100"`
	MobilePhone      string `json:"mobile_phone" binding:"max=32"`
	OrganizationName string `json:"organization_name" binding:"max=200"`
}

// PreferencesRequest represents a registered user's suggestion preferences
type PreferencesRequest struct {
	Category   string    `json:"category" binding:"max=100"`
	PriceRange []float64 `json:"price_range"`
	// City is "Name, Country"
	City string `json:"city" binding:"max=250"`
}

// Validate checks the price range and returns its bounds, nil when unset
func (r *PreferencesRequest) Validate() (minPrice, maxPrice *float64, err error) {
	r.Category = strings.TrimSpace(r.Category)
	switch len(r.PriceRange) {
	case 0:
		return nil, nil, nil
	case 2:
		lo, hi := r.PriceRange[0], r.PriceRange[1]
		if lo < 0 || lo > hi {
			return nil, nil, domain.ErrInvalidPriceRange
		}
		return &lo, &hi, nil
	default:
		return nil, nil, domain.ErrInvalidPriceRange
	}
}
