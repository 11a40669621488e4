package service

import (
	"context"
	"strings"
	"time"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
)

// profileService implements ProfileService
type profileService struct {
	personRepo repository.PersonRepository
	cities     CityService
}

// NewProfileService creates a new ProfileService
func NewProfileService(personRepo repository.PersonRepository, cities CityService) ProfileService {
	return &profileService{
		personRepo: personRepo,
		cities:     cities,
	}
}

// GetProfile returns the caller's profile, creating a bare one on first use
func (s *profileService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.Person, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.personRepo.Ensure(ctx, identity); err != nil {
		return nil, err
	}
	person, err := s.personRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, domain.ErrPersonNotFound
	}
	return person, nil
}

// UpdateProfile upserts the caller's profile. Username and role always
// come from the token.
func (s *profileService) UpdateProfile(ctx context.Context, identity domain.Identity, req *dto.UpdateProfileRequest) (*domain.Person, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	person := domain.NewPerson(identity)
	person.Email = strings.TrimSpace(req.Email)
	person.FirstName = strings.TrimSpace(req.FirstName)
	person.LastName = strings.TrimSpace(req.LastName)
	switch {
	case person.Organizer != nil:
		person.Organizer.MobilePhone = strings.TrimSpace(req.MobilePhone)
		person.Organizer.OrganizationName = strings.TrimSpace(req.OrganizationName)
	case person.Renter != nil:
		person.Renter.MobilePhone = strings.TrimSpace(req.MobilePhone)
	}
	person.UpdatedAt = time.Now()

	if err := s.personRepo.Upsert(ctx, person); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, identity)
}

// GetPreferences returns the caller's preferences, empty when never set
func (s *profileService) GetPreferences(ctx context.Context, identity domain.Identity) (*domain.Preferences, error) {
	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		return nil, err
	}
	person, err := s.personRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if person == nil || person.Preferences == nil {
		return &domain.Preferences{}, nil
	}
	return person.Preferences, nil
}

// SavePreferences replaces the caller's preferences. A city that is not
// "Name, Country" clears the preferred city.
func (s *profileService) SavePreferences(ctx context.Context, identity domain.Identity, req *dto.PreferencesRequest) (*domain.Preferences, error) {
	if err := requireRole(identity, domain.RoleRegisteredUser); err != nil {
		return nil, err
	}
	minPrice, maxPrice, err := req.Validate()
	if err != nil {
		return nil, err
	}

	prefs := &domain.Preferences{
		Category: req.Category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
	if name, country, ok := domain.ParseCityLabel(req.City); ok {
		city, err := s.cities.FindOrCreate(ctx, name, country)
		if err != nil {
			return nil, err
		}
		prefs.CityID, prefs.City = city.ID, city
	}

	if err := s.personRepo.Ensure(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.personRepo.SavePreferences(ctx, identity.UserID, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
