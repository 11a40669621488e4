package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// cityService implements CityService
type cityService struct {
	cityRepo repository.CityRepository
	geocoder Geocoder
	sfGroup  singleflight.Group
}

// NewCityService creates a new CityService
func NewCityService(cityRepo repository.CityRepository, geocoder Geocoder) CityService {
	if geocoder == nil {
		geocoder = NoOpGeocoder{}
	}
	return &cityService{
		cityRepo: cityRepo,
		geocoder: geocoder,
	}
}

// FindOrCreate returns the stored city or creates it. Concurrent calls for
// the same city share one lookup. A failed geocode stores null coordinates.
func (s *cityService) FindOrCreate(ctx context.Context, name, country string) (*domain.City, error) {
	name, country = strings.TrimSpace(name), strings.TrimSpace(country)
	if name == "" || country == "" {
		return nil, domain.ErrNameRequired
	}

	v, err, _ := s.sfGroup.Do(domain.CityKey(name, country), func() (interface{}, error) {
		city, err := s.cityRepo.GetByNameCountry(ctx, name, country)
		if err != nil {
			return nil, err
		}
		if city != nil {
			return city, nil
		}

		city = &domain.City{
			ID:      uuid.New().String(),
			Name:    name,
			Country: country,
		}
		point, err := s.geocoder.Geocode(ctx, name, country)
		switch {
		case err != nil:
			logger.Get().WithContext(ctx).Warn("geocoding failed, storing city without coordinates",
				zap.String("city", city.Label()),
				zap.Error(err),
			)
		case point == nil:
			logger.Get().WithContext(ctx).Info("city not found by geocoder",
				zap.String("city", city.Label()),
			)
		default:
			city.Latitude, city.Longitude = &point.Lat, &point.Lon
		}

		return s.cityRepo.Create(ctx, city)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.City), nil
}

// ListCities lists all cities
func (s *cityService) ListCities(ctx context.Context) ([]*domain.City, error) {
	cities, err := s.cityRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cities == nil {
		cities = []*domain.City{}
	}
	return cities, nil
}
