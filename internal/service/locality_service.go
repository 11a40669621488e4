package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
)

// localityService implements LocalityService
type localityService struct {
	localityRepo repository.LocalityRepository
	eventRepo    repository.EventRepository
	personRepo   repository.PersonRepository
	cities       CityService
	status       *statusRefresher
}

// NewLocalityService creates a new LocalityService
func NewLocalityService(
	localityRepo repository.LocalityRepository,
	eventRepo repository.EventRepository,
	personRepo repository.PersonRepository,
	cities CityService,
	publisher EventPublisher,
) LocalityService {
	return &localityService{
		localityRepo: localityRepo,
		eventRepo:    eventRepo,
		personRepo:   personRepo,
		cities:       cities,
		status:       newStatusRefresher(eventRepo, publisher),
	}
}

// CreateLocality creates a locality with its default room
func (s *localityService) CreateLocality(ctx context.Context, identity domain.Identity, req *dto.CreateLocalityRequest) (*domain.Locality, error) {
	if err := requireRole(identity, domain.RoleSpaceRenter); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var city *domain.City
	if strings.TrimSpace(req.City) != "" && strings.TrimSpace(req.Country) != "" {
		var err error
		if city, err = s.cities.FindOrCreate(ctx, req.City, req.Country); err != nil {
			return nil, err
		}
	}
	if err := s.personRepo.Ensure(ctx, identity); err != nil {
		return nil, err
	}

	now := s.status.now()
	locality := &domain.Locality{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Address:       req.Address,
		TotalCapacity: req.TotalCapacity,
		RenterID:      identity.UserID,
		City:          city,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if city != nil {
		locality.CityID = city.ID
	}
	room := &domain.Room{
		ID:         uuid.New().String(),
		LocalityID: locality.ID,
		Name:       domain.DefaultRoomName,
		Floor:      0,
		Capacity:   req.TotalCapacity,
	}

	if err := s.localityRepo.Create(ctx, locality, room); err != nil {
		return nil, err
	}
	return locality, nil
}

// GetLocality retrieves a locality by ID
func (s *localityService) GetLocality(ctx context.Context, id string) (*domain.Locality, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	locality, err := s.localityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if locality == nil {
		return nil, domain.ErrLocalityNotFound
	}
	return locality, nil
}

// ListLocalities lists all localities
func (s *localityService) ListLocalities(ctx context.Context) ([]*domain.Locality, error) {
	return s.list(ctx, "")
}

// ListMyLocalities lists the renter's localities
func (s *localityService) ListMyLocalities(ctx context.Context, identity domain.Identity) ([]*domain.Locality, error) {
	if err := requireRole(identity, domain.RoleSpaceRenter); err != nil {
		return nil, err
	}
	return s.list(ctx, identity.UserID)
}

func (s *localityService) list(ctx context.Context, renterID string) ([]*domain.Locality, error) {
	localities, err := s.localityRepo.List(ctx, renterID)
	if err != nil {
		return nil, err
	}
	if localities == nil {
		localities = []*domain.Locality{}
	}
	return localities, nil
}

// getOwned loads a locality and checks that the caller rents it out
func (s *localityService) getOwned(ctx context.Context, identity domain.Identity, id string) (*domain.Locality, error) {
	if err := requireRole(identity, domain.RoleSpaceRenter); err != nil {
		return nil, err
	}
	locality, err := s.GetLocality(ctx, id)
	if err != nil {
		return nil, err
	}
	if locality.RenterID != identity.UserID {
		return nil, domain.ErrAccessDenied
	}
	return locality, nil
}

// UpdateLocality applies a partial update; the city is re-resolved when
// its name or country changes
func (s *localityService) UpdateLocality(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateLocalityRequest) (*domain.Locality, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	locality, err := s.getOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		locality.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		locality.Address = strings.TrimSpace(*req.Address)
	}

	if req.City != nil || req.Country != nil {
		var name, country string
		if locality.City != nil {
			name, country = locality.City.Name, locality.City.Country
		}
		if req.City != nil {
			name = *req.City
		}
		if req.Country != nil {
			country = *req.Country
		}

		if strings.TrimSpace(name) == "" || strings.TrimSpace(country) == "" {
			locality.CityID, locality.City = "", nil
		} else {
			city, err := s.cities.FindOrCreate(ctx, name, country)
			if err != nil {
				return nil, err
			}
			locality.CityID, locality.City = city.ID, city
		}
	}

	locality.UpdatedAt = s.status.now()
	if err := s.localityRepo.Update(ctx, locality); err != nil {
		return nil, err
	}
	return locality, nil
}

// DeleteLocality deletes a locality; events held there become INACTIVE
func (s *localityService) DeleteLocality(ctx context.Context, identity domain.Identity, id string) error {
	if _, err := s.getOwned(ctx, identity, id); err != nil {
		return err
	}
	changes, err := s.localityRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.status.announceAll(ctx, changes, reasonLocalityDeleted)
	return nil
}

// ListLocalityEvents lists the locality's events by date and start time
func (s *localityService) ListLocalityEvents(ctx context.Context, id string) ([]*domain.Event, error) {
	if _, err := s.GetLocality(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, &repository.EventFilter{LocalityID: id})
	if err != nil {
		return nil, err
	}
	if _, err := s.status.refresh(ctx, events...); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// LocalityEventCounts counts the locality's events after a status refresh
func (s *localityService) LocalityEventCounts(ctx context.Context, id string) (*domain.EventCounts, error) {
	events, err := s.ListLocalityEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	counts := &domain.EventCounts{Total: len(events)}
	for _, e := range events {
		if e.Status == domain.EventStatusActive {
			counts.Active++
		}
	}
	return counts, nil
}

// CreateRoom adds a room to the caller's locality
func (s *localityService) CreateRoom(ctx context.Context, identity domain.Identity, localityID string, req *dto.CreateRoomRequest) (*domain.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, identity, localityID); err != nil {
		return nil, err
	}

	room := &domain.Room{
		ID:         uuid.New().String(),
		LocalityID: localityID,
		Name:       req.Name,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
	}
	if err := s.localityRepo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms lists a locality's rooms
func (s *localityService) ListRooms(ctx context.Context, localityID string) ([]*domain.Room, error) {
	if _, err := s.GetLocality(ctx, localityID); err != nil {
		return nil, err
	}
	rooms, err := s.localityRepo.ListRooms(ctx, localityID)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	return rooms, nil
}

// getOwnedRoom loads a room and checks the caller owns its locality
func (s *localityService) getOwnedRoom(ctx context.Context, identity domain.Identity, id string) (*domain.Room, error) {
	if err := requireRole(identity, domain.RoleSpaceRenter); err != nil {
		return nil, err
	}
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	room, err := s.localityRepo.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, domain.ErrRoomNotFound
	}
	if _, err := s.getOwned(ctx, identity, room.LocalityID); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom applies a partial room update
func (s *localityService) UpdateRoom(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateRoomRequest) (*domain.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	room, err := s.getOwnedRoom(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}

	if err := s.localityRepo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom deletes a room; events held there become INACTIVE
func (s *localityService) DeleteRoom(ctx context.Context, identity domain.Identity, id string) error {
	if _, err := s.getOwnedRoom(ctx, identity, id); err != nil {
		return err
	}
	changes, err := s.localityRepo.DeleteRoom(ctx, id)
	if err != nil {
		return err
	}
	s.status.announceAll(ctx, changes, reasonRoomDeleted)
	return nil
}
