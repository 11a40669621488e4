package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
)

// eventService implements EventService
type eventService struct {
	eventRepo    repository.EventRepository
	localityRepo repository.LocalityRepository
	personRepo   repository.PersonRepository
	status       *statusRefresher
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo repository.EventRepository,
	localityRepo repository.LocalityRepository,
	personRepo repository.PersonRepository,
	publisher EventPublisher,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		localityRepo: localityRepo,
		personRepo:   personRepo,
		status:       newStatusRefresher(eventRepo, publisher),
	}
}

// CreateEvent creates a new event
func (s *eventService) CreateEvent(ctx context.Context, identity domain.Identity, req *dto.CreateEventRequest) (*domain.Event, error) {
	if err := requireRole(identity, domain.RoleEventOrganizer); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRooms(ctx, req.RoomIDs); err != nil {
		return nil, err
	}
	if err := s.personRepo.Ensure(ctx, identity); err != nil {
		return nil, err
	}

	now := s.status.now()
	event := &domain.Event{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		MaxCapacity:     req.MaxCapacity,
		Price:           req.Price,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.EventStatusActive,
		OrganizerID:     identity.UserID,
		RoomIDs:         req.RoomIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	// Reload for the city
	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, domain.ErrEventNotFound
	}
	return created, nil
}

// checkRooms verifies that every room exists
func (s *eventService) checkRooms(ctx context.Context, roomIDs []string) error {
	if err := validateIDs(roomIDs...); err != nil {
		return err
	}
	count, err := s.localityRepo.CountRooms(ctx, roomIDs)
	if err != nil {
		return err
	}
	if count != len(roomIDs) {
		return domain.ErrRoomNotFound
	}
	return nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if _, err := s.status.refresh(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents lists events; upcoming keeps only the bookable ones
func (s *eventService) ListEvents(ctx context.Context, upcoming bool) ([]*domain.Event, error) {
	events, err := s.list(ctx, &repository.EventFilter{})
	if err != nil {
		return nil, err
	}
	if !upcoming {
		return events, nil
	}

	active := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e.Status == domain.EventStatusActive {
			active = append(active, e)
		}
	}
	return active, nil
}

// ListMyEvents lists the organizer's events
func (s *eventService) ListMyEvents(ctx context.Context, identity domain.Identity) ([]*domain.Event, error) {
	if err := requireRole(identity, domain.RoleEventOrganizer); err != nil {
		return nil, err
	}
	return s.list(ctx, &repository.EventFilter{OrganizerID: identity.UserID})
}

func (s *eventService) list(ctx context.Context, filter *repository.EventFilter) ([]*domain.Event, error) {
	events, err := s.eventRepo.List(ctx, filter)
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

// getOwned loads an event and checks that the caller organizes it
func (s *eventService) getOwned(ctx context.Context, identity domain.Identity, id string) (*domain.Event, error) {
	if err := requireRole(identity, domain.RoleEventOrganizer); err != nil {
		return nil, err
	}
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if event.OrganizerID != identity.UserID {
		return nil, domain.ErrAccessDenied
	}
	return event, nil
}

// UpdateEvent updates an event
func (s *eventService) UpdateEvent(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	event, err := s.getOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.MaxCapacity != nil {
		event.MaxCapacity = *req.MaxCapacity
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		event.DurationMinutes = *req.DurationMinutes
	}
	if req.RoomIDs != nil {
		if err := s.checkRooms(ctx, req.RoomIDs); err != nil {
			return nil, err
		}
		event.RoomIDs = req.RoomIDs
	}

	event.UpdatedAt = s.status.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	// Status is derived from the stored row so that admissions committed
	// since the read above are counted.
	updated, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrEventNotFound
	}
	if _, err := s.status.refresh(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEvent deletes an event
func (s *eventService) DeleteEvent(ctx context.Context, identity domain.Identity, id string) error {
	if _, err := s.getOwned(ctx, identity, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// OccupiedTimes lists the [start, end) slots of events in the rooms on date
func (s *eventService) OccupiedTimes(ctx context.Context, roomIDs []string, date, excludeEventID string) ([]domain.TimeSlot, error) {
	if len(roomIDs) == 0 {
		return nil, domain.ErrRoomsRequired
	}
	if err := validateIDs(roomIDs...); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx, &repository.EventFilter{RoomIDs: roomIDs, Date: date})
	if err != nil {
		return nil, err
	}

	slots := make([]domain.TimeSlot, 0, len(events))
	for _, e := range events {
		if e.ID == excludeEventID {
			continue
		}
		slot, err := timeSlot(e)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// timeSlot renders the event's interval as wall-clock times. An event
// running past midnight ends at 24:00 on its own day.
func timeSlot(e *domain.Event) (domain.TimeSlot, error) {
	start, err := e.StartsAt(time.UTC)
	if err != nil {
		return domain.TimeSlot{}, err
	}
	end, err := e.EndsAt(time.UTC)
	if err != nil {
		return domain.TimeSlot{}, err
	}

	endClock := end.Format(domain.ClockLayout)
	if end.YearDay() != start.YearDay() || end.Year() != start.Year() {
		endClock = "24:00"
	}
	if e.DurationMinutes <= 0 {
		return domain.TimeSlot{}, errors.New("event has no duration")
	}
	return domain.TimeSlot{
		EventID: e.ID,
		Start:   start.Format(domain.ClockLayout),
		End:     endClock,
	}, nil
}
