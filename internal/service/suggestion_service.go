package service

import (
	"context"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/geo"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/internal/scoring"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// suggestionService implements SuggestionService
type suggestionService struct {
	eventRepo  repository.EventRepository
	cityRepo   repository.CityRepository
	personRepo repository.PersonRepository
	engine     *scoring.Engine
	status     *statusRefresher
}

// NewSuggestionService creates a new SuggestionService
func NewSuggestionService(
	eventRepo repository.EventRepository,
	cityRepo repository.CityRepository,
	personRepo repository.PersonRepository,
	weights scoring.Weights,
	publisher EventPublisher,
) SuggestionService {
	return &suggestionService{
		eventRepo:  eventRepo,
		cityRepo:   cityRepo,
		personRepo: personRepo,
		engine:     scoring.NewEngine(weights),
		status:     newStatusRefresher(eventRepo, publisher),
	}
}

// SuggestEvents refreshes every event's status, then ranks the ACTIVE ones
func (s *suggestionService) SuggestEvents(ctx context.Context, identity *domain.Identity, point *geo.Point) ([]scoring.Scored, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.suggestion.suggest")
	defer span.End()

	if point != nil && !point.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}

	candidates, err := s.eventRepo.List(ctx, &repository.EventFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := s.status.refresh(ctx, candidates...); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	req := scoring.Request{Candidates: candidates, Point: point}
	if point != nil {
		if req.Cities, err = s.cityRepo.List(ctx); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if identity != nil && identity.UserID != "" && identity.Is(domain.RoleRegisteredUser) {
		viewer, err := s.viewer(ctx, identity.UserID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		req.Viewer = viewer
	}

	span.SetAttributes(
		attribute.Bool("registered", req.Viewer != nil),
		attribute.Bool("has_point", point != nil),
		attribute.Int("candidates", len(candidates)),
	)

	suggestions := s.engine.Suggest(req)
	if suggestions == nil {
		suggestions = []scoring.Scored{}
	}
	return suggestions, nil
}

// viewer loads the preferences and every event the user ever reserved
func (s *suggestionService) viewer(ctx context.Context, userID string) (*scoring.Viewer, error) {
	viewer := &scoring.Viewer{}

	person, err := s.personRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if person != nil {
		viewer.Preferences = person.Preferences
	}

	viewer.History, err = s.eventRepo.List(ctx, &repository.EventFilter{ReservedBy: userID})
	if err != nil {
		return nil, err
	}
	return viewer, nil
}
