package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/geo"
	"github.com/prohmpiriya/venue-reservation/internal/scoring"
	"github.com/prohmpiriya/venue-reservation/pkg/middleware"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-test-secret"
	testIssuer = "venue-reservation"
)

// MockEventService records the identity it was called with
type MockEventService struct {
	events   map[string]*domain.Event
	err      error
	lastCall domain.Identity
	lastReq  *dto.CreateEventRequest
	slots    []domain.TimeSlot
	slotArgs []string
}

func NewMockEventService() *MockEventService {
	return &MockEventService{events: make(map[string]*domain.Event)}
}

func (m *MockEventService) CreateEvent(ctx context.Context, identity domain.Identity, req *dto.CreateEventRequest) (*domain.Event, error) {
	m.lastCall = identity
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	event := &domain.Event{
		ID:              "event-new",
		Name:            req.Name,
		MaxCapacity:     req.MaxCapacity,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.EventStatusActive,
		OrganizerID:     identity.UserID,
		RoomIDs:         req.RoomIDs,
	}
	m.events[event.ID] = event
	return event, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (m *MockEventService) ListEvents(ctx context.Context, upcoming bool) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var events []*domain.Event
	for _, e := range m.events {
		if upcoming && e.Status != domain.EventStatusActive {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (m *MockEventService) ListMyEvents(ctx context.Context, identity domain.Identity) ([]*domain.Event, error) {
	m.lastCall = identity
	var events []*domain.Event
	for _, e := range m.events {
		if e.OrganizerID == identity.UserID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockEventService) UpdateEvent(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	m.lastCall = identity
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if event.OrganizerID != identity.UserID {
		return nil, domain.ErrAccessDenied
	}
	if req.Name != nil {
		event.Name = *req.Name
	}
	return event, nil
}

func (m *MockEventService) DeleteEvent(ctx context.Context, identity domain.Identity, id string) error {
	m.lastCall = identity
	event, ok := m.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	if event.OrganizerID != identity.UserID {
		return domain.ErrAccessDenied
	}
	delete(m.events, id)
	return nil
}

func (m *MockEventService) OccupiedTimes(ctx context.Context, roomIDs []string, date, excludeEventID string) ([]domain.TimeSlot, error) {
	m.slotArgs = append(append([]string{}, roomIDs...), date, excludeEventID)
	return m.slots, m.err
}

// MockSuggestionService returns a fixed ranking
type MockSuggestionService struct {
	scored       []scoring.Scored
	err          error
	lastIdentity *domain.Identity
	lastPoint    *geo.Point
}

func (m *MockSuggestionService) SuggestEvents(ctx context.Context, identity *domain.Identity, point *geo.Point) ([]scoring.Scored, error) {
	m.lastIdentity = identity
	m.lastPoint = point
	if m.err != nil {
		return nil, m.err
	}
	if point != nil && !point.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	return m.scored, nil
}

// MockReservationService admits every event once per user
type MockReservationService struct {
	reservations map[string]*domain.Reservation
	err          error
	calls        int
}

func NewMockReservationService() *MockReservationService {
	return &MockReservationService{reservations: make(map[string]*domain.Reservation)}
}

func (m *MockReservationService) CreateReservation(ctx context.Context, identity domain.Identity, eventID string) (*domain.Reservation, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.reservations {
		if r.UserID == identity.UserID && r.EventID == eventID && r.IsActive() {
			return nil, domain.ErrDuplicateReservation
		}
	}
	r := &domain.Reservation{
		ID:              "res-" + eventID,
		UserID:          identity.UserID,
		EventID:         eventID,
		ReservationDate: time.Now(),
		Status:          domain.ReservationStatusConfirmed,
	}
	m.reservations[r.ID] = r
	return r, nil
}

func (m *MockReservationService) CancelReservation(ctx context.Context, identity domain.Identity, id string) (*domain.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if r.UserID != identity.UserID {
		return nil, domain.ErrAccessDenied
	}
	if !r.IsActive() {
		return nil, domain.ErrAlreadyCancelled
	}
	r.Status = domain.ReservationStatusCancelled
	return r, nil
}

func (m *MockReservationService) DeleteReservation(ctx context.Context, identity domain.Identity, id string) error {
	r, ok := m.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if r.UserID != identity.UserID {
		return domain.ErrAccessDenied
	}
	delete(m.reservations, id)
	return nil
}

func (m *MockReservationService) ListMyReservations(ctx context.Context, identity domain.Identity) ([]*domain.ReservationDetails, error) {
	return nil, m.err
}

// MockRatingService keeps one rating per event
type MockRatingService struct {
	ratings   map[string]int
	err       error
	organizer *float64
}

func NewMockRatingService() *MockRatingService {
	return &MockRatingService{ratings: make(map[string]int)}
}

func (m *MockRatingService) RateEvent(ctx context.Context, identity domain.Identity, eventID string, rating int) (*domain.Reservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ratings[eventID] = rating
	return &domain.Reservation{ID: "res-1", UserID: identity.UserID, EventID: eventID, Status: domain.ReservationStatusConfirmed, Rating: &rating}, nil
}

func (m *MockRatingService) EventRatingStats(ctx context.Context, eventID string) (*domain.RatingStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	var values []int
	if r, ok := m.ratings[eventID]; ok {
		values = append(values, r)
	}
	return domain.NewRatingStats(eventID, values), nil
}

func (m *MockRatingService) UserRating(ctx context.Context, identity domain.Identity, eventID string) (int, error) {
	return m.ratings[eventID], m.err
}

func (m *MockRatingService) OrganizerRating(ctx context.Context, organizerID string) (*float64, error) {
	return m.organizer, m.err
}

// MockLocalityService stores localities in memory
type MockLocalityService struct {
	localities map[string]*domain.Locality
	rooms      map[string]*domain.Room
	err        error
}

func NewMockLocalityService() *MockLocalityService {
	return &MockLocalityService{
		localities: make(map[string]*domain.Locality),
		rooms:      make(map[string]*domain.Room),
	}
}

func (m *MockLocalityService) CreateLocality(ctx context.Context, identity domain.Identity, req *dto.CreateLocalityRequest) (*domain.Locality, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	l := &domain.Locality{ID: "loc-new", Name: req.Name, Address: req.Address, TotalCapacity: req.TotalCapacity, RenterID: identity.UserID}
	m.localities[l.ID] = l
	return l, nil
}

func (m *MockLocalityService) GetLocality(ctx context.Context, id string) (*domain.Locality, error) {
	l, ok := m.localities[id]
	if !ok {
		return nil, domain.ErrLocalityNotFound
	}
	return l, nil
}

func (m *MockLocalityService) ListLocalities(ctx context.Context) ([]*domain.Locality, error) {
	var out []*domain.Locality
	for _, l := range m.localities {
		out = append(out, l)
	}
	return out, m.err
}

func (m *MockLocalityService) ListMyLocalities(ctx context.Context, identity domain.Identity) ([]*domain.Locality, error) {
	var out []*domain.Locality
	for _, l := range m.localities {
		if l.RenterID == identity.UserID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MockLocalityService) UpdateLocality(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateLocalityRequest) (*domain.Locality, error) {
	l, ok := m.localities[id]
	if !ok {
		return nil, domain.ErrLocalityNotFound
	}
	if l.RenterID != identity.UserID {
		return nil, domain.ErrAccessDenied
	}
	if req.Name != nil {
		l.Name = *req.Name
	}
	return l, nil
}

func (m *MockLocalityService) DeleteLocality(ctx context.Context, identity domain.Identity, id string) error {
	if _, ok := m.localities[id]; !ok {
		return domain.ErrLocalityNotFound
	}
	delete(m.localities, id)
	return nil
}

func (m *MockLocalityService) ListLocalityEvents(ctx context.Context, id string) ([]*domain.Event, error) {
	if _, ok := m.localities[id]; !ok {
		return nil, domain.ErrLocalityNotFound
	}
	return nil, nil
}

func (m *MockLocalityService) LocalityEventCounts(ctx context.Context, id string) (*domain.EventCounts, error) {
	if _, ok := m.localities[id]; !ok {
		return nil, domain.ErrLocalityNotFound
	}
	return &domain.EventCounts{Active: 1, Total: 3}, nil
}

func (m *MockLocalityService) CreateRoom(ctx context.Context, identity domain.Identity, localityID string, req *dto.CreateRoomRequest) (*domain.Room, error) {
	if _, ok := m.localities[localityID]; !ok {
		return nil, domain.ErrLocalityNotFound
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	room := &domain.Room{ID: "room-new", LocalityID: localityID, Name: req.Name, Floor: req.Floor, Capacity: req.Capacity}
	m.rooms[room.ID] = room
	return room, nil
}

func (m *MockLocalityService) ListRooms(ctx context.Context, localityID string) ([]*domain.Room, error) {
	var out []*domain.Room
	for _, r := range m.rooms {
		if r.LocalityID == localityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockLocalityService) UpdateRoom(ctx context.Context, identity domain.Identity, id string, req *dto.UpdateRoomRequest) (*domain.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	return room, nil
}

func (m *MockLocalityService) DeleteRoom(ctx context.Context, identity domain.Identity, id string) error {
	if _, ok := m.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(m.rooms, id)
	return nil
}

// MockProfileService echoes the caller back
type MockProfileService struct {
	prefs *domain.Preferences
}

func (m *MockProfileService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.Person, error) {
	return &domain.Person{ID: identity.UserID, Username: identity.Username, Role: identity.Role}, nil
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, identity domain.Identity, req *dto.UpdateProfileRequest) (*domain.Person, error) {
	return &domain.Person{ID: identity.UserID, Username: identity.Username, Role: identity.Role, Email: req.Email}, nil
}

func (m *MockProfileService) GetPreferences(ctx context.Context, identity domain.Identity) (*domain.Preferences, error) {
	if m.prefs == nil {
		return &domain.Preferences{}, nil
	}
	return m.prefs, nil
}

func (m *MockProfileService) SavePreferences(ctx context.Context, identity domain.Identity, req *dto.PreferencesRequest) (*domain.Preferences, error) {
	lo, hi, err := req.Validate()
	if err != nil {
		return nil, err
	}
	m.prefs = &domain.Preferences{Category: req.Category, MinPrice: lo, MaxPrice: hi}
	return m.prefs, nil
}

// MockCityService lists a fixed set of cities
type MockCityService struct {
	cities []*domain.City
}

func (m *MockCityService) FindOrCreate(ctx context.Context, name, country string) (*domain.City, error) {
	return &domain.City{ID: "city-1", Name: name, Country: country}, nil
}

func (m *MockCityService) ListCities(ctx context.Context) ([]*domain.City, error) {
	return m.cities, nil
}

// MockHealthChecker fails with err
type MockHealthChecker struct {
	err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.err
}

type testServer struct {
	router       *gin.Engine
	events       *MockEventService
	suggestions  *MockSuggestionService
	reservations *MockReservationService
	ratings      *MockRatingService
	localities   *MockLocalityService
	profiles     *MockProfileService
	cities       *MockCityService
}

func setupServer(t *testing.T, guards ...gin.HandlerFunc) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	s := &testServer{
		events:       NewMockEventService(),
		suggestions:  &MockSuggestionService{},
		reservations: NewMockReservationService(),
		ratings:      NewMockRatingService(),
		localities:   NewMockLocalityService(),
		profiles:     &MockProfileService{},
		cities:       &MockCityService{},
	}
	s.router = NewRouter(RouterConfig{
		JWT:               &middleware.JWTConfig{Secret: testSecret, Issuer: testIssuer},
		ReservationGuards: guards,
	}, Handlers{
		Health:      NewHealthHandler(nil),
		Event:       NewEventHandler(s.events, s.suggestions),
		Reservation: NewReservationHandler(s.reservations),
		Rating:      NewRatingHandler(s.ratings),
		Locality:    NewLocalityHandler(s.localities),
		Profile:     NewProfileHandler(s.profiles, s.cities),
	})
	return s
}

func signToken(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	claims := middleware.Claims{
		Username: "user-" + userID,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// do sends a request, with a bearer token when token is not empty
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
