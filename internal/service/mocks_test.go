package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/geo"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/stretchr/testify/mock"
)

// memoryStore backs every mock repository so that writes through one are
// visible through the others, the way they are in Postgres
type memoryStore struct {
	mu           sync.Mutex
	rowLock      sync.Mutex
	events       map[string]*domain.Event
	reservations map[string]*domain.Reservation
	persons      map[string]*domain.Person
	localities   map[string]*domain.Locality
	rooms        map[string]*domain.Room
	statusWrites int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		events:       make(map[string]*domain.Event),
		reservations: make(map[string]*domain.Reservation),
		persons:      make(map[string]*domain.Person),
		localities:   make(map[string]*domain.Locality),
		rooms:        make(map[string]*domain.Room),
	}
}

// loadEvent copies the stored event and fills the derived columns. Caller holds mu.
func (s *memoryStore) loadEvent(id string) *domain.Event {
	stored, ok := s.events[id]
	if !ok {
		return nil
	}
	event := *stored
	event.RoomIDs = append([]string(nil), stored.RoomIDs...)
	event.ReservationCount = 0
	for _, r := range s.reservations {
		if r.EventID == id && r.IsActive() {
			event.ReservationCount++
		}
	}
	if len(event.RoomIDs) > 0 {
		if room, ok := s.rooms[event.RoomIDs[0]]; ok {
			if loc, ok := s.localities[room.LocalityID]; ok {
				event.City = loc.City
			}
		}
	}
	return &event
}

// addEvent stores an event in the given rooms, creating the rooms if needed
func (s *memoryStore) addEvent(event *domain.Event) *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Status == "" {
		event.Status = domain.EventStatusActive
	}
	if event.DurationMinutes == 0 {
		event.DurationMinutes = 60
	}
	for _, id := range event.RoomIDs {
		if _, ok := s.rooms[id]; !ok {
			s.rooms[id] = &domain.Room{ID: id, Name: "Room", Capacity: 100}
		}
	}
	stored := *event
	s.events[event.ID] = &stored
	return event
}

// addReservation stores a reservation with an optional rating
func (s *memoryStore) addReservation(userID, eventID string, status domain.ReservationStatus, rating *int) *domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &domain.Reservation{
		ID:              uuid.NewString(),
		UserID:          userID,
		EventID:         eventID,
		ReservationDate: time.Now(),
		Status:          status,
		Rating:          rating,
	}
	s.reservations[r.ID] = r
	return r
}

func (s *memoryStore) addPerson(identity domain.Identity) *domain.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.NewPerson(identity)
	s.persons[p.ID] = p
	return p
}

func (s *memoryStore) eventStatus(id string) domain.EventStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		return e.Status
	}
	return ""
}

func (s *memoryStore) activeReservations(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEvent(eventID).ReservationCount
}

// MockEventRepository is an in-memory EventRepository
type MockEventRepository struct {
	store   *memoryStore
	listErr error
	getErr  error
	// beforeUpdate runs ahead of Update, outside the store lock
	beforeUpdate func()
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	m.store.addEvent(event)
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.store.loadEvent(id), nil
}

func (m *MockEventRepository) List(ctx context.Context, filter *repository.EventFilter) ([]*domain.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var events []*domain.Event
	for id := range m.store.events {
		e := m.store.loadEvent(id)
		if filter != nil && !m.matches(e, filter) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return events, nil
}

// matches applies filter; caller holds mu
func (m *MockEventRepository) matches(e *domain.Event, f *repository.EventFilter) bool {
	if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
		return false
	}
	if f.LocalityID != "" {
		found := false
		for _, id := range e.RoomIDs {
			if room, ok := m.store.rooms[id]; ok && room.LocalityID == f.LocalityID {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if len(f.RoomIDs) > 0 {
		found := false
		for _, want := range f.RoomIDs {
			for _, id := range e.RoomIDs {
				if id == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.Date != "" && e.Date != f.Date {
		return false
	}
	if f.ReservedBy != "" {
		found := false
		for _, r := range m.store.reservations {
			if r.EventID == e.ID && r.UserID == f.ReservedBy {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if e.Status == s {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	current, ok := m.store.events[event.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	stored := *event
	stored.Status = current.Status
	stored.RoomIDs = append([]string(nil), event.RoomIDs...)
	m.store.events[event.ID] = &stored
	return nil
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	e, ok := m.store.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Status = status
	m.store.statusWrites++
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(m.store.events, id)
	for rid, r := range m.store.reservations {
		if r.EventID == id {
			delete(m.store.reservations, rid)
		}
	}
	return nil
}

// MockReservationRepository is an in-memory ReservationRepository and
// RatingRepository. Row locks are modeled by a single store-wide mutex.
type MockReservationRepository struct {
	store *memoryStore
}

func (m *MockReservationRepository) WithEventLock(ctx context.Context, eventID string, fn func(tx repository.AdmissionTx, event *domain.Event) error) error {
	m.store.rowLock.Lock()
	defer m.store.rowLock.Unlock()

	m.store.mu.Lock()
	event := m.store.loadEvent(eventID)
	m.store.mu.Unlock()

	return fn(&memoryAdmissionTx{store: m.store, eventID: eventID}, event)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	r, ok := m.store.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *MockReservationRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Reservation, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var best *domain.Reservation
	for _, r := range m.store.reservations {
		if r.UserID != userID || r.EventID != eventID {
			continue
		}
		switch {
		case best == nil,
			r.IsActive() && !best.IsActive(),
			r.IsActive() == best.IsActive() && r.ReservationDate.After(best.ReservationDate):
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ReservationDetails, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var details []*domain.ReservationDetails
	for _, r := range m.store.reservations {
		if r.UserID != userID {
			continue
		}
		d := &domain.ReservationDetails{Reservation: *r}
		if e, ok := m.store.events[r.EventID]; ok {
			d.EventName, d.EventDate, d.EventStartTime, d.EventStatus = e.Name, e.Date, e.StartTime, e.Status
		}
		details = append(details, d)
	}
	return details, nil
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.reservations[id]; !ok {
		return domain.ErrReservationNotFound
	}
	delete(m.store.reservations, id)
	return nil
}

func (m *MockReservationRepository) EventRatings(ctx context.Context, eventID string) ([]int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var ratings []int
	for _, r := range m.store.reservations {
		if r.EventID == eventID && r.Rating != nil {
			ratings = append(ratings, *r.Rating)
		}
	}
	return ratings, nil
}

func (m *MockReservationRepository) WithOrganizerLock(ctx context.Context, organizerID string, fn func(tx repository.RatingTx) error) error {
	m.store.rowLock.Lock()
	defer m.store.rowLock.Unlock()

	m.store.mu.Lock()
	_, ok := m.store.persons[organizerID]
	m.store.mu.Unlock()
	if !ok {
		return domain.ErrPersonNotFound
	}
	return fn(&memoryRatingTx{store: m.store, organizerID: organizerID})
}

// memoryAdmissionTx applies writes immediately
type memoryAdmissionTx struct {
	store   *memoryStore
	eventID string
}

func (tx *memoryAdmissionTx) HasActiveReservation(ctx context.Context, userID string) (bool, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, r := range tx.store.reservations {
		if r.EventID == tx.eventID && r.UserID == userID && r.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryAdmissionTx) InsertReservation(ctx context.Context, reservation *domain.Reservation) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	copied := *reservation
	tx.store.reservations[reservation.ID] = &copied
	return nil
}

func (tx *memoryAdmissionTx) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	r, ok := tx.store.reservations[id]
	if !ok || r.EventID != tx.eventID {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (tx *memoryAdmissionTx) SetReservationStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	r, ok := tx.store.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Status = status
	return nil
}

func (tx *memoryAdmissionTx) SetEventStatus(ctx context.Context, status domain.EventStatus) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.events[tx.eventID].Status = status
	tx.store.statusWrites++
	return nil
}

type memoryRatingTx struct {
	store       *memoryStore
	organizerID string
}

func (tx *memoryRatingTx) SetReservationRating(ctx context.Context, reservationID string, rating int) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	r, ok := tx.store.reservations[reservationID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Rating = &rating
	return nil
}

func (tx *memoryRatingTx) OrganizerRatings(ctx context.Context) ([]int, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	var ratings []int
	for _, r := range tx.store.reservations {
		e, ok := tx.store.events[r.EventID]
		if ok && e.OrganizerID == tx.organizerID && r.Rating != nil {
			ratings = append(ratings, *r.Rating)
		}
	}
	return ratings, nil
}

func (tx *memoryRatingTx) SetOrganizerAverage(ctx context.Context, average *float64) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	p := tx.store.persons[tx.organizerID]
	if p.Organizer == nil {
		p.Organizer = &domain.OrganizerProfile{}
	}
	p.Organizer.AverageRating = average
	return nil
}

// MockPersonRepository is an in-memory PersonRepository
type MockPersonRepository struct {
	store       *memoryStore
	ensureCalls atomic.Int32
}

func (m *MockPersonRepository) Ensure(ctx context.Context, identity domain.Identity) error {
	m.ensureCalls.Add(1)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.persons[identity.UserID]; !ok {
		m.store.persons[identity.UserID] = domain.NewPerson(identity)
	}
	return nil
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.persons[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (m *MockPersonRepository) Upsert(ctx context.Context, person *domain.Person) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	copied := *person
	if existing, ok := m.store.persons[person.ID]; ok {
		copied.CreatedAt = existing.CreatedAt
		if existing.Preferences != nil {
			copied.Preferences = existing.Preferences
		}
	}
	m.store.persons[person.ID] = &copied
	return nil
}

func (m *MockPersonRepository) SavePreferences(ctx context.Context, userID string, prefs *domain.Preferences) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.persons[userID]
	if !ok {
		return domain.ErrPersonNotFound
	}
	copied := *prefs
	p.Preferences = &copied
	return nil
}

// MockLocalityRepository is an in-memory LocalityRepository
type MockLocalityRepository struct {
	store *memoryStore
}

func (m *MockLocalityRepository) Create(ctx context.Context, locality *domain.Locality, room *domain.Room) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	loc := *locality
	m.store.localities[locality.ID] = &loc
	r := *room
	m.store.rooms[room.ID] = &r
	return nil
}

func (m *MockLocalityRepository) GetByID(ctx context.Context, id string) (*domain.Locality, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	loc, ok := m.store.localities[id]
	if !ok {
		return nil, nil
	}
	copied := *loc
	return &copied, nil
}

func (m *MockLocalityRepository) List(ctx context.Context, renterID string) ([]*domain.Locality, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.Locality
	for _, loc := range m.store.localities {
		if renterID == "" || loc.RenterID == renterID {
			copied := *loc
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockLocalityRepository) Update(ctx context.Context, locality *domain.Locality) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.localities[locality.ID]; !ok {
		return domain.ErrLocalityNotFound
	}
	copied := *locality
	m.store.localities[locality.ID] = &copied
	return nil
}

// detach removes the rooms from their events and forces those events INACTIVE; caller holds mu
func (m *MockLocalityRepository) detach(roomIDs map[string]bool) []repository.StatusChange {
	var changes []repository.StatusChange
	for _, e := range m.store.events {
		kept := e.RoomIDs[:0:0]
		for _, id := range e.RoomIDs {
			if !roomIDs[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(e.RoomIDs) {
			continue
		}
		e.RoomIDs = kept
		if e.Status != domain.EventStatusInactive {
			changes = append(changes, repository.StatusChange{EventID: e.ID, From: e.Status, To: domain.EventStatusInactive})
			e.Status = domain.EventStatusInactive
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].EventID < changes[j].EventID })
	return changes
}

func (m *MockLocalityRepository) Delete(ctx context.Context, id string) ([]repository.StatusChange, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.localities[id]; !ok {
		return nil, domain.ErrLocalityNotFound
	}
	rooms := make(map[string]bool)
	for rid, r := range m.store.rooms {
		if r.LocalityID == id {
			rooms[rid] = true
			delete(m.store.rooms, rid)
		}
	}
	delete(m.store.localities, id)
	return m.detach(rooms), nil
}

func (m *MockLocalityRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	loc, ok := m.store.localities[room.LocalityID]
	if !ok {
		return domain.ErrLocalityNotFound
	}
	copied := *room
	m.store.rooms[room.ID] = &copied
	loc.TotalCapacity += room.Capacity
	return nil
}

func (m *MockLocalityRepository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	r, ok := m.store.rooms[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *MockLocalityRepository) ListRooms(ctx context.Context, localityID string) ([]*domain.Room, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.Room
	for _, r := range m.store.rooms {
		if r.LocalityID == localityID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockLocalityRepository) CountRooms(ctx context.Context, ids []string) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	count := 0
	for _, id := range ids {
		if _, ok := m.store.rooms[id]; ok {
			count++
		}
	}
	return count, nil
}

func (m *MockLocalityRepository) UpdateRoom(ctx context.Context, room *domain.Room) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	existing, ok := m.store.rooms[room.ID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if loc, ok := m.store.localities[existing.LocalityID]; ok {
		loc.TotalCapacity += room.Capacity - existing.Capacity
	}
	copied := *room
	m.store.rooms[room.ID] = &copied
	return nil
}

func (m *MockLocalityRepository) DeleteRoom(ctx context.Context, id string) ([]repository.StatusChange, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	room, ok := m.store.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if loc, ok := m.store.localities[room.LocalityID]; ok {
		loc.TotalCapacity -= room.Capacity
	}
	delete(m.store.rooms, id)
	return m.detach(map[string]bool{id: true}), nil
}

// MockCityRepository is an in-memory CityRepository
type MockCityRepository struct {
	mu          sync.Mutex
	cities      map[string]*domain.City
	createCalls int
}

func NewMockCityRepository() *MockCityRepository {
	return &MockCityRepository{cities: make(map[string]*domain.City)}
}

func (m *MockCityRepository) GetByNameCountry(ctx context.Context, name, country string) (*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cities[domain.CityKey(name, country)], nil
}

func (m *MockCityRepository) GetByID(ctx context.Context, id string) (*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cities {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCityRepository) Create(ctx context.Context, city *domain.City) (*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	key := domain.CityKey(city.Name, city.Country)
	if existing, ok := m.cities[key]; ok {
		return existing, nil
	}
	m.cities[key] = city
	return city, nil
}

func (m *MockCityRepository) List(ctx context.Context) ([]*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.City
	for _, c := range m.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddCity stores a city with coordinates
func (m *MockCityRepository) AddCity(name, country string, lat, lon float64) *domain.City {
	city := &domain.City{ID: uuid.NewString(), Name: name, Country: country, Latitude: &lat, Longitude: &lon}
	m.mu.Lock()
	m.cities[domain.CityKey(name, country)] = city
	m.mu.Unlock()
	return city
}

// MockGeocoder answers from a table and counts calls
type MockGeocoder struct {
	points map[string]geo.Point
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (m *MockGeocoder) Geocode(ctx context.Context, name, country string) (*geo.Point, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.points[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// ExpectGeocoder is a testify mock for tests that pin the exact lookups
type ExpectGeocoder struct {
	mock.Mock
}

func (m *ExpectGeocoder) Geocode(ctx context.Context, name, country string) (*geo.Point, error) {
	args := m.Called(ctx, name, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Point), args.Error(1)
}

// MockEventPublisher records everything it is asked to publish
type MockEventPublisher struct {
	mu            sync.Mutex
	created       []*domain.Reservation
	cancelled     []*domain.Reservation
	rated         []*domain.RatingMessage
	statusChanges []*domain.StatusChangeMessage
	err           error
}

func (m *MockEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, reservation)
	return m.err
}

func (m *MockEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, reservation)
	return m.err
}

func (m *MockEventPublisher) PublishEventRated(ctx context.Context, rating *domain.RatingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rated = append(m.rated, rating)
	return m.err
}

func (m *MockEventPublisher) PublishStatusChanged(ctx context.Context, change *domain.StatusChangeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusChanges = append(m.statusChanges, change)
	return m.err
}

func (m *MockEventPublisher) Close() error {
	return nil
}

func (m *MockEventPublisher) changesFor(eventID string) []*domain.StatusChangeMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.StatusChangeMessage
	for _, c := range m.statusChanges {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out
}

// testEnv wires every mock over one store
type testEnv struct {
	store        *memoryStore
	events       *MockEventRepository
	reservations *MockReservationRepository
	persons      *MockPersonRepository
	localities   *MockLocalityRepository
	cities       *MockCityRepository
	geocoder     *MockGeocoder
	publisher    *MockEventPublisher
}

func newTestEnv() *testEnv {
	store := newMemoryStore()
	return &testEnv{
		store:        store,
		events:       &MockEventRepository{store: store},
		reservations: &MockReservationRepository{store: store},
		persons:      &MockPersonRepository{store: store},
		localities:   &MockLocalityRepository{store: store},
		cities:       NewMockCityRepository(),
		geocoder:     &MockGeocoder{points: map[string]geo.Point{}},
		publisher:    &MockEventPublisher{},
	}
}

func (env *testEnv) cityService() CityService {
	return NewCityService(env.cities, env.geocoder)
}

func newIdentity(role domain.Role) domain.Identity {
	id := uuid.NewString()
	return domain.Identity{UserID: id, Username: "user-" + id[:8], Role: role}
}

// daysFromNow renders the date n days away in local time
func daysFromNow(n int) string {
	return time.Now().AddDate(0, 0, n).Format(domain.DateLayout)
}

func upcomingEvent(organizerID string, capacity int) *domain.Event {
	return &domain.Event{
		Name:        "Upcoming",
		Category:    "music",
		MaxCapacity: capacity,
		Price:       10,
		Date:        daysFromNow(3),
		StartTime:   "18:00",
		OrganizerID: organizerID,
		RoomIDs:     []string{uuid.NewString()},
		Status:      domain.EventStatusActive,
	}
}

func pastEvent(organizerID string, capacity int) *domain.Event {
	e := upcomingEvent(organizerID, capacity)
	e.Name = "Concluded"
	e.Date = daysFromNow(-3)
	return e
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
