package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getPostgresPool connects to the test database and applies the schema
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("TEST_POSTGRES_USER", "postgres"),
		envOr("TEST_POSTGRES_PASSWORD", "postgres"),
		envOr("TEST_POSTGRES_HOST", "localhost"),
		envOr("TEST_POSTGRES_PORT", "5432"),
		envOr("TEST_POSTGRES_DB", "venue_reservation_test"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	organizer domain.Identity
	renter    domain.Identity
	locality  *domain.Locality
	room      *domain.Room
	event     *domain.Event
}

// seed creates an organizer, a renter, a locality with one room and an
// upcoming event of the given capacity in that room
func seed(t *testing.T, pool *pgxpool.Pool, capacity int) *fixture {
	ctx := context.Background()
	persons := NewPostgresPersonRepository(pool)
	localities := NewPostgresLocalityRepository(pool)
	events := NewPostgresEventRepository(pool)
	cities := NewPostgresCityRepository(pool)

	suffix := uuid.NewString()[:8]
	f := &fixture{
		organizer: domain.Identity{UserID: uuid.NewString(), Username: "org-" + suffix, Role: domain.RoleEventOrganizer},
		renter:    domain.Identity{UserID: uuid.NewString(), Username: "renter-" + suffix, Role: domain.RoleSpaceRenter},
	}
	require.NoError(t, persons.Ensure(ctx, f.organizer))
	require.NoError(t, persons.Ensure(ctx, f.renter))

	city, err := cities.Create(ctx, &domain.City{ID: uuid.NewString(), Name: "City " + suffix, Country: "Testland"})
	require.NoError(t, err)

	now := time.Now()
	f.locality = &domain.Locality{
		ID:            uuid.NewString(),
		Name:          "Hall " + suffix,
		Address:       "Main street 1",
		TotalCapacity: 200,
		RenterID:      f.renter.UserID,
		CityID:        city.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.room = &domain.Room{ID: uuid.NewString(), LocalityID: f.locality.ID, Name: domain.DefaultRoomName, Capacity: 200}
	require.NoError(t, localities.Create(ctx, f.locality, f.room))

	f.event = &domain.Event{
		ID:              uuid.NewString(),
		Name:            "Concert " + suffix,
		Category:        "Music",
		MaxCapacity:     capacity,
		Price:           25,
		Date:            now.AddDate(0, 0, 7).Format(domain.DateLayout),
		StartTime:       "19:30",
		DurationMinutes: 120,
		Status:          domain.EventStatusActive,
		OrganizerID:     f.organizer.UserID,
		RoomIDs:         []string{f.room.ID},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, events.Create(ctx, f.event))
	return f
}

func TestPostgresEventRepository_RoundTrip(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 10)
	repo := NewPostgresEventRepository(pool)

	got, err := repo.GetByID(ctx, f.event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.event.Date, got.Date)
	assert.Equal(t, "19:30", got.StartTime)
	assert.Equal(t, []string{f.room.ID}, got.RoomIDs)
	require.NotNil(t, got.City)
	assert.Equal(t, f.locality.CityID, got.City.ID)

	byRoom, err := repo.List(ctx, &EventFilter{RoomIDs: []string{f.room.ID}, Date: f.event.Date})
	require.NoError(t, err)
	require.Len(t, byRoom, 1)

	missing, err := repo.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgresReservationRepository_LockSerializesAdmission(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	const capacity = 3
	f := seed(t, pool, capacity)
	repo := NewPostgresReservationRepository(pool)
	persons := NewPostgresPersonRepository(pool)

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < attempts; i++ {
		user := domain.Identity{UserID: uuid.NewString(), Username: "user-" + uuid.NewString()[:8], Role: domain.RoleRegisteredUser}
		require.NoError(t, persons.Ensure(ctx, user))

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithEventLock(ctx, f.event.ID, func(tx AdmissionTx, event *domain.Event) error {
				if event.ReservationCount >= event.MaxCapacity {
					return domain.ErrEventFull
				}
				return tx.InsertReservation(ctx, &domain.Reservation{
					ID:              uuid.NewString(),
					UserID:          user.UserID,
					ReservationDate: time.Now(),
					Status:          domain.ReservationStatusConfirmed,
				})
			})
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, admitted)

	event, err := NewPostgresEventRepository(pool).GetByID(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, event.ReservationCount)
}

func TestPostgresReservationRepository_DuplicateActiveReservation(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 5)
	repo := NewPostgresReservationRepository(pool)

	user := domain.Identity{UserID: uuid.NewString(), Username: "dup-" + uuid.NewString()[:8], Role: domain.RoleRegisteredUser}
	require.NoError(t, NewPostgresPersonRepository(pool).Ensure(ctx, user))

	insert := func() error {
		return repo.WithEventLock(ctx, f.event.ID, func(tx AdmissionTx, event *domain.Event) error {
			return tx.InsertReservation(ctx, &domain.Reservation{
				ID:              uuid.NewString(),
				UserID:          user.UserID,
				ReservationDate: time.Now(),
				Status:          domain.ReservationStatusConfirmed,
			})
		})
	}

	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), domain.ErrDuplicateReservation)
}

func TestPostgresLocalityRepository_DeleteForcesEventsInactive(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 5)
	repo := NewPostgresLocalityRepository(pool)

	changes, err := repo.Delete(ctx, f.locality.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, f.event.ID, changes[0].EventID)
	assert.Equal(t, domain.EventStatusActive, changes[0].From)
	assert.Equal(t, domain.EventStatusInactive, changes[0].To)

	event, err := NewPostgresEventRepository(pool).GetByID(ctx, f.event.ID)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.EventStatusInactive, event.Status)
	assert.Empty(t, event.RoomIDs)

	locality, err := repo.GetByID(ctx, f.locality.ID)
	require.NoError(t, err)
	assert.Nil(t, locality)
}

func TestPostgresLocalityRepository_RoomCapacity(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 5)
	repo := NewPostgresLocalityRepository(pool)

	extra := &domain.Room{ID: uuid.NewString(), LocalityID: f.locality.ID, Name: "Studio", Floor: 1, Capacity: 40}
	require.NoError(t, repo.CreateRoom(ctx, extra))

	extra.Capacity = 50
	require.NoError(t, repo.UpdateRoom(ctx, extra))

	locality, err := repo.GetByID(ctx, f.locality.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, locality.TotalCapacity)

	_, err = repo.DeleteRoom(ctx, extra.ID)
	require.NoError(t, err)

	locality, err = repo.GetByID(ctx, f.locality.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, locality.TotalCapacity)

	count, err := repo.CountRooms(ctx, []string{f.room.ID, extra.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgresRatingRepository_OrganizerAverage(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 5)
	reservations := NewPostgresReservationRepository(pool)
	persons := NewPostgresPersonRepository(pool)

	var ids []string
	for i := 0; i < 3; i++ {
		user := domain.Identity{UserID: uuid.NewString(), Username: "rater-" + uuid.NewString()[:8], Role: domain.RoleRegisteredUser}
		require.NoError(t, persons.Ensure(ctx, user))
		id := uuid.NewString()
		ids = append(ids, id)
		require.NoError(t, reservations.WithEventLock(ctx, f.event.ID, func(tx AdmissionTx, event *domain.Event) error {
			return tx.InsertReservation(ctx, &domain.Reservation{
				ID: id, UserID: user.UserID, ReservationDate: time.Now(), Status: domain.ReservationStatusConfirmed,
			})
		}))
	}

	for i, rating := range []int{4, 5, 3} {
		err := reservations.WithOrganizerLock(ctx, f.organizer.UserID, func(tx RatingTx) error {
			if err := tx.SetReservationRating(ctx, ids[i], rating); err != nil {
				return err
			}
			ratings, err := tx.OrganizerRatings(ctx)
			if err != nil {
				return err
			}
			return tx.SetOrganizerAverage(ctx, domain.MeanRating(ratings))
		})
		require.NoError(t, err)
	}

	organizer, err := persons.GetByID(ctx, f.organizer.UserID)
	require.NoError(t, err)
	require.NotNil(t, organizer.Organizer)
	require.NotNil(t, organizer.Organizer.AverageRating)
	assert.InDelta(t, 4.0, *organizer.Organizer.AverageRating, 1e-9)

	ratings, err := reservations.EventRatings(ctx, f.event.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{4, 5, 3}, ratings)
}

func TestPostgresEventRepository_UpdateLeavesStatus(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 10)
	repo := NewPostgresEventRepository(pool)

	require.NoError(t, repo.UpdateStatus(ctx, f.event.ID, domain.EventStatusFull))

	f.event.Name = "Renamed"
	f.event.Status = domain.EventStatusActive
	require.NoError(t, repo.Update(ctx, f.event))

	got, err := repo.GetByID(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, domain.EventStatusFull, got.Status)
}

func TestPostgresRepositories_MissingRowsAreNotFound(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	events := NewPostgresEventRepository(pool)
	localities := NewPostgresLocalityRepository(pool)
	reservations := NewPostgresReservationRepository(pool)
	persons := NewPostgresPersonRepository(pool)

	missing := uuid.NewString()
	assert.ErrorIs(t, events.Update(ctx, &domain.Event{ID: missing}), domain.ErrEventNotFound)
	assert.ErrorIs(t, events.UpdateStatus(ctx, missing, domain.EventStatusFull), domain.ErrEventNotFound)
	assert.ErrorIs(t, events.Delete(ctx, missing), domain.ErrEventNotFound)
	assert.ErrorIs(t, localities.Update(ctx, &domain.Locality{ID: missing}), domain.ErrLocalityNotFound)
	_, err := localities.Delete(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrLocalityNotFound)
	_, err = localities.DeleteRoom(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.ErrorIs(t, reservations.Delete(ctx, missing), domain.ErrReservationNotFound)
	assert.ErrorIs(t, persons.SavePreferences(ctx, missing, nil), domain.ErrPersonNotFound)
}

func TestPostgresPersonRepository_EnsureUsernameTaken(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	f := seed(t, pool, 1)
	persons := NewPostgresPersonRepository(pool)

	// same id again is a no-op
	require.NoError(t, persons.Ensure(ctx, f.organizer))

	clash := domain.Identity{UserID: uuid.NewString(), Username: f.organizer.Username, Role: domain.RoleRegisteredUser}
	err := persons.Ensure(ctx, clash)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.True(t, domain.IsConflictError(err))
}
