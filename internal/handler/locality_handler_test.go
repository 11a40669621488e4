package handler

import (
	"net/http"
	"testing"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalityHandler_CreateAndRooms(t *testing.T) {
	s := setupServer(t)
	renter := signToken(t, "renter-1", domain.RoleSpaceRenter)

	w := s.do(http.MethodPost, "/api/v1/localities", renter, map[string]any{
		"name":           "Dom Sportova",
		"address":        "Trg Kresimira Cosica 11",
		"total_capacity": 300,
		"city":           "Zagreb",
		"country":        "Croatia",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var locality domain.Locality
	decode(t, w, &locality)
	assert.Equal(t, "renter-1", locality.RenterID)

	w = s.do(http.MethodPost, "/api/v1/localities/"+locality.ID+"/rooms", renter, map[string]any{"name": "Hall B", "floor": 1, "capacity": 40})
	assert.Equal(t, http.StatusCreated, w.Code)
	var room domain.Room
	decode(t, w, &room)
	assert.Equal(t, locality.ID, room.LocalityID)

	w = s.do(http.MethodGet, "/api/v1/localities/"+locality.ID+"/rooms", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var rooms []domain.Room
	decode(t, w, &rooms)
	assert.Len(t, rooms, 1)

	w = s.do(http.MethodPut, "/api/v1/rooms/"+room.ID, renter, map[string]any{"capacity": 55})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 55, s.localities.rooms[room.ID].Capacity)

	w = s.do(http.MethodDelete, "/api/v1/rooms/"+room.ID, renter, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Room deleted successfully")

	w = s.do(http.MethodDelete, "/api/v1/rooms/"+room.ID, renter, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocalityHandler_Validation(t *testing.T) {
	s := setupServer(t)
	renter := signToken(t, "renter-1", domain.RoleSpaceRenter)

	w := s.do(http.MethodPost, "/api/v1/localities", renter, map[string]any{"name": "X", "address": " ", "total_capacity": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/localities", renter, map[string]any{"name": "X", "address": "Y", "total_capacity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/localities", signToken(t, "org-1", domain.RoleEventOrganizer), map[string]any{"name": "X", "address": "Y", "total_capacity": 10})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/localities/missing/rooms", renter, map[string]any{"name": "Hall", "capacity": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocalityHandler_Reads(t *testing.T) {
	s := setupServer(t)
	s.localities.localities["l1"] = &domain.Locality{ID: "l1", Name: "Arena", RenterID: "renter-1"}
	s.localities.localities["l2"] = &domain.Locality{ID: "l2", Name: "Club", RenterID: "renter-2"}

	w := s.do(http.MethodGet, "/api/v1/localities", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, 2, env.Meta.Total)

	w = s.do(http.MethodGet, "/api/v1/localities/my", signToken(t, "renter-1", domain.RoleSpaceRenter), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var mine []domain.Locality
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "l1", mine[0].ID)

	w = s.do(http.MethodGet, "/api/v1/localities/l1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/localities/l1/event-counts", "", nil)
	assert.JSONEq(t, `{"success":true,"data":{"active":1,"total":3}}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/localities/l1/events", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/localities/nope/events", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocalityHandler_UpdateAndDelete(t *testing.T) {
	s := setupServer(t)
	s.localities.localities["l1"] = &domain.Locality{ID: "l1", Name: "Arena", RenterID: "renter-1"}

	w := s.do(http.MethodPut, "/api/v1/localities/l1", signToken(t, "renter-2", domain.RoleSpaceRenter), map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner := signToken(t, "renter-1", domain.RoleSpaceRenter)
	w = s.do(http.MethodPut, "/api/v1/localities/l1", owner, map[string]any{"name": "Arena Zagreb"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Arena Zagreb", s.localities.localities["l1"].Name)

	w = s.do(http.MethodDelete, "/api/v1/localities/l1", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.localities.localities)
}

func TestProfileHandler(t *testing.T) {
	s := setupServer(t)
	user := signToken(t, "user-1", domain.RoleRegisteredUser)

	w := s.do(http.MethodGet, "/api/v1/me", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var person domain.Person
	decode(t, w, &person)
	assert.Equal(t, "user-1", person.ID)
	assert.Equal(t, domain.RoleRegisteredUser, person.Role)

	w = s.do(http.MethodPut, "/api/v1/me", user, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/me", user, map[string]string{"email": "ana@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/v1/me/preferences", user, map[string]any{"category": "Jazz", "price_range": []float64{10, 40}})
	assert.Equal(t, http.StatusOK, w.Code)
	var prefs domain.Preferences
	decode(t, w, &prefs)
	assert.Equal(t, "Jazz", prefs.Category)
	require.NotNil(t, prefs.MaxPrice)
	assert.Equal(t, 40.0, *prefs.MaxPrice)

	w = s.do(http.MethodPut, "/api/v1/me/preferences", user, map[string]any{"price_range": []float64{40, 10}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/me/preferences", signToken(t, "org-1", domain.RoleEventOrganizer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileHandler_Cities(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodGet, "/api/v1/cities", "", nil)
	assert.JSONEq(t, `{"success":true,"data":[],"meta":{"total":0}}`, w.Body.String())

	lat, lon := 45.815, 15.982
	s.cities.cities = []*domain.City{{ID: "c1", Name: "Zagreb", Country: "Croatia", Latitude: &lat, Longitude: &lon}}
	w = s.do(http.MethodGet, "/api/v1/cities", "", nil)
	var cities []domain.City
	decode(t, w, &cities)
	require.Len(t, cities, 1)
	assert.Equal(t, "Zagreb", cities[0].Name)
}
