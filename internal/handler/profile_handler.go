package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
)

// ProfileHandler serves the caller's profile, preferences and the city list
type ProfileHandler struct {
	profileService service.ProfileService
	cityService    service.CityService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService service.ProfileService, cityService service.CityService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		cityService:    cityService,
	}
}

// Me handles GET /me
func (h *ProfileHandler) Me(c *gin.Context) {
	person, err := h.profileService.GetProfile(c.Request.Context(), identityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(person))
}

// UpdateMe handles PUT /me
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	person, err := h.profileService.UpdateProfile(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(person))
}

// Preferences handles GET /me/preferences
func (h *ProfileHandler) Preferences(c *gin.Context) {
	prefs, err := h.profileService.GetPreferences(c.Request.Context(), identityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(prefs))
}

// SavePreferences handles PUT /me/preferences
func (h *ProfileHandler) SavePreferences(c *gin.Context) {
	var req dto.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	prefs, err := h.profileService.SavePreferences(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(prefs))
}

// Cities handles GET /cities
func (h *ProfileHandler) Cities(c *gin.Context) {
	cities, err := h.cityService.ListCities(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(cities))
}
