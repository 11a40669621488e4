package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
)

// LocalityHandler handles locality and room HTTP requests
type LocalityHandler struct {
	localityService service.LocalityService
}

// NewLocalityHandler creates a new LocalityHandler
func NewLocalityHandler(localityService service.LocalityService) *LocalityHandler {
	return &LocalityHandler{localityService: localityService}
}

// List handles GET /localities
func (h *LocalityHandler) List(c *gin.Context) {
	localities, err := h.localityService.ListLocalities(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(localities))
}

// My handles GET /localities/my
func (h *LocalityHandler) My(c *gin.Context) {
	localities, err := h.localityService.ListMyLocalities(c.Request.Context(), identityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(localities))
}

// Get handles GET /localities/:id
func (h *LocalityHandler) Get(c *gin.Context) {
	locality, err := h.localityService.GetLocality(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(locality))
}

// Events handles GET /localities/:id/events
func (h *LocalityHandler) Events(c *gin.Context) {
	events, err := h.localityService.ListLocalityEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(events))
}

// EventCounts handles GET /localities/:id/event-counts
func (h *LocalityHandler) EventCounts(c *gin.Context) {
	counts, err := h.localityService.LocalityEventCounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(counts))
}

// Create handles POST /localities
func (h *LocalityHandler) Create(c *gin.Context) {
	var req dto.CreateLocalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	locality, err := h.localityService.CreateLocality(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(locality))
}

// Update handles PUT /localities/:id
func (h *LocalityHandler) Update(c *gin.Context) {
	var req dto.UpdateLocalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	locality, err := h.localityService.UpdateLocality(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(locality))
}

// Delete handles DELETE /localities/:id
func (h *LocalityHandler) Delete(c *gin.Context) {
	if err := h.localityService.DeleteLocality(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Locality deleted successfully"}))
}

// Rooms handles GET /localities/:id/rooms
func (h *LocalityHandler) Rooms(c *gin.Context) {
	rooms, err := h.localityService.ListRooms(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(rooms))
}

// CreateRoom handles POST /localities/:id/rooms
func (h *LocalityHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	room, err := h.localityService.CreateRoom(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(room))
}

// UpdateRoom handles PUT /rooms/:id
func (h *LocalityHandler) UpdateRoom(c *gin.Context) {
	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	room, err := h.localityService.UpdateRoom(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(room))
}

// DeleteRoom handles DELETE /rooms/:id
func (h *LocalityHandler) DeleteRoom(c *gin.Context) {
	if err := h.localityService.DeleteRoom(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Room deleted successfully"}))
}
