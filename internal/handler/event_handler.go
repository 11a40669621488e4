package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService      service.EventService
	suggestionService service.SuggestionService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService, suggestionService service.SuggestionService) *EventHandler {
	return &EventHandler{
		eventService:      eventService,
		suggestionService: suggestionService,
	}
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventService.ListEvents(c.Request.Context(), false)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(events))
}

// Upcoming handles GET /events/upcoming - only events open for reservation
func (h *EventHandler) Upcoming(c *gin.Context) {
	events, err := h.eventService.ListEvents(c.Request.Context(), true)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(events))
}

// Suggested handles GET /events/suggested?lat=&lon=
func (h *EventHandler) Suggested(c *gin.Context) {
	var query dto.SuggestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	point, err := query.Point()
	if err != nil {
		handleError(c, err)
		return
	}

	scored, err := h.suggestionService.SuggestEvents(c.Request.Context(), optionalIdentity(c), point)
	if err != nil {
		handleError(c, err)
		return
	}

	suggestions := make([]dto.SuggestedEventResponse, 0, len(scored))
	for _, s := range scored {
		suggestions = append(suggestions, dto.SuggestedEventResponse{Event: s.Event, Score: s.Score})
	}
	c.JSON(http.StatusOK, response.List(suggestions))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// OccupiedTimes handles GET /events/occupied-times?room_ids=&date=&exclude_event_id=
func (h *EventHandler) OccupiedTimes(c *gin.Context) {
	var query dto.OccupiedTimesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	slots, err := h.eventService.OccupiedTimes(c.Request.Context(), query.RoomIDList(), query.Date, query.ExcludeEventID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(slots))
}

// My handles GET /events/my - the organizer's events
func (h *EventHandler) My(c *gin.Context) {
	events, err := h.eventService.ListMyEvents(c.Request.Context(), identityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(events))
}

// Create handles POST /events (organizer only)
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(event))
}

// Update handles PUT /events/:id (owner only)
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// Delete handles DELETE /events/:id (owner only)
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Event deleted successfully"}))
}
