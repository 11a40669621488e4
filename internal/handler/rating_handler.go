package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
)

// RatingHandler handles rating HTTP requests
type RatingHandler struct {
	ratingService service.RatingService
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// Rate handles POST /ratings/events/:eventId
func (h *RatingHandler) Rate(c *gin.Context) {
	var req dto.RateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return
	}

	reservation, err := h.ratingService.RateEvent(c.Request.Context(), identityFrom(c), c.Param("eventId"), *req.Rating)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(reservation))
}

// Stats handles GET /ratings/events/:eventId/stats
func (h *RatingHandler) Stats(c *gin.Context) {
	stats, err := h.ratingService.EventRatingStats(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(stats))
}

// Mine handles GET /ratings/events/:eventId/mine
func (h *RatingHandler) Mine(c *gin.Context) {
	eventID := c.Param("eventId")
	rating, err := h.ratingService.UserRating(c.Request.Context(), identityFrom(c), eventID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.UserRatingResponse{EventID: eventID, Rating: rating}))
}

// Organizer handles GET /ratings/organizers/:organizerId
func (h *RatingHandler) Organizer(c *gin.Context) {
	organizerID := c.Param("organizerId")
	avg, err := h.ratingService.OrganizerRating(c.Request.Context(), organizerID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.OrganizerRatingResponse{
		OrganizerID:   organizerID,
		AverageRating: avg,
	}))
}
