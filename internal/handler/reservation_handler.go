package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/dto"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
)

// ReservationHandler handles reservation HTTP requests
type ReservationHandler struct {
	reservationService service.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// Create handles POST /reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		bindError(c, err)
		return
	}
	span.SetAttributes(telemetry.AttrEventID.String(req.EventID))

	reservation, err := h.reservationService.CreateReservation(ctx, identityFrom(c), req.EventID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(reservation))
}

// My handles GET /reservations/my
func (h *ReservationHandler) My(c *gin.Context) {
	reservations, err := h.reservationService.ListMyReservations(c.Request.Context(), identityFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(reservations))
}

// Cancel handles PUT /reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	reservation, err := h.reservationService.CancelReservation(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(reservation))
}

// Delete handles DELETE /reservations/:id
func (h *ReservationHandler) Delete(c *gin.Context) {
	if err := h.reservationService.DeleteReservation(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Reservation deleted successfully"}))
}
