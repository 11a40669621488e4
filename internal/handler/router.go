package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"github.com/prohmpiriya/venue-reservation/pkg/middleware"
	"github.com/prohmpiriya/venue-reservation/pkg/telemetry"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health      *HealthHandler
	Event       *EventHandler
	Reservation *ReservationHandler
	Rating      *RatingHandler
	Locality    *LocalityHandler
	Profile     *ProfileHandler
}

// RouterConfig holds the cross-cutting settings of the router
type RouterConfig struct {
	ServiceName string
	Logger      *logger.Logger
	JWT         *middleware.JWTConfig
	CORS        *middleware.CORSConfig
	// ReservationGuards run in front of POST /reservations
	ReservationGuards []gin.HandlerFunc
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.ServiceName != "" {
		router.Use(telemetry.TracingMiddleware(cfg.ServiceName))
	}
	if cfg.Logger != nil {
		router.Use(middleware.Logger(cfg.Logger))
	}
	if cfg.CORS != nil {
		router.Use(middleware.CORSWithConfig(*cfg.CORS))
	} else {
		router.Use(middleware.CORS())
	}

	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)

	organizer := middleware.RequireRole(string(domain.RoleEventOrganizer))
	renter := middleware.RequireRole(string(domain.RoleSpaceRenter))
	registered := middleware.RequireRole(string(domain.RoleRegisteredUser))

	v1 := router.Group("/api/v1")

	public := v1.Group("")
	public.Use(middleware.OptionalJWT(cfg.JWT))
	{
		public.GET("/events", h.Event.List)
		public.GET("/events/upcoming", h.Event.Upcoming)
		public.GET("/events/suggested", h.Event.Suggested)
		public.GET("/events/occupied-times", h.Event.OccupiedTimes)
		public.GET("/events/:id", h.Event.Get)

		public.GET("/ratings/events/:eventId/stats", h.Rating.Stats)
		public.GET("/ratings/organizers/:organizerId", h.Rating.Organizer)

		public.GET("/localities", h.Locality.List)
		public.GET("/localities/:id", h.Locality.Get)
		public.GET("/localities/:id/events", h.Locality.Events)
		public.GET("/localities/:id/event-counts", h.Locality.EventCounts)
		public.GET("/localities/:id/rooms", h.Locality.Rooms)

		public.GET("/cities", h.Profile.Cities)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(cfg.JWT))
	{
		protected.GET("/me", h.Profile.Me)
		protected.PUT("/me", h.Profile.UpdateMe)
		protected.GET("/me/preferences", registered, h.Profile.Preferences)
		protected.PUT("/me/preferences", registered, h.Profile.SavePreferences)

		protected.GET("/events/my", organizer, h.Event.My)
		protected.POST("/events", organizer, h.Event.Create)
		protected.PUT("/events/:id", organizer, h.Event.Update)
		protected.DELETE("/events/:id", organizer, h.Event.Delete)

		reserve := append([]gin.HandlerFunc{registered}, cfg.ReservationGuards...)
		reserve = append(reserve, h.Reservation.Create)
		protected.POST("/reservations", reserve...)
		protected.GET("/reservations/my", registered, h.Reservation.My)
		protected.PUT("/reservations/:id/cancel", registered, h.Reservation.Cancel)
		protected.DELETE("/reservations/:id", registered, h.Reservation.Delete)

		protected.POST("/ratings/events/:eventId", registered, h.Rating.Rate)
		protected.GET("/ratings/events/:eventId/mine", registered, h.Rating.Mine)

		protected.GET("/localities/my", renter, h.Locality.My)
		protected.POST("/localities", renter, h.Locality.Create)
		protected.PUT("/localities/:id", renter, h.Locality.Update)
		protected.DELETE("/localities/:id", renter, h.Locality.Delete)
		protected.POST("/localities/:id/rooms", renter, h.Locality.CreateRoom)
		protected.PUT("/rooms/:id", renter, h.Locality.UpdateRoom)
		protected.DELETE("/rooms/:id", renter, h.Locality.DeleteRoom)
	}

	return router
}
