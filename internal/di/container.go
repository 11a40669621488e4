package di

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/internal/handler"
	"github.com/prohmpiriya/venue-reservation/internal/repository"
	"github.com/prohmpiriya/venue-reservation/internal/scoring"
	"github.com/prohmpiriya/venue-reservation/internal/service"
	"github.com/prohmpiriya/venue-reservation/pkg/config"
	"github.com/prohmpiriya/venue-reservation/pkg/database"
	"github.com/prohmpiriya/venue-reservation/pkg/middleware"
	"github.com/prohmpiriya/venue-reservation/pkg/redis"
)

// Container holds all dependencies for the reservation API
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.EventPublisher

	// Repositories
	EventRepo       repository.EventRepository
	ReservationRepo repository.ReservationRepository
	RatingRepo      repository.RatingRepository
	PersonRepo      repository.PersonRepository
	LocalityRepo    repository.LocalityRepository
	CityRepo        repository.CityRepository

	// Services
	CityService        service.CityService
	EventService       service.EventService
	ReservationService service.ReservationService
	RatingService      service.RatingService
	SuggestionService  service.SuggestionService
	LocalityService    service.LocalityService
	ProfileService     service.ProfileService
	Reconciler         service.Reconciler

	// Handlers
	HealthHandler      *handler.HealthHandler
	EventHandler       *handler.EventHandler
	ReservationHandler *handler.ReservationHandler
	RatingHandler      *handler.RatingHandler
	LocalityHandler    *handler.LocalityHandler
	ProfileHandler     *handler.ProfileHandler

	rateLimit config.RateLimitConfig
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.EventPublisher
	Geocoder  service.Geocoder
	Scoring   config.ScoringConfig
	RateLimit config.RateLimitConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
		rateLimit: cfg.RateLimit,
	}
	if c.Publisher == nil {
		c.Publisher = service.NewNoOpEventPublisher()
	}
	geocoder := cfg.Geocoder
	if geocoder == nil {
		geocoder = service.NoOpGeocoder{}
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	reservations := repository.NewPostgresReservationRepository(pool)
	c.ReservationRepo = reservations
	c.RatingRepo = reservations
	c.PersonRepo = repository.NewPostgresPersonRepository(pool)
	c.LocalityRepo = repository.NewPostgresLocalityRepository(pool)

	// Wrap with cache if Redis is available
	pgCityRepo := repository.NewPostgresCityRepository(pool)
	if c.Redis != nil {
		c.CityRepo = repository.NewCachedCityRepository(pgCityRepo, c.Redis)
	} else {
		c.CityRepo = pgCityRepo
	}

	// Initialize services
	c.CityService = service.NewCityService(c.CityRepo, geocoder)
	c.EventService = service.NewEventService(c.EventRepo, c.LocalityRepo, c.PersonRepo, c.Publisher)
	c.ReservationService = service.NewReservationService(c.ReservationRepo, c.EventRepo, c.PersonRepo, c.Publisher)
	c.RatingService = service.NewRatingService(c.RatingRepo, c.ReservationRepo, c.EventRepo, c.PersonRepo, c.Publisher)
	c.SuggestionService = service.NewSuggestionService(c.EventRepo, c.CityRepo, c.PersonRepo, ScoringWeights(cfg.Scoring), c.Publisher)
	c.LocalityService = service.NewLocalityService(c.LocalityRepo, c.EventRepo, c.PersonRepo, c.CityService, c.Publisher)
	c.ProfileService = service.NewProfileService(c.PersonRepo, c.CityService)
	c.Reconciler = service.NewReconciler(c.EventRepo, c.Publisher)

	// Initialize handlers
	checkers := map[string]handler.HealthChecker{"database": c.DB, "redis": nil}
	if c.Redis != nil {
		checkers["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(checkers)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.SuggestionService)
	c.ReservationHandler = handler.NewReservationHandler(c.ReservationService)
	c.RatingHandler = handler.NewRatingHandler(c.RatingService)
	c.LocalityHandler = handler.NewLocalityHandler(c.LocalityService)
	c.ProfileHandler = handler.NewProfileHandler(c.ProfileService, c.CityService)

	return c
}

// Handlers returns the handler set mounted by the router
func (c *Container) Handlers() handler.Handlers {
	return handler.Handlers{
		Health:      c.HealthHandler,
		Event:       c.EventHandler,
		Reservation: c.ReservationHandler,
		Rating:      c.RatingHandler,
		Locality:    c.LocalityHandler,
		Profile:     c.ProfileHandler,
	}
}

// ReservationGuards rate limits reservation attempts and makes them
// idempotent. Both need Redis and are skipped without it.
func (c *Container) ReservationGuards() []gin.HandlerFunc {
	if c.Redis == nil {
		return nil
	}
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Redis:             c.Redis,
		RequestsPerSecond: c.rateLimit.RequestsPerSecond,
		BurstSize:         c.rateLimit.BurstSize,
		KeyPrefix:         "ratelimit:reservations:",
	})
	return []gin.HandlerFunc{
		limiter.Middleware(),
		middleware.Idempotency(middleware.DefaultIdempotencyConfig(c.Redis)),
	}
}

// ScoringWeights maps the scoring config onto engine weights
func ScoringWeights(cfg config.ScoringConfig) scoring.Weights {
	return scoring.Weights{
		Limit:       cfg.Limit,
		FullScoreKm: cfg.FullScoreKm,
		ZeroScoreKm: cfg.ZeroScoreKm,
		Anonymous: scoring.AnonymousWeights{
			SameCity:     cfg.AnonymousSameCity,
			NoCity:       cfg.AnonymousNoCity,
			Distance:     cfg.AnonymousDistance,
			Free:         cfg.AnonymousFree,
			Availability: cfg.AnonymousAvailability,
		},
		Registered: scoring.RegisteredWeights{
			Preferences:  cfg.RegisteredPreferences,
			History:      cfg.RegisteredHistory,
			Location:     cfg.RegisteredLocation,
			Free:         cfg.RegisteredFree,
			Availability: cfg.RegisteredAvailability,
		},
	}
}
