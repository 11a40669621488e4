package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// Cache key prefixes
	cityIDKeyPrefix   = "city:id:"
	cityNameKeyPrefix = "city:name:"
	cityListKey       = "city:list"

	// Default TTL for city caches
	cityCacheTTL = 5 * time.Minute
)

// CityCache is the subset of the Redis client the decorator needs
type CityCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedCityRepository wraps CityRepository with Redis caching.
// Misses are never cached, so a city created later is found at once.
type CachedCityRepository struct {
	repo  CityRepository
	cache CityCache
}

// NewCachedCityRepository creates a new CachedCityRepository
func NewCachedCityRepository(repo CityRepository, cache CityCache) *CachedCityRepository {
	return &CachedCityRepository{
		repo:  repo,
		cache: cache,
	}
}

// GetByNameCountry retrieves a city by name and country with caching
func (r *CachedCityRepository) GetByNameCountry(ctx context.Context, name, country string) (*domain.City, error) {
	cacheKey := cityNameKeyPrefix + domain.CityKey(name, country)
	if city := r.cachedCity(ctx, cacheKey); city != nil {
		return city, nil
	}

	city, err := r.repo.GetByNameCountry(ctx, name, country)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, nil
	}

	r.store(ctx, cacheKey, city)
	r.store(ctx, cityIDKeyPrefix+city.ID, city)
	return city, nil
}

// GetByID retrieves a city by ID with caching
func (r *CachedCityRepository) GetByID(ctx context.Context, id string) (*domain.City, error) {
	cacheKey := cityIDKeyPrefix + id
	if city := r.cachedCity(ctx, cacheKey); city != nil {
		return city, nil
	}

	city, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, nil
	}

	r.store(ctx, cacheKey, city)
	return city, nil
}

// Create creates a city and invalidates the list cache
func (r *CachedCityRepository) Create(ctx context.Context, city *domain.City) (*domain.City, error) {
	created, err := r.repo.Create(ctx, city)
	if err != nil {
		return nil, err
	}
	r.cache.Del(ctx, cityListKey)
	return created, nil
}

// List retrieves all cities with caching
func (r *CachedCityRepository) List(ctx context.Context) ([]*domain.City, error) {
	cached, err := r.cache.Get(ctx, cityListKey).Result()
	if err == nil && cached != "" {
		var cities []*domain.City
		if err := json.Unmarshal([]byte(cached), &cities); err == nil {
			return cities, nil
		}
	}

	cities, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, cityListKey, cities)
	return cities, nil
}

func (r *CachedCityRepository) cachedCity(ctx context.Context, key string) *domain.City {
	cached, err := r.cache.Get(ctx, key).Result()
	if err != nil || cached == "" {
		return nil
	}
	var city domain.City
	if err := json.Unmarshal([]byte(cached), &city); err != nil {
		return nil
	}
	return &city
}

// store caches v, ignoring cache errors
func (r *CachedCityRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, data, cityCacheTTL)
}
