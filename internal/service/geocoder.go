package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prohmpiriya/venue-reservation/internal/geo"
	"github.com/prohmpiriya/venue-reservation/pkg/retry"
)

// Geocoder resolves city coordinates. A nil point means the city is unknown.
type Geocoder interface {
	Geocode(ctx context.Context, name, country string) (*geo.Point, error)
}

// GeocoderConfig configures NominatimGeocoder
type GeocoderConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// NominatimGeocoder queries a Nominatim compatible /search endpoint
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	retrier   *retry.Retrier
}

// NewNominatimGeocoder creates a new NominatimGeocoder
func NewNominatimGeocoder(cfg *GeocoderConfig) *NominatimGeocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries >= 0 {
		retryCfg.MaxRetries = cfg.MaxRetries
	}

	return &NominatimGeocoder{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		retrier:   retry.New(retryCfg),
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the first match for "name,country"
func (g *NominatimGeocoder) Geocode(ctx context.Context, name, country string) (*geo.Point, error) {
	query := url.Values{}
	query.Set("q", name+","+country)
	query.Set("format", "json")
	query.Set("limit", "1")
	endpoint := g.baseURL + "/search?" + query.Encode()

	var places []nominatimPlace
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if g.userAgent != "" {
			req.Header.Set("User-Agent", g.userAgent)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("geocoder returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return retry.Permanent(fmt.Errorf("geocoder returned %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode geocoder response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(places) == 0 {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", places[0].Lon, err)
	}

	point := geo.Point{Lat: lat, Lon: lon}
	if !point.Valid() {
		return nil, fmt.Errorf("geocoder returned out of range point %v", point)
	}
	return &point, nil
}

// NoOpGeocoder never resolves anything; used when geocoding is disabled
type NoOpGeocoder struct{}

// Geocode always reports an unknown city
func (NoOpGeocoder) Geocode(ctx context.Context, name, country string) (*geo.Point, error) {
	return nil, nil
}
