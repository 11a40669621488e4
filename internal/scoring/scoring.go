// Package scoring ranks upcoming events for a viewer. It is pure: callers load
// candidates, cities and history, and the engine only reads them.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/internal/geo"
)

// AnonymousWeights weigh the factors for viewers without an account
type AnonymousWeights struct {
	SameCity     float64
	NoCity       float64 // flat substitute when no nearest city resolves
	Distance     float64
	Free         float64
	Availability float64
}

// RegisteredWeights weigh the factors for registered users
type RegisteredWeights struct {
	Preferences  float64
	History      float64
	Location     float64
	Free         float64
	Availability float64
}

// Weights configures the engine
type Weights struct {
	Limit       int
	FullScoreKm float64
	ZeroScoreKm float64
	Anonymous   AnonymousWeights
	Registered  RegisteredWeights
}

// DefaultWeights returns the product-tuned defaults
func DefaultWeights() Weights {
	return Weights{
		Limit:       12,
		FullScoreKm: 5,
		ZeroScoreKm: 15,
		Anonymous: AnonymousWeights{
			SameCity:     0.5,
			NoCity:       0.3,
			Distance:     0.35,
			Free:         0.1,
			Availability: 0.05,
		},
		Registered: RegisteredWeights{
			Preferences:  0.6,
			History:      0.2,
			Location:     0.1,
			Free:         0.05,
			Availability: 0.05,
		},
	}
}

const (
	hotFullRemaining = 0.1
	hotZeroRemaining = 0.3

	rangeToleranceShare   = 0.2
	historyToleranceShare = 0.25
	minPriceTolerance     = 10.0
)

// Viewer describes a registered user. A nil *Viewer means anonymous.
type Viewer struct {
	Preferences *domain.Preferences
	// History holds the events of every reservation the user made
	History []*domain.Event
}

func (v *Viewer) hasReserved(eventID string) bool {
	for _, e := range v.History {
		if e.ID == eventID {
			return true
		}
	}
	return false
}

// Request is one suggestion computation
type Request struct {
	// Candidates must already be status-refreshed; non-ACTIVE ones are dropped
	Candidates []*domain.Event
	Cities     []*domain.City
	Point      *geo.Point
	Viewer     *Viewer
}

// Breakdown is the weighted contribution of each factor
type Breakdown struct {
	Preferences  float64 `json:"preferences,omitempty"`
	History      float64 `json:"history,omitempty"`
	City         float64 `json:"city,omitempty"`
	Location     float64 `json:"location,omitempty"`
	Free         float64 `json:"free,omitempty"`
	Availability float64 `json:"availability,omitempty"`
}

// Scored is a ranked candidate
type Scored struct {
	Event     *domain.Event
	Score     float64
	Breakdown Breakdown
}

// Engine scores candidates with fixed weights
type Engine struct {
	w Weights
}

func NewEngine(w Weights) *Engine {
	if w.Limit <= 0 {
		w.Limit = DefaultWeights().Limit
	}
	return &Engine{w: w}
}

// Suggest returns at most Limit events, best first. Equal scores keep the
// candidates' order. Anonymous viewers without a point get the first
// candidates unranked.
func (e *Engine) Suggest(req Request) []Scored {
	candidates := make([]*domain.Event, 0, len(req.Candidates))
	for _, ev := range req.Candidates {
		if ev.Status != domain.EventStatusActive {
			continue
		}
		if req.Viewer != nil && req.Viewer.hasReserved(ev.ID) {
			continue
		}
		candidates = append(candidates, ev)
	}

	if req.Viewer == nil && req.Point == nil {
		out := make([]Scored, 0, min(len(candidates), e.w.Limit))
		for _, ev := range candidates[:min(len(candidates), e.w.Limit)] {
			out = append(out, Scored{Event: ev})
		}
		return out
	}

	var nearest *domain.City
	if req.Point != nil {
		if i := geo.Nearest(*req.Point, req.Cities); i >= 0 {
			nearest = req.Cities[i]
		}
	}

	scored := make([]Scored, 0, len(candidates))
	for _, ev := range candidates {
		var b Breakdown
		if req.Viewer == nil {
			b = e.anonymous(ev, *req.Point, nearest)
		} else {
			b = e.registered(ev, req.Viewer, req.Point, nearest)
		}
		scored = append(scored, Scored{Event: ev, Score: b.total(), Breakdown: b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > e.w.Limit {
		scored = scored[:e.w.Limit]
	}
	return scored
}

func (e *Engine) anonymous(ev *domain.Event, p geo.Point, nearest *domain.City) Breakdown {
	w := e.w.Anonymous
	b := Breakdown{
		Location:     e.proximity(ev, p) * w.Distance,
		Free:         FreeScore(ev) * w.Free,
		Availability: HotScore(ev) * w.Availability,
	}
	switch {
	case nearest == nil:
		b.City = w.NoCity
	case inCity(ev, nearest):
		b.City = w.SameCity
	}
	return b
}

func (e *Engine) registered(ev *domain.Event, v *Viewer, p *geo.Point, nearest *domain.City) Breakdown {
	w := e.w.Registered
	b := Breakdown{
		Preferences:  PreferenceScore(ev, v.Preferences) * w.Preferences,
		History:      HistoryScore(ev, v.History) * w.History,
		Free:         FreeScore(ev) * w.Free,
		Availability: HotScore(ev) * w.Availability,
	}
	if p != nil {
		location := 0.0
		if inCity(ev, nearest) {
			location += 0.5
		}
		location += 0.5 * e.proximity(ev, *p)
		b.Location = location * w.Location
	}
	return b
}

func (e *Engine) proximity(ev *domain.Event, p geo.Point) float64 {
	q, ok := ev.City.Coordinates()
	if !ok {
		return 0
	}
	return geo.ProximityScore(geo.Distance(p, q), e.w.FullScoreKm, e.w.ZeroScoreKm)
}

func (b Breakdown) total() float64 {
	return b.Preferences + b.History + b.City + b.Location + b.Free + b.Availability
}

// FreeScore is 1 for free events
func FreeScore(ev *domain.Event) float64 {
	if ev.IsFree() {
		return 1
	}
	return 0
}

// HotScore rewards nearly full events: 1 with at most 10% capacity left,
// falling linearly to 0 at 30% left.
func HotScore(ev *domain.Event) float64 {
	if ev.MaxCapacity <= 0 {
		return 0
	}
	remaining := float64(ev.MaxCapacity-ev.ReservationCount) / float64(ev.MaxCapacity)
	switch {
	case remaining <= hotFullRemaining:
		return 1
	case remaining <= hotZeroRemaining:
		return 1 - (remaining-hotFullRemaining)/(hotZeroRemaining-hotFullRemaining)
	default:
		return 0
	}
}

// PreferenceScore averages the sub-scores of the preferences that are set.
// With none set it is 0.
func PreferenceScore(ev *domain.Event, prefs *domain.Preferences) float64 {
	if prefs == nil {
		return 0
	}
	score, factors := 0.0, 0

	if prefs.Category != "" {
		factors++
		if strings.EqualFold(ev.Category, prefs.Category) {
			score++
		}
	}

	if prefs.HasPriceRange() {
		factors++
		score += priceRangeScore(ev.Price, *prefs.MinPrice, *prefs.MaxPrice)
	}

	if prefs.CityID != "" {
		factors++
		if ev.CityID() == prefs.CityID {
			score++
		}
	}

	if factors == 0 {
		return 0
	}
	return score / float64(factors)
}

func priceRangeScore(price, lo, hi float64) float64 {
	if price >= lo && price <= hi {
		return 1
	}
	diff := math.Min(math.Abs(price-lo), math.Abs(price-hi))
	tolerance := math.Max((hi-lo)*rangeToleranceShare, minPriceTolerance)
	if diff > tolerance {
		return 0
	}
	return 1 - diff/tolerance
}

// HistoryScore averages three match rates of the candidate against past
// events: same category, same city and similar price.
func HistoryScore(ev *domain.Event, history []*domain.Event) float64 {
	if len(history) == 0 {
		return 0
	}
	tolerance := math.Max(ev.Price*historyToleranceShare, minPriceTolerance)

	var category, city, price int
	for _, past := range history {
		if ev.Category != "" && ev.Category == past.Category {
			category++
		}
		if id := ev.CityID(); id != "" && id == past.CityID() {
			city++
		}
		if math.Abs(ev.Price-past.Price) <= tolerance {
			price++
		}
	}

	n := float64(len(history))
	return (float64(category)/n + float64(city)/n + float64(price)/n) / 3
}

func inCity(ev *domain.Event, city *domain.City) bool {
	return city != nil && ev.CityID() != "" && ev.CityID() == city.ID
}
