package domain

import "time"

// DefaultRoomName is the room every new locality starts with
const DefaultRoomName = "Main Hall"

// Locality is a rentable venue owned by a space renter
type Locality struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	TotalCapacity int       `json:"total_capacity"`
	RenterID      string    `json:"renter_id"`
	CityID        string    `json:"city_id"`
	City          *City     `json:"city,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Room is a bookable space inside a locality
type Room struct {
	ID         string `json:"id"`
	LocalityID string `json:"locality_id"`
	Name       string `json:"name"`
	Floor      int    `json:"floor"`
	Capacity   int    `json:"capacity"`
}

// EventCounts summarizes the events held in a locality
type EventCounts struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}
