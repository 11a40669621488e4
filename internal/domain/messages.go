package domain

import "time"

// MessageType names a domain event published to the message bus
type MessageType string

const (
	MessageReservationCreated   MessageType = "reservation.created"
	MessageReservationCancelled MessageType = "reservation.cancelled"
	MessageEventRated           MessageType = "event.rated"
	MessageEventStatusChanged   MessageType = "event.status_changed"
)

// Message is the envelope of every published domain event
type Message struct {
	ID         string      `json:"id"`
	Type       MessageType `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Version    int         `json:"version"`
	Data       any         `json:"data"`
}

// Key partitions messages so one event's history stays ordered
func (m *Message) Key() string {
	switch d := m.Data.(type) {
	case *ReservationMessage:
		return d.EventID
	case *RatingMessage:
		return d.EventID
	case *StatusChangeMessage:
		return d.EventID
	}
	return m.ID
}

type ReservationMessage struct {
	ReservationID string            `json:"reservation_id"`
	UserID        string            `json:"user_id"`
	EventID       string            `json:"event_id"`
	Status        ReservationStatus `json:"status"`
	At            time.Time         `json:"at"`
}

type RatingMessage struct {
	ReservationID string   `json:"reservation_id"`
	UserID        string   `json:"user_id"`
	EventID       string   `json:"event_id"`
	OrganizerID   string   `json:"organizer_id"`
	Rating        int      `json:"rating"`
	OrganizerAvg  *float64 `json:"organizer_average"`
}

type StatusChangeMessage struct {
	EventID string      `json:"event_id"`
	From    EventStatus `json:"from"`
	To      EventStatus `json:"to"`
	Reason  string      `json:"reason"`
}

// NewMessage wraps data in a versioned envelope
func NewMessage(id string, t MessageType, data any, at time.Time) *Message {
	return &Message{ID: id, Type: t, OccurredAt: at, Version: 1, Data: data}
}
