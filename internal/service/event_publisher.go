package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/pkg/kafka"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishReservationCreated publishes a reservation created event
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error

	// PublishReservationCancelled publishes a reservation cancelled event
	PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error

	// PublishEventRated publishes a rating event
	PublishEventRated(ctx context.Context, rating *domain.RatingMessage) error

	// PublishStatusChanged publishes an event status change
	PublishStatusChanged(ctx context.Context, change *domain.StatusChangeMessage) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "venue-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "venue-reservation"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = serviceName + "-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishReservationCreated publishes a reservation created event
func (p *KafkaEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return p.publish(ctx, domain.MessageReservationCreated, reservationMessage(reservation))
}

// PublishReservationCancelled publishes a reservation cancelled event
func (p *KafkaEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return p.publish(ctx, domain.MessageReservationCancelled, reservationMessage(reservation))
}

// PublishEventRated publishes a rating event
func (p *KafkaEventPublisher) PublishEventRated(ctx context.Context, rating *domain.RatingMessage) error {
	return p.publish(ctx, domain.MessageEventRated, rating)
}

// PublishStatusChanged publishes an event status change
func (p *KafkaEventPublisher) PublishStatusChanged(ctx context.Context, change *domain.StatusChangeMessage) error {
	return p.publish(ctx, domain.MessageEventStatusChanged, change)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publish wraps data in an envelope and produces it to Kafka
func (p *KafkaEventPublisher) publish(ctx context.Context, messageType domain.MessageType, data any) error {
	messageID := uuid.New().String()
	message := domain.NewMessage(messageID, messageType, data, time.Now())

	headers := map[string]string{
		"event_type": string(messageType),
		"event_id":   messageID,
		"source":     p.serviceName,
	}

	if err := p.producer.ProduceJSON(ctx, p.topic, message.Key(), message, headers); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", messageType, err)
	}
	return nil
}

func reservationMessage(r *domain.Reservation) *domain.ReservationMessage {
	return &domain.ReservationMessage{
		ReservationID: r.ID,
		UserID:        r.UserID,
		EventID:       r.EventID,
		Status:        r.Status,
		At:            time.Now(),
	}
}

// NoOpEventPublisher is used when Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishReservationCreated is a no-op
func (p *NoOpEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishReservationCancelled is a no-op
func (p *NoOpEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishEventRated is a no-op
func (p *NoOpEventPublisher) PublishEventRated(ctx context.Context, rating *domain.RatingMessage) error {
	return nil
}

// PublishStatusChanged is a no-op
func (p *NoOpEventPublisher) PublishStatusChanged(ctx context.Context, change *domain.StatusChangeMessage) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
