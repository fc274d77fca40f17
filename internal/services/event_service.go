package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"connect-service/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event types emitted on the bus.
const (
	EventConnectionAccepted    = "connection.accepted"
	EventIntroductionRequested = "introduction.requested"
	EventIntroductionResponded = "introduction.responded"
)

// Event is the envelope published to Kafka and to the per-user redis
// notification channels.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// EventService emits logical graph events for the notification collaborator.
// Publishing is best effort: a broker outage is logged, never surfaced to
// the caller whose mutation already committed.
type EventService struct {
	producer sarama.SyncProducer
	redis    *redis.Client
	topic    string
}

func NewEventService(producer sarama.SyncProducer, redisClient *redis.Client, topic string) *EventService {
	return &EventService{
		producer: producer,
		redis:    redisClient,
		topic:    topic,
	}
}

func (s *EventService) ConnectionAccepted(ctx context.Context, conn *models.Connection) {
	s.emit(ctx, EventConnectionAccepted, conn.InitiatorID, map[string]any{
		"connectionId": conn.ID,
		"initiatorId":  conn.InitiatorID,
		"recipientId":  conn.RecipientID(),
	})
}

func (s *EventService) IntroductionRequested(ctx context.Context, req *models.IntroductionRequest) {
	s.emit(ctx, EventIntroductionRequested, req.IntroducerID, map[string]any{
		"requestId":    req.ID,
		"requesterId":  req.RequesterID,
		"introducerId": req.IntroducerID,
		"targetId":     req.TargetID,
		"purpose":      req.Purpose,
	})
}

func (s *EventService) IntroductionResponded(ctx context.Context, req *models.IntroductionRequest) {
	s.emit(ctx, EventIntroductionResponded, req.RequesterID, map[string]any{
		"requestId":   req.ID,
		"requesterId": req.RequesterID,
		"targetId":    req.TargetID,
		"status":      req.Status,
	})
}

// emit publishes the event to Kafka keyed by the notified user (hash
// partitioning keeps a user's events ordered) and mirrors it onto the
// user's redis notification channel.
func (s *EventService) emit(ctx context.Context, eventType string, notifyUserID uint, payload map[string]any) {
	if s == nil {
		return
	}
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "type", eventType, "error", err)
		return
	}

	if s.producer != nil {
		msg := &sarama.ProducerMessage{
			Topic: s.topic,
			Key:   sarama.StringEncoder(fmt.Sprintf("%d", notifyUserID)),
			Value: sarama.ByteEncoder(data),
		}
		if _, _, err := s.producer.SendMessage(msg); err != nil {
			slog.Error("Failed to publish event to kafka", "type", eventType, "error", err)
		}
	}

	if s.redis != nil {
		channel := fmt.Sprintf("user:%d:notifications", notifyUserID)
		if err := s.redis.Publish(ctx, channel, data).Err(); err != nil {
			slog.Error("Failed to publish user notification", "type", eventType, "error", err)
		}
	}

	slog.Debug("Published event", "type", eventType, "user", notifyUserID)
}
