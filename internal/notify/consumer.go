package notify

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"marketplace/internal/model"
	rediskey "marketplace/pkg/redis"
)

// Consumer drains notification events: each event becomes one admin
// Notification row plus one seller email. Kafka may redeliver, so the
// consumer guards with a Redis once-lock and falls back on the event_id
// UNIQUE index when Redis is unavailable.
type Consumer struct {
	r       *kafka.Reader
	db      *gorm.DB
	rdb     *rd.Client
	mailer  Mailer
	lockTTL time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, db *gorm.DB, rdb *rd.Client, mailer Mailer, lockTTL time.Duration) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db:      db,
		rdb:     rdb,
		mailer:  mailer,
		lockTTL: lockTTL,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx canceled or connection gone
		}

		var e Event
		if err := json.Unmarshal(m.Value, &e); err != nil {
			log.Printf("notify consumer unmarshal: %v", err)
			continue
		}
		if err := e.Validate(); err != nil {
			log.Printf("notify consumer drop event: %v", err)
			continue
		}

		c.handle(ctx, e)
	}
}

func (c *Consumer) handle(ctx context.Context, e Event) {
	first, err := rediskey.NotifyOnce(ctx, c.rdb, e.EventID, c.lockTTL)
	if err != nil {
		// Redis down: proceed, the UNIQUE index still dedupes the row.
		log.Printf("notify once-lock event=%s: %v", e.EventID, err)
	} else if !first {
		return
	}

	n := &model.Notification{
		EventID:        e.EventID,
		SellerID:       e.SellerID,
		ReservationID:  e.ReservationID,
		Message:        e.Message(),
		ContactChannel: e.ContactChannel,
	}
	if err := c.db.Create(n).Error; err != nil {
		// Redelivered event hit the UNIQUE index: already recorded.
		if errorsLikeUnique(err) {
			return
		}
		log.Printf("notify consumer db create: %v", err)
		return
	}

	if err := c.mailer.Send(ctx, e.ContactChannel, "reservation update", e.Message()); err != nil {
		log.Printf("notify mail event=%s: %v", e.EventID, err)
	}
}

func errorsLikeUnique(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique")
}
