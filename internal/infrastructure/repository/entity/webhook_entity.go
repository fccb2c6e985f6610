package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopify-app-backend/internal/domain"
)

// MongoWebhookDoc represents an audited webhook delivery in MongoDB
type MongoWebhookDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Topic      string             `bson:"topic"`
	Shop       string             `bson:"shop"`
	EventID    string             `bson:"eventId,omitempty"`
	Payload    string             `bson:"payload"`
	Verified   bool               `bson:"verified"`
	ReceivedAt time.Time          `bson:"receivedAt"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// MongoWebhookDocFromDomain converts a delivery to a MongoDB document
func MongoWebhookDocFromDomain(delivery *domain.WebhookDelivery) *MongoWebhookDoc {
	return &MongoWebhookDoc{
		Topic:      delivery.Topic,
		Shop:       delivery.Shop,
		EventID:    delivery.EventID,
		Payload:    string(delivery.Payload),
		Verified:   delivery.Verified,
		ReceivedAt: delivery.ReceivedAt,
	}
}
