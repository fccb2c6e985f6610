package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/infrastructure/repository/entity"
	"shopify-app-backend/internal/ports"
)

// MongoWebhookAuditRepository implements WebhookAuditLog using MongoDB
type MongoWebhookAuditRepository struct {
	webhooksCollection *mongo.Collection
	now                func() time.Time
}

// NewMongoWebhookAuditRepository creates a new MongoDB audit repository
func NewMongoWebhookAuditRepository(db *mongo.Database) *MongoWebhookAuditRepository {
	return &MongoWebhookAuditRepository{
		webhooksCollection: db.Collection("webhook_deliveries"),
		now:                time.Now,
	}
}

var _ ports.WebhookAuditLog = (*MongoWebhookAuditRepository)(nil)

// ConnectMongo opens a client and checks the server is reachable
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the lookup indexes used when inspecting deliveries
func (r *MongoWebhookAuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.webhooksCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shop", Value: 1}, {Key: "receivedAt", Value: -1}}},
		{Keys: bson.D{{Key: "eventId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create webhook indexes: %w", err)
	}
	return nil
}

// LogWebhook logs a webhook delivery
func (r *MongoWebhookAuditRepository) LogWebhook(ctx context.Context, delivery *domain.WebhookDelivery) error {
	doc := entity.MongoWebhookDocFromDomain(delivery)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = r.now()
	if doc.ReceivedAt.IsZero() {
		doc.ReceivedAt = doc.CreatedAt
	}

	_, err := r.webhooksCollection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	return nil
}
