package repository

import (
	"context"
	"fmt"
	"time"

	"textloop-gateway/internal/domain"
	"textloop-gateway/internal/infrastructure/repository/entity"
	"textloop-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository implements ports.SessionStore using MongoDB. Sessions
// expire via a TTL index on expiresAt; SetToken slides the expiry forward.
type SessionRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewSessionRepository creates a new MongoDB session repository
func NewSessionRepository(db *mongo.Database, ttl time.Duration) ports.SessionStore {
	collection := db.Collection("sessions")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, _ = collection.Indexes().CreateOne(context.Background(), indexModel)

	return &SessionRepository{
		collection: collection,
		ttl:        ttl,
	}
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var doc entity.MongoSessionDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// The TTL monitor only runs periodically; treat an expired-but-present
	// document as absent.
	if !doc.ExpiresAt.IsZero() && time.Now().After(doc.ExpiresAt) {
		return nil, nil
	}

	return doc.ToDomain(), nil
}

// SetToken persists the bearer token, creating the session if needed
func (r *SessionRepository) SetToken(ctx context.Context, sessionID string, token string) error {
	now := time.Now()
	opts := options.Update().SetUpsert(true)
	update := bson.M{
		"$set": bson.M{
			"token":     token,
			"expiresAt": now.Add(r.ttl),
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": sessionID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

// SetStoreIdentity persists the cached store identity
func (r *SessionRepository) SetStoreIdentity(ctx context.Context, sessionID string, store *domain.StoreIdentity) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{
		"$set": bson.M{
			"store": entity.MongoStoreIdentityDocFromDomain(store),
		},
		"$setOnInsert": bson.M{
			"createdAt": time.Now(),
			"expiresAt": time.Now().Add(r.ttl),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": sessionID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save store identity: %w", err)
	}
	return nil
}

// Clear removes the session
func (r *SessionRepository) Clear(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
