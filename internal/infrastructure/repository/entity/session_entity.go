package entity

import (
	"time"

	"textloop-gateway/internal/domain"
)

// MongoStoreIdentityDoc represents a cached store identity in MongoDB
type MongoStoreIdentityDoc struct {
	ID         string  `bson:"id"`
	ShopDomain string  `bson:"shopDomain"`
	ShopName   string  `bson:"shopName,omitempty"`
	Credits    float64 `bson:"credits,omitempty"`
	Currency   string  `bson:"currency,omitempty"`
}

// MongoSessionDoc represents a dashboard session in MongoDB
type MongoSessionDoc struct {
	ID        string                 `bson:"_id"`
	Token     string                 `bson:"token"`
	Store     *MongoStoreIdentityDoc `bson:"store,omitempty"`
	CreatedAt time.Time              `bson:"createdAt"`
	ExpiresAt time.Time              `bson:"expiresAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSessionDoc) ToDomain() *domain.Session {
	session := &domain.Session{
		ID:        d.ID,
		Token:     d.Token,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
	if d.Store != nil {
		session.Store = &domain.StoreIdentity{
			ID:         d.Store.ID,
			ShopDomain: d.Store.ShopDomain,
			ShopName:   d.Store.ShopName,
			Credits:    d.Store.Credits,
			Currency:   d.Store.Currency,
		}
	}
	return session
}

// MongoStoreIdentityDocFromDomain converts a domain store identity to a
// MongoDB document
func MongoStoreIdentityDocFromDomain(store *domain.StoreIdentity) *MongoStoreIdentityDoc {
	if store == nil {
		return nil
	}
	return &MongoStoreIdentityDoc{
		ID:         store.ID,
		ShopDomain: store.ShopDomain,
		ShopName:   store.ShopName,
		Credits:    store.Credits,
		Currency:   store.Currency,
	}
}
