package domain

import "time"

// StoreIdentity is the cached, denormalized view of the authenticated tenant.
// It is derived from the token payload as a fallback, or from the platform's
// verify/settings endpoints as the authoritative source. It is never used for
// authorization decisions; the platform re-checks the token on every request.
type StoreIdentity struct {
	ID         string  `json:"id" bson:"id"`
	ShopDomain string  `json:"shopDomain" bson:"shopDomain"`
	ShopName   string  `json:"shopName,omitempty" bson:"shopName,omitempty"`
	Credits    float64 `json:"credits,omitempty" bson:"credits,omitempty"`
	Currency   string  `json:"currency,omitempty" bson:"currency,omitempty"`
}

// Session represents a dashboard browser session: the bearer token issued by
// the platform's OAuth flow plus the store identity cached alongside it.
// Token and Store live and die together; clearing one clears both.
type Session struct {
	ID        string         `json:"id" bson:"_id"`
	Token     string         `json:"token" bson:"token"`
	Store     *StoreIdentity `json:"store,omitempty" bson:"store,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time      `json:"expires_at" bson:"expires_at"`
}
