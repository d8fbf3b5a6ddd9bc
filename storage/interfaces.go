package storage

import (
	"context"
	"time"

	"vehicle-market/models"
)

// VehicleWriter is the interface any catalog snapshot backend must satisfy.
type VehicleWriter interface {
	Write(ctx context.Context, vehicles []models.Vehicle) error
	Close() error
}

// RawVehicleWriter is the interface for persisting records before normalization.
type RawVehicleWriter interface {
	WriteRaw(records []*models.RawVehicle) error
	Close() error
}

// SessionStore is a small key-value store for session data such as the
// access token. It is injected wherever a session is needed.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// WishlistStore keeps each user's favorited vehicle ids.
type WishlistStore interface {
	List(ctx context.Context, userID string) ([]string, error)
	Contains(ctx context.Context, userID, vehicleID string) (bool, error)
	Add(ctx context.Context, userID, vehicleID string) error
	Remove(ctx context.Context, userID, vehicleID string) error
}

// KeyAccessToken is the session key holding the bearer token.
const KeyAccessToken = "access_token"
