package repository

import (
	"time"

	"qbo-backend/internal/connection/domain"
)

// ConnectionRepository is the credential store.
type ConnectionRepository interface {
	// Latest returns the most recently updated connection, or nil.
	Latest() (*domain.Connection, error)
	// Save upserts by realm id.
	Save(conn *domain.Connection) error
	DeleteAll() error
}

// OAuthStateRepository stores issued state nonces until they are consumed.
type OAuthStateRepository interface {
	Create(state *domain.OAuthState) error
	// Consume deletes the nonce and reports whether it existed and was unexpired.
	Consume(nonce string, now time.Time) (bool, error)
	DeleteExpired(now time.Time) error
}
