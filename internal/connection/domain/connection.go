package domain

import "time"

// Connection is the OAuth token pair for one QuickBooks company (realm).
type Connection struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	RealmID               string     `json:"realm_id" gorm:"uniqueIndex;not null"`
	AccessToken           string     `json:"-" gorm:"type:text"`
	RefreshToken          string     `json:"-" gorm:"type:text"`
	TokenType             string     `json:"token_type"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" gorm:"index"`
}

func (Connection) TableName() string { return "qbo_connections" }

// OAuthState is a one-time nonce issued with a consent URL.
type OAuthState struct {
	Nonce     string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (OAuthState) TableName() string { return "qbo_oauth_states" }

// Status is the public view of the current connection.
type Status struct {
	Connected             bool       `json:"connected"`
	RealmID               string     `json:"realm_id,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// Models lists the connection tables for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&Connection{}, &OAuthState{}}
}
