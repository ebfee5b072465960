package usecase

import (
	"context"
	"errors"

	"qbo-backend/internal/connection/domain"
	"qbo-backend/pkg/quickbooks"
)

var (
	// ErrNotConnected is returned when no QuickBooks connection is stored.
	ErrNotConnected = errors.New("quickbooks is not connected")
	// ErrInvalidState is returned when an OAuth callback state is forged, expired or reused.
	ErrInvalidState = errors.New("invalid oauth state")
)

// CompanyInfo is the company lookup result; failures are reported in Error rather than returned.
type CompanyInfo struct {
	Connected bool                   `json:"connected"`
	Company   map[string]interface{} `json:"company,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// CompanyReader fetches the CompanyInfo entity of the connected realm.
type CompanyReader interface {
	CompanyInfo(ctx context.Context) (map[string]interface{}, error)
}

// Purger removes every mirrored row.
type Purger interface {
	Purge() error
}

// ConnectionUsecase manages the QuickBooks OAuth connection.
type ConnectionUsecase interface {
	quickbooks.CredentialSource

	ConnectURL() (string, error)
	HandleCallback(ctx context.Context, code, realmID, state string) (*domain.Status, error)
	Disconnect(purge bool) error
	Status() (*domain.Status, error)
	CompanyInfo(ctx context.Context) *CompanyInfo

	// SetCompanyReader wires the API client after construction; the client itself
	// depends on this usecase for credentials.
	SetCompanyReader(reader CompanyReader)
}
