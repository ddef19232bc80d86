package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection keeps the encrypted OAuth credentials of one provider
// authorization. Rows are never deleted, disconnect only changes the status.
type Connection struct {
	ID               string           `gorm:"primaryKey;size:36"`
	ProviderID       string           `gorm:"size:64;index"`
	ConnectionStatus ConnectionStatus `gorm:"size:32;index"`
	AccessTokenEnc   string
	RefreshTokenEnc  string
	TokenExpiresAt   time.Time
	TokenVersion     int64
	LastSyncedAt     *time.Time
	LastError        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Connection) TableName() string {
	return "connections"
}

func (c *Connection) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	return nil
}

// ConnectionView is what leaves the vault boundary, it never carries tokens.
type ConnectionView struct {
	ID               string           `json:"id"`
	ProviderID       string           `json:"provider_id"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	TokenExpiresAt   time.Time        `json:"token_expires_at"`
	LastSyncedAt     *time.Time       `json:"last_synced_at"`
}

func (c *Connection) View() ConnectionView {
	return ConnectionView{
		ID:               c.ID,
		ProviderID:       c.ProviderID,
		ConnectionStatus: c.ConnectionStatus,
		TokenExpiresAt:   c.TokenExpiresAt.UTC(),
		LastSyncedAt:     c.LastSyncedAt,
	}
}

type AuditEventType string

const (
	AuditConnectionCreated      = AuditEventType("connection_created")
	AuditTokenRefreshed         = AuditEventType("token_refreshed")
	AuditTokenRefreshFailed     = AuditEventType("token_refresh_failed")
	AuditConnectionDisconnected = AuditEventType("connection_disconnected")
)

type ConnectionAuditEvent struct {
	ID           string         `gorm:"primaryKey;size:36"`
	ConnectionID string         `gorm:"size:36;index"`
	EventType    AuditEventType `gorm:"size:64"`
	CreatedAt    time.Time
}

func (ConnectionAuditEvent) TableName() string {
	return "connection_audit_events"
}

func (e *ConnectionAuditEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	return nil
}
