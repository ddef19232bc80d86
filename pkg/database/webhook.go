package database

import "time"

// WebhookDelivery is the inbox row of one verified provider push. The
// provider supplied event id is the primary key so redeliveries collide.
type WebhookDelivery struct {
	ID            string    `gorm:"primaryKey;size:255" json:"id"`
	Provider      string    `gorm:"size:64;index" json:"provider"`
	EventType     string    `gorm:"size:128" json:"eventType"`
	ConnectionID  string    `gorm:"size:36;index" json:"connectionId"`
	PayloadDigest string    `gorm:"size:64" json:"payloadDigest"`
	JobID         string    `gorm:"size:36" json:"jobId"`
	Processed     bool      `json:"processed"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}
