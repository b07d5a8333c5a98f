package models

import "time"

// SessionEvent is the durable journal of everything that changed session
// state: accepted bids, cancellations and phase transitions. A session can
// be rebuilt from this log plus the bids table.
type SessionEvent struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenderID  string    `gorm:"type:uuid;not null;index" json:"tender_id"`
	ItemID    string    `gorm:"type:uuid;index" json:"item_id,omitempty"`
	Type      string    `gorm:"size:40;not null" json:"type"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

const (
	EventSessionStarted   = "SESSION_STARTED"
	EventSessionSuspended = "SESSION_SUSPENDED"
	EventSessionResumed   = "SESSION_RESUMED"
	EventSessionClosed    = "SESSION_CLOSED"
	EventItemOpened       = "ITEM_OPENED"
	EventRandomWindow     = "RANDOM_WINDOW_STARTED"
	EventItemReopened     = "ITEM_REOPENED"
	EventItemClosed       = "ITEM_CLOSED"
	EventBidAccepted      = "BID_ACCEPTED"
	EventBidCancelled     = "BID_CANCELLED"
)
