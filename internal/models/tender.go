package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tender struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Number    string    `gorm:"size:50;not null" json:"number"`
	OrgName   string    `gorm:"size:200;not null" json:"org_name"`
	Mode      string    `gorm:"size:20;not null;default:'OPEN'" json:"mode"`
	Status    string    `gorm:"size:20;not null;default:'PUBLISHED'" json:"status"`
	Items     []Item    `gorm:"foreignKey:TenderID" json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispute modes under Lei 14.133/2021, art. 56. Only OPEN (successive
// public bids) is handled by the live engine.
const (
	DisputeModeOpen       = "OPEN"
	DisputeModeOpenClosed = "OPEN_CLOSED"
	DisputeModeClosed     = "CLOSED"
)

const (
	TenderStatusPublished = "PUBLISHED"
	TenderStatusInDispute = "IN_DISPUTE"
	TenderStatusFinished  = "FINISHED"
)

type Item struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	TenderID       string          `gorm:"type:uuid;not null;index" json:"tender_id"`
	Number         int             `gorm:"not null" json:"number"`
	Description    string          `gorm:"size:500;not null" json:"description"`
	Quantity       int             `gorm:"not null;default:1" json:"quantity"`
	Unit           string          `gorm:"size:20" json:"unit"`
	ReferenceValue decimal.Decimal `gorm:"type:numeric(15,2)" json:"reference_value"`
	Status         string          `gorm:"size:20;not null;default:'PENDING'" json:"status"`

	// Filled at close time; consumed by the downstream award workflow.
	WinningBidID    *string             `gorm:"type:uuid" json:"winning_bid_id,omitempty"`
	WinningValue    decimal.NullDecimal `gorm:"type:numeric(15,2)" json:"winning_value,omitempty"`
	WinnerSupplier  string              `gorm:"size:200" json:"winner_supplier,omitempty"`
	ClosedAt        *time.Time          `json:"closed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

const (
	ItemStatusPending       = "PENDING"
	ItemStatusOpen          = "OPEN"
	ItemStatusInRandomClose = "IN_RANDOM_CLOSE"
	ItemStatusClosed        = "CLOSED"
)
