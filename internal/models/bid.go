package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bid struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	TenderID     string          `gorm:"type:uuid;not null;index" json:"tender_id"`
	ItemID       string          `gorm:"type:uuid;not null;index" json:"item_id"`
	SupplierID   string          `gorm:"size:100;not null" json:"supplier_id"`
	SupplierName string          `gorm:"size:200;not null" json:"-"`
	Value        decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"value"`
	Sequence     int             `gorm:"not null" json:"sequence"`
	Status       string          `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	CancelReason string          `gorm:"size:500" json:"cancel_reason,omitempty"`
	OriginIP     string          `gorm:"size:45" json:"-"`
	SubmittedAt  time.Time       `gorm:"index" json:"submitted_at"`
}

const (
	BidStatusActive    = "ACTIVE"
	BidStatusCancelled = "CANCELLED"
)

func (b *Bid) Active() bool {
	return b.Status == BidStatusActive
}
