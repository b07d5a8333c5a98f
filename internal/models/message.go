package models

import "time"

// ChatMessage is one entry of the session's append-only chat log. Supplier
// senders are stored anonymized ("FORNECEDOR") as required by the governing
// tender rules; auctioneer messages carry "PREGOEIRO" and engine-generated
// notices carry "SISTEMA".
type ChatMessage struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenderID  string    `gorm:"type:uuid;not null;index" json:"tender_id"`
	Kind      string    `gorm:"size:20;not null" json:"kind"`
	Sender    string    `gorm:"size:100;not null" json:"sender"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	MessageKindAuctioneer = "AUCTIONEER"
	MessageKindSupplier   = "SUPPLIER"
	MessageKindSystem     = "SYSTEM"
)

const (
	SenderAuctioneer = "PREGOEIRO"
	SenderSupplier   = "FORNECEDOR"
	SenderSystem     = "SISTEMA"
)
