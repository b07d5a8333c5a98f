package engine

import "github.com/valleteclab/portaldcp-sub004/internal/models"

// AuditLog durably records every state change before it is broadcast. A bid
// is never announced as accepted until RecordBid has returned.
type AuditLog interface {
	RecordBid(bid *models.Bid) error
	RecordBidCancelled(bidID, reason string) error
	RecordChat(msg *models.ChatMessage) error
	RecordEvent(ev *models.SessionEvent) error

	// RecordItemClosed persists the item's terminal state including the
	// winner write-out consumed by the award workflow.
	RecordItemClosed(item *models.Item) error

	// Replay sources for rebuilding a session from the durable log.
	BidsForTender(tenderID string) ([]*models.Bid, error)
	ChatForTender(tenderID string) ([]*models.ChatMessage, error)
}

// TenderSource supplies the read-only master data a session is created
// from. Implemented by the tender catalog; the engine never writes through
// this interface.
type TenderSource interface {
	TenderForDispute(tenderID string) (*models.Tender, error)
}
