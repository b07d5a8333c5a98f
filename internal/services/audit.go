package services

import (
	"gorm.io/gorm"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
)

// AuditService is the gorm-backed durable log behind the engine: every
// accepted bid, cancellation, chat message and phase transition lands here
// before it is broadcast.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) RecordBid(bid *models.Bid) error {
	return s.db.Create(bid).Error
}

func (s *AuditService) RecordBidCancelled(bidID, reason string) error {
	return s.db.Model(&models.Bid{}).
		Where("id = ?", bidID).
		Updates(map[string]interface{}{
			"status":        models.BidStatusCancelled,
			"cancel_reason": reason,
		}).Error
}

func (s *AuditService) RecordChat(msg *models.ChatMessage) error {
	return s.db.Create(msg).Error
}

func (s *AuditService) RecordEvent(ev *models.SessionEvent) error {
	return s.db.Create(ev).Error
}

// RecordItemClosed persists the item's terminal status and winner columns,
// which the downstream award workflow reads.
func (s *AuditService) RecordItemClosed(item *models.Item) error {
	return s.db.Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"status":          item.Status,
			"winning_bid_id":  item.WinningBidID,
			"winning_value":   item.WinningValue,
			"winner_supplier": item.WinnerSupplier,
			"closed_at":       item.ClosedAt,
		}).Error
}

func (s *AuditService) BidsForTender(tenderID string) ([]*models.Bid, error) {
	var bids []*models.Bid
	err := s.db.Where("tender_id = ?", tenderID).
		Order("submitted_at ASC").
		Find(&bids).Error
	return bids, err
}

func (s *AuditService) ChatForTender(tenderID string) ([]*models.ChatMessage, error) {
	var chat []*models.ChatMessage
	err := s.db.Where("tender_id = ?", tenderID).
		Order("created_at ASC").
		Find(&chat).Error
	return chat, err
}

// BidHistory returns the full durable bid record for a tender, cancelled
// bids included, newest first. Used by the audit endpoint, not the engine.
func (s *AuditService) BidHistory(tenderID string) ([]*models.Bid, error) {
	var bids []*models.Bid
	err := s.db.Where("tender_id = ?", tenderID).
		Order("submitted_at DESC").
		Find(&bids).Error
	return bids, err
}

// EventsForTender returns the phase-transition journal, oldest first.
func (s *AuditService) EventsForTender(tenderID string) ([]*models.SessionEvent, error) {
	var events []*models.SessionEvent
	err := s.db.Where("tender_id = ?", tenderID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
