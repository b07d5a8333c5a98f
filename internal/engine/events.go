package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
	"github.com/valleteclab/portaldcp-sub004/internal/ranking"
)

// Event types pushed to room subscribers. The snapshot is always the first
// frame a subscriber sees; every later frame is a delta.
const (
	EventSnapshot       = "snapshot"
	EventNewBid         = "new_bid"
	EventBidCancelled   = "bid_cancelled"
	EventBidError       = "bid_error"
	EventError          = "error"
	EventNotice         = "notice"
	EventChatMessage    = "chat_message"
	EventPresenceUpdate = "presence_update"
	EventPhaseChange    = "phase_change"
	EventSessionState   = "session_state"
)

// BidView is the broadcast projection of a bid: supplier identity masked,
// position filled from the current ranking.
type BidView struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	SupplierID   string          `json:"supplier_id"`
	DisplayName  string          `json:"display_name"`
	Value        decimal.Decimal `json:"value"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Sequence     int             `json:"sequence"`
	Position     int             `json:"position,omitempty"`
	Status       string          `json:"status"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

type ParticipantView struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Online      bool   `json:"online"`
}

type MessageView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// TimerView describes the closing clock for the open item. The deadline is
// published only during the ordinary quiet period; once the random window
// starts, clients learn only that it is running, never how long it lasts.
type TimerView struct {
	ItemID         string     `json:"item_id"`
	Status         string     `json:"status"`
	QuietDeadline  *time.Time `json:"quiet_deadline,omitempty"`
	InRandomWindow bool       `json:"in_random_window"`
}

type ItemView struct {
	ID             string          `json:"id"`
	Number         int             `json:"number"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	Unit           string          `json:"unit"`
	ReferenceValue decimal.Decimal `json:"reference_value"`
	Status         string          `json:"status"`
	Bids           []BidView       `json:"bids"`
	Winner         *BidView        `json:"winner,omitempty"`
}

type Snapshot struct {
	TenderID      string            `json:"tender_id"`
	TenderNumber  string            `json:"tender_number"`
	OrgName       string            `json:"org_name"`
	Mode          string            `json:"mode"`
	Phase         string            `json:"phase"`
	CurrentItemID string            `json:"current_item_id,omitempty"`
	Items         []ItemView        `json:"items"`
	Participants  []ParticipantView `json:"participants"`
	Chat          []MessageView     `json:"chat"`
	Timer         *TimerView        `json:"timer,omitempty"`
}

type PhaseChange struct {
	ItemID        string     `json:"item_id,omitempty"`
	ItemStatus    string     `json:"item_status,omitempty"`
	SessionPhase  string     `json:"session_phase"`
	Winner        *BidView   `json:"winner,omitempty"`
	QuietDeadline *time.Time `json:"quiet_deadline,omitempty"`
	InRandom      bool       `json:"in_random_window"`
}

type PresenceUpdate struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	Online        bool   `json:"online"`
}

type Notice struct {
	Message string `json:"message"`
}

type BidError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func bidView(b *models.Bid, quantity int, position int) BidView {
	return BidView{
		ID:           b.ID,
		ItemID:       b.ItemID,
		SupplierID:   b.SupplierID,
		DisplayName:  ranking.MaskSupplier(b.SupplierName),
		Value:        b.Value,
		TotalValue:   b.Value.Mul(decimal.NewFromInt(int64(quantity))),
		Sequence:     b.Sequence,
		Position:     position,
		Status:       b.Status,
		CancelReason: b.CancelReason,
		SubmittedAt:  b.SubmittedAt,
	}
}

func messageView(m *models.ChatMessage) MessageView {
	return MessageView{
		ID:        m.ID,
		Kind:      m.Kind,
		Sender:    m.Sender,
		Body:      m.Body,
		Timestamp: m.CreatedAt,
	}
}
