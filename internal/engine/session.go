package engine

import (
	"time"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
	"github.com/valleteclab/portaldcp-sub004/internal/ranking"
)

// Session phases. AWAITING accepts joins but no bids; LIVE is the dispute
// proper; SUSPENDED holds all clocks; CLOSED is terminal.
const (
	PhaseAwaiting  = "AWAITING"
	PhaseLive      = "LIVE"
	PhaseSuspended = "SUSPENDED"
	PhaseClosed    = "CLOSED"
)

// Participant roles.
const (
	RoleAuctioneer = "AUCTIONEER"
	RoleSupplier   = "SUPPLIER"
)

// ParticipantInfo is the identity a join carries, taken from the room token.
type ParticipantInfo struct {
	ID          string
	Role        string
	DisplayName string
}

type participant struct {
	ParticipantInfo
	conns int
}

func (p *participant) online() bool { return p.conns > 0 }

func (p *participant) view() ParticipantView {
	name := p.DisplayName
	if p.Role == RoleSupplier {
		name = ranking.MaskSupplier(name)
	}
	return ParticipantView{
		ID:          p.ID,
		Role:        p.Role,
		DisplayName: name,
		Online:      p.online(),
	}
}

// itemState is the live state of one disputed item: the durable item row,
// its full bid history in arrival order, the per-item sequence counter and
// the closing clock.
type itemState struct {
	item    models.Item
	bids    []*models.Bid
	nextSeq int

	// Closing clock. gen invalidates stale timers: every reschedule or
	// cancellation bumps it, and an expiry whose generation no longer
	// matches is ignored by the actor.
	gen           int
	timer         *time.Timer
	quietDeadline time.Time
	winner        *models.Bid
}

func (it *itemState) timerView() *TimerView {
	switch it.item.Status {
	case models.ItemStatusOpen:
		deadline := it.quietDeadline
		return &TimerView{ItemID: it.item.ID, Status: it.item.Status, QuietDeadline: &deadline}
	case models.ItemStatusInRandomClose:
		return &TimerView{ItemID: it.item.ID, Status: it.item.Status, InRandomWindow: true}
	default:
		return nil
	}
}

func (it *itemState) view() ItemView {
	ranked := ranking.Rank(it.bids)
	views := make([]BidView, len(ranked))
	for i, rb := range ranked {
		views[i] = bidView(rb.Bid, it.item.Quantity, rb.Position)
	}

	v := ItemView{
		ID:             it.item.ID,
		Number:         it.item.Number,
		Description:    it.item.Description,
		Quantity:       it.item.Quantity,
		Unit:           it.item.Unit,
		ReferenceValue: it.item.ReferenceValue,
		Status:         it.item.Status,
		Bids:           views,
	}
	if it.winner != nil {
		w := bidView(it.winner, it.item.Quantity, 1)
		v.Winner = &w
	}
	return v
}

type sessionState struct {
	tender        models.Tender
	phase         string
	currentItemID string
	items         []*itemState
	itemsByID     map[string]*itemState
	participants  map[string]*participant
	chat          []*models.ChatMessage
	suspendReason string
}

func newSessionState(tender models.Tender) *sessionState {
	st := &sessionState{
		tender:       tender,
		phase:        PhaseAwaiting,
		itemsByID:    make(map[string]*itemState),
		participants: make(map[string]*participant),
	}
	for _, item := range tender.Items {
		item.Status = models.ItemStatusPending
		is := &itemState{item: item, nextSeq: 1}
		st.items = append(st.items, is)
		st.itemsByID[item.ID] = is
	}
	return st
}

func (st *sessionState) currentItem() *itemState {
	if st.currentItemID == "" {
		return nil
	}
	return st.itemsByID[st.currentItemID]
}

func (st *sessionState) snapshot() *Snapshot {
	snap := &Snapshot{
		TenderID:      st.tender.ID,
		TenderNumber:  st.tender.Number,
		OrgName:       st.tender.OrgName,
		Mode:          st.tender.Mode,
		Phase:         st.phase,
		CurrentItemID: st.currentItemID,
		Items:         make([]ItemView, 0, len(st.items)),
		Participants:  make([]ParticipantView, 0, len(st.participants)),
		Chat:          make([]MessageView, 0, len(st.chat)),
	}

	for _, it := range st.items {
		snap.Items = append(snap.Items, it.view())
	}
	for _, p := range st.participants {
		snap.Participants = append(snap.Participants, p.view())
	}
	for _, m := range st.chat {
		snap.Chat = append(snap.Chat, messageView(m))
	}
	if cur := st.currentItem(); cur != nil {
		snap.Timer = cur.timerView()
	}
	return snap
}
