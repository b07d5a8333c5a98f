package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
	"github.com/valleteclab/portaldcp-sub004/internal/ranking"
	"github.com/valleteclab/portaldcp-sub004/internal/ws"
)

// Options carries the dispute timing rules for a session.
type Options struct {
	QuietPeriod    time.Duration
	RandomCloseMin time.Duration
	RandomCloseMax time.Duration
	Rand           RandSource
}

func (o Options) withDefaults() Options {
	if o.QuietPeriod <= 0 {
		o.QuietPeriod = 2 * time.Minute
	}
	if o.RandomCloseMax <= 0 {
		o.RandomCloseMin = 2 * time.Minute
		o.RandomCloseMax = 30 * time.Minute
	}
	if o.Rand == nil {
		o.Rand = systemRand{}
	}
	return o
}

// NewBidDelta is the new_bid broadcast payload: the accepted bid plus the
// restarted quiet-period deadline.
type NewBidDelta struct {
	Bid           BidView   `json:"bid"`
	QuietDeadline time.Time `json:"quiet_deadline"`
}

// CancelDelta is the bid_cancelled payload: the cancelled bid and the
// recomputed item ranking.
type CancelDelta struct {
	Bid  BidView  `json:"bid"`
	Item ItemView `json:"item"`
}

// Session owns the live state of one tender's dispute room. All mutation
// flows through a single command channel consumed by one goroutine, so
// bids, control actions and timer expiries are totally ordered and no lock
// discipline is needed.
type Session struct {
	id      string
	opts    Options
	hub     *ws.Hub
	audit   AuditLog
	state   *sessionState
	cmds    chan func()
	done    chan struct{}
	onFatal func(tenderID string)
}

func newSession(state *sessionState, hub *ws.Hub, audit AuditLog, opts Options, onFatal func(string)) *Session {
	s := &Session{
		id:      state.tender.ID,
		opts:    opts.withDefaults(),
		hub:     hub,
		audit:   audit,
		state:   state,
		cmds:    make(chan func(), 256),
		done:    make(chan struct{}),
		onFatal: onFatal,
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.done:
			// Drain whatever was enqueued before shutdown so callers
			// blocked on replies are released.
			for {
				select {
				case fn := <-s.cmds:
					fn()
				default:
					return
				}
			}
		}
	}
}

// do enqueues a command for the actor goroutine. Reports false when the
// session has been shut down.
func (s *Session) do(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.cmds <- fn:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) call(fn func() error) error {
	errc := make(chan error, 1)
	if !s.do(func() { errc <- fn() }) {
		return notFoundf("session %s is no longer live", s.id)
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		// Shutdown raced the enqueue; the drain may or may not have run it.
		select {
		case err := <-errc:
			return err
		default:
			return notFoundf("session %s is no longer live", s.id)
		}
	}
}

func (s *Session) stop() {
	s.do(func() {
		for _, it := range s.state.items {
			s.stopTimer(it)
		}
	})
	close(s.done)
}

// Join registers a participant (idempotent on reconnect) and, when a client
// connection is given, seeds its outbox with a full snapshot before
// subscribing it to deltas. Snapshot and subscription happen in the same
// actor step, so no delta can be missed or duplicated.
func (s *Session) Join(p ParticipantInfo, client *ws.Client) error {
	return s.call(func() error {
		if p.ID == "" {
			return validationf("participant id is required")
		}
		part, ok := s.state.participants[p.ID]
		if !ok {
			part = &participant{ParticipantInfo: p}
			s.state.participants[p.ID] = part
		}
		part.conns++

		if client != nil {
			client.Send(ws.WSMessage{Type: EventSnapshot, Data: s.state.snapshot()})
			s.hub.AddClient(s.id, client)
		}

		s.broadcast(EventPresenceUpdate, PresenceUpdate{
			ParticipantID: part.ID,
			DisplayName:   part.view().DisplayName,
			Role:          part.Role,
			Online:        true,
		})
		return nil
	})
}

// Leave marks the participant offline once its last connection is gone. The
// participant record is retained so history stays attributable.
func (s *Session) Leave(participantID string, client *ws.Client) {
	s.do(func() {
		if client != nil {
			s.hub.RemoveClient(s.id, client)
		}
		part, ok := s.state.participants[participantID]
		if !ok {
			return
		}
		if part.conns > 0 {
			part.conns--
		}
		if !part.online() {
			s.broadcast(EventPresenceUpdate, PresenceUpdate{
				ParticipantID: part.ID,
				DisplayName:   part.view().DisplayName,
				Role:          part.Role,
				Online:        false,
			})
		}
	})
}

// SubmitBid validates, sequences, durably records and broadcasts a bid. The
// whole path runs inside the actor step, so two racing bids can never be
// validated against the same best offer.
func (s *Session) SubmitBid(p ParticipantInfo, itemID string, value decimal.Decimal, originIP string) (*BidView, error) {
	var view *BidView
	err := s.call(func() error {
		st := s.state
		if st.phase != PhaseLive {
			return phasef("session is %s; bids are only accepted while LIVE", st.phase)
		}
		it := st.itemsByID[itemID]
		if it == nil {
			return notFoundf("item %s not found", itemID)
		}
		if it.item.Status != models.ItemStatusOpen && it.item.Status != models.ItemStatusInRandomClose {
			return phasef("item %d is %s and not accepting bids", it.item.Number, it.item.Status)
		}
		if !value.IsPositive() {
			return validationf("bid value must be positive")
		}
		if !ranking.Improves(it.bids, value) {
			best := ranking.BestActive(it.bids)
			return rankingf("bid of %s does not beat the current best offer of %s", value, best.Value)
		}

		bid := &models.Bid{
			ID:           uuid.NewString(),
			TenderID:     st.tender.ID,
			ItemID:       it.item.ID,
			SupplierID:   p.ID,
			SupplierName: p.DisplayName,
			Value:        value,
			Sequence:     it.nextSeq,
			Status:       models.BidStatusActive,
			OriginIP:     originIP,
			SubmittedAt:  time.Now(),
		}

		// Durability before visibility: nothing is applied or announced
		// unless the bid hits the log.
		if err := s.audit.RecordBid(bid); err != nil {
			log.Printf("engine: bid write failed for tender %s: %v", s.id, err)
			return internalf("bid could not be recorded")
		}

		it.nextSeq++
		it.bids = append(it.bids, bid)

		reopened := it.item.Status == models.ItemStatusInRandomClose
		if reopened {
			it.item.Status = models.ItemStatusOpen
			s.recordEvent(models.EventItemReopened, it.item.ID, "bid during random closing window")
			s.systemNotice(fmt.Sprintf("Bid received during the closing window; item %d returns to open dispute.", it.item.Number))
		}
		s.scheduleQuiet(it)
		s.recordEvent(models.EventBidAccepted, it.item.ID, fmt.Sprintf("bid %s value %s seq %d", bid.ID, bid.Value, bid.Sequence))

		v := bidView(bid, it.item.Quantity, s.positionOf(it, bid))
		view = &v
		s.broadcast(EventNewBid, NewBidDelta{Bid: v, QuietDeadline: it.quietDeadline})
		if reopened {
			s.broadcastPhase(it)
		}
		return nil
	})
	return view, err
}

// Chat appends a participant message to the session log. Supplier senders
// are anonymized to their role label before anything is stored or shown.
func (s *Session) Chat(p ParticipantInfo, body string) error {
	return s.call(func() error {
		if body == "" {
			return validationf("message body is required")
		}
		if s.state.phase == PhaseClosed {
			return phasef("session is closed")
		}

		kind, sender := models.MessageKindSupplier, models.SenderSupplier
		if p.Role == RoleAuctioneer {
			kind, sender = models.MessageKindAuctioneer, models.SenderAuctioneer
		}
		msg := &models.ChatMessage{
			ID:        uuid.NewString(),
			TenderID:  s.id,
			Kind:      kind,
			Sender:    sender,
			Body:      body,
			CreatedAt: time.Now(),
		}
		if err := s.audit.RecordChat(msg); err != nil {
			log.Printf("engine: chat write failed for tender %s: %v", s.id, err)
			return internalf("message could not be recorded")
		}
		s.state.chat = append(s.state.chat, msg)
		s.broadcast(EventChatMessage, messageView(msg))
		return nil
	})
}

// Start moves the session from AWAITING to LIVE. Auctioneer only.
func (s *Session) Start(caller ParticipantInfo) error {
	return s.call(func() error {
		if err := s.requireAuctioneer(caller); err != nil {
			return err
		}
		if s.state.phase != PhaseAwaiting {
			return conflictf("session already %s", s.state.phase)
		}
		s.state.phase = PhaseLive
		s.recordEvent(models.EventSessionStarted, "", "")
		s.systemNotice("Dispute session started.")
		s.broadcastSessionPhase()
		return nil
	})
}

// SelectItem opens an item for dispute. Only one item may be open at a time.
func (s *Session) SelectItem(caller ParticipantInfo, itemID string) error {
	return s.call(func() error {
		if err := s.requireAuctioneer(caller); err != nil {
			return err
		}
		if s.state.phase != PhaseLive {
			return phasef("session is %s; items can only be opened while LIVE", s.state.phase)
		}
		it := s.state.itemsByID[itemID]
		if it == nil {
			return notFoundf("item %s not found", itemID)
		}
		if cur := s.state.currentItem(); cur != nil && cur != it {
			return conflictf("item %d is still in dispute", cur.item.Number)
		}
		if it.item.Status != models.ItemStatusPending {
			return conflictf("item %d is %s", it.item.Number, it.item.Status)
		}

		it.item.Status = models.ItemStatusOpen
		s.state.currentItemID = it.item.ID
		s.scheduleQuiet(it)
		s.recordEvent(models.EventItemOpened, it.item.ID, "")
		s.systemNotice(fmt.Sprintf("Item %d in dispute: %s", it.item.Number, it.item.Description))
		s.broadcastPhase(it)
		return nil
	})
}

// CloseItem forces the open item to CLOSED, recording the winner as if the
// closing window had expired.
func (s *Session) CloseItem(caller ParticipantInfo, itemID string) error {
	return s.call(func() error {
		if err := s.requireAuctioneer(caller); err != nil {
			return err
		}
		it := s.state.itemsByID[itemID]
		if it == nil {
			return notFoundf("item %s not found", itemID)
		}
		if it.item.Status != models.ItemStatusOpen && it.item.Status != models.ItemStatusInRandomClose {
			return conflictf("item %d is %s and cannot be closed", it.item.Number, it.item.Status)
		}
		s.closeItem(it)
		return nil
	})
}

// CancelBid marks a bid cancelled with a mandatory reason and recomputes
// the ranking. Bids on closed items are immutable.
func (s *Session) CancelBid(caller ParticipantInfo, bidID, reason string) error {
	return s.call(func() error {
		if err := s.requireAuctioneer(caller); err != nil {
			return err
		}
		if reason == "" {
			return validationf("a cancellation reason is required")
		}

		var it *itemState
		var bid *models.Bid
		for _, candidate := range s.state.items {
			for _, b := range candidate.bids {
				if b.ID == bidID {
					it, bid = candidate, b
					break
				}
			}
		}
		if bid == nil || bid.Status == models.BidStatusCancelled {
			return notFoundf("bid %s not found or already cancelled", bidID)
		}
		if it.item.Status == models.ItemStatusClosed {
			return conflictf("item %d is closed; its bids are immutable", it.item.Number)
		}

		if err := s.audit.RecordBidCancelled(bidID, reason); err != nil {
			log.Printf("engine: cancel write failed for tender %s: %v", s.id, err)
			return internalf("cancellation could not be recorded")
		}

		bid.Status = models.BidStatusCancelled
		bid.CancelReason = reason
		s.recordEvent(models.EventBidCancelled, it.item.ID, fmt.Sprintf("bid %s: %s", bidID, reason))
		s.systemNotice(fmt.Sprintf("Bid cancelled by the auctioneer. Reason: %s", reason))
		s.broadcast(EventBidCancelled, CancelDelta{
			Bid:  bidView(bid, it.item.Quantity, 0),
			Item: it.view(),
		})
		return nil
	})
}

// Suspend halts the session: all clocks stop and bids are rejected until
// the auctioneer resumes.
func (s *Session) Suspend(caller ParticipantInfo, reason string) error {
	return s.call(func() error {
		if err := s.requireAuctioneer(caller); err != nil {
			return err
		}
		if s.state.phase != PhaseLive {
			return phasef("session is %s and cannot be suspended", s.state.phase)
		}
		s.state.phase = PhaseSuspended
		s.state.suspendReason = reason
		if cur := s.state.currentItem(); cur != nil {
			s.stopTimer(cur)
		}
		s.recordEvent(models.EventSessionSuspended, "", reason)
		s.systemNotice(fmt.Sprintf("Session suspended by the auctioneer. Reason: %s", reason))
		s.broadcastSessionPhase()
		return nil
	})
}

// Resume returns a suspended session to LIVE. The item that was in dispute
// reopens with a fresh quiet period, regardless of whether it was already
// in its closing window when suspended.
func (s *Session) Resume(caller ParticipantInfo) error {
	return s.call(func() error {
		if err := s.requireAuctioneer(caller); err != nil {
			return err
		}
		if s.state.phase != PhaseSuspended {
			return phasef("session is %s, not suspended", s.state.phase)
		}
		s.state.phase = PhaseLive
		s.state.suspendReason = ""
		if cur := s.state.currentItem(); cur != nil {
			cur.item.Status = models.ItemStatusOpen
			s.scheduleQuiet(cur)
		}
		s.recordEvent(models.EventSessionResumed, "", "")
		s.systemNotice("Session resumed.")
		s.broadcastSessionPhase()
		if cur := s.state.currentItem(); cur != nil {
			s.broadcastPhase(cur)
		}
		return nil
	})
}

// Snapshot assembles the full session state through the actor, so it is
// consistent with the delta stream.
func (s *Session) Snapshot() (*Snapshot, error) {
	var snap *Snapshot
	err := s.call(func() error {
		snap = s.state.snapshot()
		return nil
	})
	return snap, err
}

// ---- internal helpers, all running inside the actor goroutine ----

func (s *Session) requireAuctioneer(p ParticipantInfo) error {
	if p.Role != RoleAuctioneer {
		log.Printf("engine: privileged action denied for participant %s on tender %s", p.ID, s.id)
		return authorizationf("only the auctioneer may perform this action")
	}
	return nil
}

func (s *Session) positionOf(it *itemState, bid *models.Bid) int {
	for _, rb := range ranking.Rank(it.bids) {
		if rb.Bid.ID == bid.ID {
			return rb.Position
		}
	}
	return 0
}

// closeItem is shared by the timer expiry and the manual close. The winner
// is the best active bid at this instant; the recompute is cross-checked
// against the bid log before anything is persisted.
func (s *Session) closeItem(it *itemState) {
	winner := ranking.BestActive(it.bids)
	if !s.rankingConsistent(it, winner) {
		s.failSession(fmt.Sprintf("ranking mismatch on item %d", it.item.Number))
		return
	}

	s.stopTimer(it)
	it.item.Status = models.ItemStatusClosed
	now := time.Now()
	it.item.ClosedAt = &now
	it.winner = winner
	if winner != nil {
		id := winner.ID
		it.item.WinningBidID = &id
		it.item.WinningValue = decimal.NewNullDecimal(winner.Value)
		it.item.WinnerSupplier = winner.SupplierName
	}

	if err := s.audit.RecordItemClosed(&it.item); err != nil {
		log.Printf("engine: item close write failed for tender %s: %v", s.id, err)
	}
	if s.state.currentItemID == it.item.ID {
		s.state.currentItemID = ""
	}
	s.recordEvent(models.EventItemClosed, it.item.ID, closeDetail(winner))

	if winner != nil {
		s.systemNotice(fmt.Sprintf("Item %d closed. Best offer: %s by %s.",
			it.item.Number, winner.Value, ranking.MaskSupplier(winner.SupplierName)))
	} else {
		s.systemNotice(fmt.Sprintf("Item %d closed with no valid bids.", it.item.Number))
	}
	s.broadcastPhase(it)

	if s.allItemsClosed() {
		s.state.phase = PhaseClosed
		s.recordEvent(models.EventSessionClosed, "", "")
		s.systemNotice("All items closed. Dispute session finished.")
		s.broadcastSessionPhase()
	}
}

func closeDetail(winner *models.Bid) string {
	if winner == nil {
		return "no valid bids"
	}
	return fmt.Sprintf("winner bid %s value %s supplier %s", winner.ID, winner.Value, winner.SupplierID)
}

func (s *Session) allItemsClosed() bool {
	for _, it := range s.state.items {
		if it.item.Status != models.ItemStatusClosed {
			return false
		}
	}
	return true
}

// rankingConsistent double-checks BestActive against a plain scan of the
// bid history. A mismatch means in-memory state diverged from the log.
func (s *Session) rankingConsistent(it *itemState, winner *models.Bid) bool {
	var want *models.Bid
	for _, b := range it.bids {
		if b.Status != models.BidStatusActive {
			continue
		}
		if want == nil || b.Value.LessThan(want.Value) ||
			(b.Value.Equal(want.Value) && b.Sequence < want.Sequence) {
			want = b
		}
	}
	return want == winner
}

// failSession tears the session down after a detected inconsistency. The
// in-memory state is not patched; the next join rebuilds from the durable
// log.
func (s *Session) failSession(detail string) {
	log.Printf("engine: fatal inconsistency on tender %s: %s", s.id, detail)
	s.broadcast(EventError, BidError{Kind: string(KindInternal), Message: "session state is being rebuilt; please rejoin"})
	if s.onFatal != nil {
		go s.onFatal(s.id)
	}
}

func (s *Session) systemNotice(text string) {
	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		TenderID:  s.id,
		Kind:      models.MessageKindSystem,
		Sender:    models.SenderSystem,
		Body:      text,
		CreatedAt: time.Now(),
	}
	if err := s.audit.RecordChat(msg); err != nil {
		log.Printf("engine: notice write failed for tender %s: %v", s.id, err)
	}
	s.state.chat = append(s.state.chat, msg)
	s.broadcast(EventNotice, messageView(msg))
}

func (s *Session) recordEvent(eventType, itemID, detail string) {
	ev := &models.SessionEvent{
		ID:        uuid.NewString(),
		TenderID:  s.id,
		ItemID:    itemID,
		Type:      eventType,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.audit.RecordEvent(ev); err != nil {
		log.Printf("engine: event write failed for tender %s: %v", s.id, err)
	}
}

func (s *Session) broadcast(eventType string, data interface{}) {
	s.hub.Broadcast(s.id, ws.WSMessage{Type: eventType, Data: data})
}

func (s *Session) broadcastPhase(it *itemState) {
	pc := PhaseChange{
		ItemID:       it.item.ID,
		ItemStatus:   it.item.Status,
		SessionPhase: s.state.phase,
		InRandom:     it.item.Status == models.ItemStatusInRandomClose,
	}
	if it.item.Status == models.ItemStatusOpen {
		deadline := it.quietDeadline
		pc.QuietDeadline = &deadline
	}
	if it.winner != nil {
		w := bidView(it.winner, it.item.Quantity, 1)
		pc.Winner = &w
	}
	s.broadcast(EventPhaseChange, pc)
}

func (s *Session) broadcastSessionPhase() {
	s.broadcast(EventSessionState, PhaseChange{SessionPhase: s.state.phase})
}
