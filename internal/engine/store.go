package engine

import (
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
	"github.com/valleteclab/portaldcp-sub004/internal/ws"
)

// Store owns every live Session, one per tender. Creation happens on first
// join and is collapsed through singleflight so concurrent first-joins
// observe exactly one Session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	group    singleflight.Group

	tenders TenderSource
	audit   AuditLog
	hub     *ws.Hub
	opts    Options
}

func NewStore(tenders TenderSource, audit AuditLog, hub *ws.Hub, opts Options) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		tenders:  tenders,
		audit:    audit,
		hub:      hub,
		opts:     opts,
	}
}

// GetOrCreate returns the live session for the tender, creating it from
// master data (and replaying the durable log) when absent.
func (st *Store) GetOrCreate(tenderID string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[tenderID]
	st.mu.RUnlock()
	if ok {
		return sess, nil
	}

	v, err, _ := st.group.Do(tenderID, func() (interface{}, error) {
		st.mu.RLock()
		if sess, ok := st.sessions[tenderID]; ok {
			st.mu.RUnlock()
			return sess, nil
		}
		st.mu.RUnlock()
		return st.create(tenderID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (st *Store) Get(tenderID string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[tenderID]
	if !ok {
		return nil, notFoundf("no live session for tender %s", tenderID)
	}
	return sess, nil
}

// Remove shuts a session down and forgets it. The next GetOrCreate rebuilds
// it from the durable log.
func (st *Store) Remove(tenderID string) {
	st.mu.Lock()
	sess, ok := st.sessions[tenderID]
	if ok {
		delete(st.sessions, tenderID)
	}
	st.mu.Unlock()
	if ok {
		sess.stop()
		log.Printf("engine: session removed for tender %s", tenderID)
	}
}

func (st *Store) create(tenderID string) (*Session, error) {
	tender, err := st.tenders.TenderForDispute(tenderID)
	if err != nil {
		return nil, notFoundf("tender %s not found", tenderID)
	}
	if tender.Mode != models.DisputeModeOpen {
		return nil, conflictf("tender %s uses %s dispute mode; only OPEN is supported", tenderID, tender.Mode)
	}

	state := newSessionState(*tender)
	if err := st.replay(state); err != nil {
		return nil, err
	}

	sess := newSession(state, st.hub, st.audit, st.opts, st.Remove)
	st.mu.Lock()
	st.sessions[tenderID] = sess
	st.mu.Unlock()
	log.Printf("engine: session created for tender %s (%d items)", tenderID, len(state.items))
	return sess, nil
}

// replay restores bid history, chat and sequence counters from the durable
// log, so a restarted process does not lose the room. Items already awarded
// in master data stay closed with their recorded winner.
func (st *Store) replay(state *sessionState) error {
	bids, err := st.audit.BidsForTender(state.tender.ID)
	if err != nil {
		return internalf("replaying bids for tender %s: %v", state.tender.ID, err)
	}
	for _, bid := range bids {
		it := state.itemsByID[bid.ItemID]
		if it == nil {
			continue
		}
		it.bids = append(it.bids, bid)
		if bid.Sequence >= it.nextSeq {
			it.nextSeq = bid.Sequence + 1
		}
	}

	for _, it := range state.items {
		src := it.item
		if src.WinningBidID != nil || src.ClosedAt != nil {
			it.item.Status = models.ItemStatusClosed
			for _, b := range it.bids {
				if src.WinningBidID != nil && b.ID == *src.WinningBidID {
					it.winner = b
				}
			}
		}
	}

	chat, err := st.audit.ChatForTender(state.tender.ID)
	if err != nil {
		return internalf("replaying chat for tender %s: %v", state.tender.ID, err)
	}
	state.chat = chat
	return nil
}
