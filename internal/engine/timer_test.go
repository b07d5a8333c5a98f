package engine

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
	"github.com/valleteclab/portaldcp-sub004/internal/ws"
)

// Short clocks so the full OPEN -> IN_RANDOM_CLOSE -> CLOSED walk fits in a
// test. min == max pins the sampled window without touching the RandSource.
func fastOpts() Options {
	return Options{
		QuietPeriod:    30 * time.Millisecond,
		RandomCloseMin: 40 * time.Millisecond,
		RandomCloseMax: 40 * time.Millisecond,
		Rand:           fixedRand{},
	}
}

func TestQuietExpiryEntersRandomWindowThenCloses(t *testing.T) {
	_, sess, audit := liveSession(t, fastOpts())

	client := ws.NewClient(nil, 64)
	check.Nil(t, sess.Join(supplierA, client))

	winner, err := sess.SubmitBid(supplierA, "item-1", dec("100.00"), "")
	check.Nil(t, err)

	msg := nextEvent(t, client, EventPhaseChange, time.Second)
	pc := msg.Data.(PhaseChange)
	check.Equal(t, models.ItemStatusInRandomClose, pc.ItemStatus)
	check.True(t, pc.InRandom)
	check.Nil(t, pc.QuietDeadline) // the sampled duration never leaves the server

	msg = nextEvent(t, client, EventPhaseChange, time.Second)
	pc = msg.Data.(PhaseChange)
	check.Equal(t, models.ItemStatusClosed, pc.ItemStatus)
	check.NotNil(t, pc.Winner)
	check.Equal(t, winner.ID, pc.Winner.ID)

	audit.mu.Lock()
	defer audit.mu.Unlock()
	check.Equal(t, 1, len(audit.closedItems))
	check.Equal(t, models.ItemStatusClosed, audit.closedItems[0].Status)
}

func TestBidDuringRandomWindowReopensItem(t *testing.T) {
	_, sess, _ := liveSession(t, Options{
		QuietPeriod:    25 * time.Millisecond,
		RandomCloseMin: 500 * time.Millisecond,
		RandomCloseMax: 500 * time.Millisecond,
		Rand:           fixedRand{},
	})

	client := ws.NewClient(nil, 64)
	check.Nil(t, sess.Join(supplierA, client))

	_, err := sess.SubmitBid(supplierA, "item-1", dec("100.00"), "")
	check.Nil(t, err)

	msg := nextEvent(t, client, EventPhaseChange, time.Second)
	check.True(t, msg.Data.(PhaseChange).InRandom)

	// A bid while the window runs cancels it and restarts the quiet period.
	_, err = sess.SubmitBid(supplierB, "item-1", dec("90.00"), "")
	check.Nil(t, err)

	msg = nextEvent(t, client, EventPhaseChange, time.Second)
	pc := msg.Data.(PhaseChange)
	check.Equal(t, models.ItemStatusOpen, pc.ItemStatus)
	check.False(t, pc.InRandom)
	check.NotNil(t, pc.QuietDeadline)

	snap, err := sess.Snapshot()
	check.Nil(t, err)
	check.Equal(t, models.ItemStatusOpen, snap.Items[0].Status)
}

func TestBidResetsQuietPeriod(t *testing.T) {
	_, sess, _ := liveSession(t, Options{
		QuietPeriod:    60 * time.Millisecond,
		RandomCloseMin: time.Minute,
		RandomCloseMax: time.Minute,
		Rand:           fixedRand{},
	})

	first, err := sess.SubmitBid(supplierA, "item-1", dec("100.00"), "")
	check.Nil(t, err)

	time.Sleep(35 * time.Millisecond)
	second, err := sess.SubmitBid(supplierB, "item-1", dec("90.00"), "")
	check.Nil(t, err)

	// The first bid's deadline has passed, but the reset kept the item open.
	time.Sleep(35 * time.Millisecond)
	snap, err := sess.Snapshot()
	check.Nil(t, err)
	check.Equal(t, models.ItemStatusOpen, snap.Items[0].Status)
	check.True(t, second.SubmittedAt.After(first.SubmittedAt) || second.SubmittedAt.Equal(first.SubmittedAt))
}

func TestSuspendStopsTheClock(t *testing.T) {
	_, sess, _ := liveSession(t, fastOpts())

	_, err := sess.SubmitBid(supplierA, "item-1", dec("100.00"), "")
	check.Nil(t, err)
	check.Nil(t, sess.Suspend(auctioneer, "connectivity check"))

	// Long past quiet period + random window: nothing may fire while
	// suspended.
	time.Sleep(120 * time.Millisecond)
	snap, err := sess.Snapshot()
	check.Nil(t, err)
	check.Equal(t, PhaseSuspended, snap.Phase)
	check.Equal(t, models.ItemStatusOpen, snap.Items[0].Status)

	// Resume restarts the quiet period and the walk completes.
	check.Nil(t, sess.Resume(auctioneer))
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err = sess.Snapshot()
		check.Nil(t, err)
		if snap.Items[0].Status == models.ItemStatusClosed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("item never closed after resume; status %s", snap.Items[0].Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestManualCloseCancelsPendingTimer(t *testing.T) {
	_, sess, audit := liveSession(t, fastOpts())

	_, err := sess.SubmitBid(supplierA, "item-1", dec("100.00"), "")
	check.Nil(t, err)
	check.Nil(t, sess.CloseItem(auctioneer, "item-1"))

	time.Sleep(120 * time.Millisecond)

	// The expiry behind the stale generation must not close the item twice.
	audit.mu.Lock()
	defer audit.mu.Unlock()
	check.Equal(t, 1, len(audit.closedItems))
}

func TestSampleRandomWindowBounds(t *testing.T) {
	s := &Session{opts: Options{
		RandomCloseMin: 2 * time.Minute,
		RandomCloseMax: 30 * time.Minute,
		Rand:           fixedRand{},
	}}
	check.Equal(t, 2*time.Minute, s.sampleRandomWindow())

	s.opts.Rand = fixedRand{n: int(28 * time.Minute)}
	check.Equal(t, 30*time.Minute, s.sampleRandomWindow())

	s.opts.RandomCloseMax = s.opts.RandomCloseMin
	check.Equal(t, 2*time.Minute, s.sampleRandomWindow())
}
