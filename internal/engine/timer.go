package engine

import (
	"math/rand"
	"time"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
)

// RandSource provides the randomness for sampling the closing window.
// Injectable so tests can pin the sampled duration.
type RandSource interface {
	// Intn returns a random integer in [0, n).
	Intn(n int) int
}

type systemRand struct{}

func (systemRand) Intn(n int) int { return rand.Intn(n) }

// scheduleQuiet arms (or re-arms) the fixed quiet-period clock for an open
// item. Any previously scheduled expiry is invalidated by the generation
// bump before the new timer starts.
func (s *Session) scheduleQuiet(it *itemState) {
	s.stopTimer(it)
	it.gen++
	gen := it.gen
	it.quietDeadline = time.Now().Add(s.opts.QuietPeriod)
	it.timer = time.AfterFunc(s.opts.QuietPeriod, func() {
		s.do(func() { s.onTimerExpired(it.item.ID, gen) })
	})
}

// scheduleRandom samples the closing window once and arms it. The sampled
// duration is never re-drawn and never leaves the server.
func (s *Session) scheduleRandom(it *itemState) {
	s.stopTimer(it)
	it.gen++
	gen := it.gen
	it.quietDeadline = time.Time{}
	d := s.sampleRandomWindow()
	it.timer = time.AfterFunc(d, func() {
		s.do(func() { s.onTimerExpired(it.item.ID, gen) })
	})
}

func (s *Session) stopTimer(it *itemState) {
	it.gen++
	if it.timer != nil {
		it.timer.Stop()
		it.timer = nil
	}
}

func (s *Session) sampleRandomWindow() time.Duration {
	min, max := s.opts.RandomCloseMin, s.opts.RandomCloseMax
	if max <= min {
		return min
	}
	return min + time.Duration(s.opts.Rand.Intn(int(max-min)+1))
}

// onTimerExpired runs inside the actor loop. A stale generation means the
// timer was reset or cancelled after this expiry was scheduled.
func (s *Session) onTimerExpired(itemID string, gen int) {
	it := s.state.itemsByID[itemID]
	if it == nil || gen != it.gen {
		return
	}
	if s.state.phase != PhaseLive {
		return
	}

	switch it.item.Status {
	case models.ItemStatusOpen:
		it.item.Status = models.ItemStatusInRandomClose
		s.scheduleRandom(it)
		s.recordEvent(models.EventRandomWindow, it.item.ID, "")
		s.systemNotice("Random closing window started. The item may close at any moment.")
		s.broadcastPhase(it)
	case models.ItemStatusInRandomClose:
		s.closeItem(it)
	}
}
