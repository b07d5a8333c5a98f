package ranking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
)

// RankedBid is an active bid with its 1-based position in the item ranking.
type RankedBid struct {
	Bid      *models.Bid
	Position int
}

// BestActive returns the active bid with the lowest value; ties are broken
// by the lowest sequence (earliest acceptance). Returns nil when the item
// has no active bids. Recomputed from scratch on every call so cancelled
// bids fall out of consideration without bookkeeping.
func BestActive(bids []*models.Bid) *models.Bid {
	var best *models.Bid
	for _, b := range bids {
		if !b.Active() {
			continue
		}
		if best == nil || less(b, best) {
			best = b
		}
	}
	return best
}

// Rank returns the active bids ordered ascending by (value, sequence) with
// 1-based positions assigned.
func Rank(bids []*models.Bid) []RankedBid {
	active := make([]*models.Bid, 0, len(bids))
	for _, b := range bids {
		if b.Active() {
			active = append(active, b)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		return less(active[i], active[j])
	})

	ranked := make([]RankedBid, len(active))
	for i, b := range active {
		ranked[i] = RankedBid{Bid: b, Position: i + 1}
	}
	return ranked
}

// Improves reports whether value would beat the current best active bid.
// The opening offer on an item with no active bids always improves.
func Improves(bids []*models.Bid, value decimal.Decimal) bool {
	best := BestActive(bids)
	if best == nil {
		return true
	}
	return value.LessThan(best.Value)
}

func less(a, b *models.Bid) bool {
	switch a.Value.Cmp(b.Value) {
	case -1:
		return true
	case 1:
		return false
	default:
		return a.Sequence < b.Sequence
	}
}
