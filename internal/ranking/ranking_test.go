package ranking

import (
	"math/rand"
	"testing"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
)

func bid(id string, value string, seq int, status string) *models.Bid {
	return &models.Bid{
		ID:       id,
		Value:    decimal.RequireFromString(value),
		Sequence: seq,
		Status:   status,
	}
}

func TestBestActive_LowestValueWins(t *testing.T) {
	bids := []*models.Bid{
		bid("a", "100.00", 1, models.BidStatusActive),
		bid("b", "90.00", 2, models.BidStatusActive),
		bid("c", "95.00", 3, models.BidStatusActive),
	}

	best := BestActive(bids)
	check.NotNil(t, best)
	check.Equal(t, "b", best.ID)
}

func TestBestActive_TieBrokenByEarliestSequence(t *testing.T) {
	bids := []*models.Bid{
		bid("late", "80.00", 5, models.BidStatusActive),
		bid("early", "80.00", 2, models.BidStatusActive),
	}

	best := BestActive(bids)
	check.Equal(t, "early", best.ID)
}

func TestBestActive_IgnoresCancelled(t *testing.T) {
	bids := []*models.Bid{
		bid("a", "70.00", 1, models.BidStatusCancelled),
		bid("b", "90.00", 2, models.BidStatusActive),
	}

	best := BestActive(bids)
	check.Equal(t, "b", best.ID)
}

func TestBestActive_Empty(t *testing.T) {
	check.Nil(t, BestActive(nil))
	check.Nil(t, BestActive([]*models.Bid{
		bid("a", "70.00", 1, models.BidStatusCancelled),
	}))
}

func TestRank_PositionsAscendingByValueThenSequence(t *testing.T) {
	bids := []*models.Bid{
		bid("a", "100.00", 1, models.BidStatusActive),
		bid("b", "80.00", 4, models.BidStatusActive),
		bid("c", "80.00", 3, models.BidStatusActive),
		bid("d", "95.00", 2, models.BidStatusCancelled),
	}

	ranked := Rank(bids)
	check.Equal(t, 3, len(ranked))
	check.Equal(t, "c", ranked[0].Bid.ID)
	check.Equal(t, "b", ranked[1].Bid.ID)
	check.Equal(t, "a", ranked[2].Bid.ID)
	check.Equal(t, 1, ranked[0].Position)
	check.Equal(t, 2, ranked[1].Position)
	check.Equal(t, 3, ranked[2].Position)
}

func TestImproves(t *testing.T) {
	var bids []*models.Bid
	check.True(t, Improves(bids, decimal.RequireFromString("100.00")))

	bids = append(bids, bid("a", "90.00", 1, models.BidStatusActive))
	check.True(t, Improves(bids, decimal.RequireFromString("89.99")))
	check.False(t, Improves(bids, decimal.RequireFromString("90.00")))
	check.False(t, Improves(bids, decimal.RequireFromString("95.00")))
}

// BestActive must always agree with a naive minimum over active bids, for
// any interleaving of accepted and cancelled bids.
func TestBestActive_RandomSequences(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := rnd.Intn(30)
		bids := make([]*models.Bid, 0, n)
		for i := 0; i < n; i++ {
			status := models.BidStatusActive
			if rnd.Intn(4) == 0 {
				status = models.BidStatusCancelled
			}
			value := decimal.NewFromInt(int64(rnd.Intn(1000) + 1))
			bids = append(bids, &models.Bid{
				ID:       "b",
				Value:    value,
				Sequence: i + 1,
				Status:   status,
			})
		}

		best := BestActive(bids)

		var want *models.Bid
		for _, b := range bids {
			if !b.Active() {
				continue
			}
			if want == nil || b.Value.LessThan(want.Value) ||
				(b.Value.Equal(want.Value) && b.Sequence < want.Sequence) {
				want = b
			}
		}

		if want == nil {
			check.Nil(t, best)
			continue
		}
		check.NotNil(t, best)
		check.Equal(t, want.Sequence, best.Sequence)
		check.True(t, want.Value.Equal(best.Value))
	}
}

func TestMaskSupplier(t *testing.T) {
	check.Equal(t, "***0190", MaskSupplier("12345678000190"))
	check.Equal(t, "Dis***", MaskSupplier("Distribuidora"))
	check.Equal(t, "Acme", MaskSupplier("Acme"))
}
