package app

import (
	"math"
	"sort"
	"strings"

	"luxstay/internal/amenity"
	"luxstay/internal/domain"
	"luxstay/internal/pricing"
)

// Budget-gap reason codes.
const (
	ReasonNoMaxPrice = "no_max_price"
	ReasonNoPrice    = "no_price"
	ReasonUnder      = "under"
	ReasonOver       = "over"
)

// poolEpsilon nudges indoor-pool hotels ahead at equal price.
const poolEpsilon = 0.01

const defaultTopN = 5

// RankRequest is the budget filter input. A nil MaxPrice means no budget
// test: every card passes.
type RankRequest struct {
	Hotels   []domain.HotelCard
	MaxPrice *float64
	CheckIn  string
	CheckOut string
	TopN     int
}

// Rank filters cards to those at or under the nightly budget and sorts
// them deterministically: priced before unpriced, cheapest first with a
// small indoor-pool tie-break, name as the final key. The same order is
// applied whether or not a budget was given, so Considered is always a
// total order. Pure function: no external calls, idempotent.
func Rank(req RankRequest) domain.RankedResult {
	nights := pricing.Nights(req.CheckIn, req.CheckOut)
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	enriched := make([]domain.HotelCard, 0, len(req.Hotels))
	for _, h := range req.Hotels {
		card := h // copy; input cards are never mutated

		price := card.PricePerNight
		if price == nil && card.Raw != nil {
			if amt, ok := pricing.PerNight(card.Raw, nights); ok {
				p := amt.PerNight
				price = &p
				card.PricePerNight = price
				if card.Currency == "" {
					card.Currency = amt.Currency
				}
			}
		}

		card.Nights = nights
		card.HasIndoorPool = amenity.HasIndoorPool(card.Amenities)
		card.PassesBudget, card.BudgetGap, card.BudgetReason = budgetTest(price, req.MaxPrice)
		enriched = append(enriched, card)
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		return less(enriched[i], enriched[j])
	})

	under := make([]domain.HotelCard, 0, len(enriched))
	for _, h := range enriched {
		if h.PassesBudget {
			under = append(under, h)
		}
	}

	top := under
	if len(top) > topN {
		top = top[:topN]
	}

	return domain.RankedResult{
		Top:        top,
		Candidates: under,
		Considered: enriched,
		Meta: domain.RankMeta{
			TotalIn:     len(req.Hotels),
			UnderBudget: len(under),
			Nights:      nights,
			Unit:        "per_night",
		},
	}
}

// budgetTest fails closed: an unpriced card is never under budget unless
// no maximum was specified at all.
func budgetTest(price, maxPrice *float64) (bool, *float64, string) {
	if maxPrice == nil {
		return true, nil, ReasonNoMaxPrice
	}
	if price == nil {
		return false, nil, ReasonNoPrice
	}
	gap := math.Round((*maxPrice-*price)*100) / 100
	if *price <= *maxPrice {
		return true, &gap, ReasonUnder
	}
	return false, &gap, ReasonOver
}

// less implements the sort key (unpriced-last, pool-adjusted price, name).
func less(a, b domain.HotelCard) bool {
	ka, kb := sortPrice(a), sortPrice(b)
	if ka != kb {
		return ka < kb
	}
	return strings.Compare(a.Name, b.Name) < 0
}

func sortPrice(h domain.HotelCard) float64 {
	if h.PricePerNight == nil {
		return math.Inf(1)
	}
	p := *h.PricePerNight
	if h.HasIndoorPool {
		p -= poolEpsilon
	}
	return p
}
