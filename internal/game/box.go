package game

import (
	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/ledger"
)

// rollTier maps a uniform [0,100) roll to a reward tier. Cumulative
// odds: basic 60%, common 25%, rare 10%, epic 4%, legendary 1%.
func rollTier(roll float64) catalog.Tier {
	switch {
	case roll > 99:
		return catalog.TierLegendary
	case roll > 95:
		return catalog.TierEpic
	case roll > 85:
		return catalog.TierRare
	case roll > 60:
		return catalog.TierCommon
	default:
		return catalog.TierBasic
	}
}

// BoxResult reports a box opening: the rolled tier, the won catalog
// entry and the uid of the inventory item created for it.
type BoxResult struct {
	Box     catalog.Entry `json:"box"`
	Tier    catalog.Tier  `json:"tier"`
	Won     catalog.Entry `json:"won"`
	ItemUID string        `json:"item_uid"`
}

// OpenBox debits the box price and awards one random item of the box's
// target category. The tier roll and the candidate check happen before
// any state mutates, so a catalog gap surfaces as ErrDataIntegrity with
// nothing spent.
func (e *Engine) OpenBox(catalogID string) (*BoxResult, error) {
	box, ok := e.Catalog.Get(catalog.CategoryBox, catalogID)
	if !ok {
		return nil, ErrInvalidState
	}
	now := e.Clock.Now()
	if e.State.TokenBalance < box.Price {
		return nil, ErrInsufficientBalance
	}

	tier := rollTier(e.Rand.Float64() * 100)
	candidates := e.Catalog.RollCandidates(box.Contains, tier)
	if len(candidates) == 0 {
		return nil, ErrDataIntegrity
	}
	idx := int(e.Rand.Float64() * float64(len(candidates)))
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	won := candidates[idx]

	if err := e.State.DebitToken(e.NewID(), now, "Purchase: "+box.Name, box.Price, ledger.KindTokenEvent); err != nil {
		return nil, err
	}
	it := e.addItem(won, now)
	return &BoxResult{Box: box, Tier: tier, Won: won, ItemUID: it.UID}, nil
}
