package game

import (
	"fmt"
	"time"

	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/ledger"
)

// healthDecayPerSecond drains a continuously active miner from 100 to 0
// in exactly 30 days (3.33 points per day).
const healthDecayPerSecond = 100.0 / (30 * 24 * 60 * 60)

// autoPayTiers are the room tiers that can settle rent automatically.
var autoPayTiers = map[catalog.Tier]bool{
	catalog.TierRare:      true,
	catalog.TierEpic:      true,
	catalog.TierLegendary: true,
}

// TickDecay advances miner health by the wall-clock time elapsed since
// each miner's last update. Only miners under a powered room decay;
// everything else just has its timestamp refreshed so powered-off time
// never counts against health. Idempotent at zero elapsed time.
//
// Returns one equipment-failure event per miner that crossed to zero
// health this tick.
func (e *Engine) TickDecay(now time.Time) []Event {
	events := []Event{}
	for _, it := range e.State.Inventory {
		if it.Category != catalog.CategoryMiner {
			continue
		}
		if it.LastHealthUpdateAt.IsZero() {
			it.Health = 100
			it.LastHealthUpdateAt = now
			continue
		}
		if !e.decayEligible(it) {
			it.LastHealthUpdateAt = now
			continue
		}
		elapsed := now.Sub(it.LastHealthUpdateAt).Seconds()
		if elapsed <= 0 {
			continue
		}
		newHealth := it.Health - elapsed*healthDecayPerSecond
		if newHealth < 0 {
			newHealth = 0
		}
		if it.Health > 0 && newHealth <= 0 {
			events = append(events, Event{
				Message:  e.failureMessage(it),
				Severity: SeverityError,
			})
		}
		it.Health = newHealth
		it.LastHealthUpdateAt = now
	}
	return events
}

// decayEligible: installed on a shelf whose room is powered. Rent lapse
// is handled by the power flag, which TickRent clears within a second.
func (e *Engine) decayEligible(miner *Item) bool {
	if miner.ParentUID == "" {
		return false
	}
	shelf, ok := e.State.Inventory[miner.ParentUID]
	if !ok || shelf.ParentUID == "" {
		return false
	}
	room, ok := e.State.Inventory[shelf.ParentUID]
	return ok && room.Category == catalog.CategoryRoom && room.Powered
}

func (e *Engine) failureMessage(miner *Item) string {
	name := "A miner"
	if entry, ok := e.entry(miner); ok {
		name = entry.Name
	}
	if shelf, ok := e.State.Inventory[miner.ParentUID]; ok {
		if room, ok := e.State.Inventory[shelf.ParentUID]; ok {
			if roomEntry, ok := e.entry(room); ok {
				return fmt.Sprintf("%s in %s overheated and stopped working", name, roomEntry.Name)
			}
		}
	}
	return fmt.Sprintf("%s overheated and stopped working", name)
}

// TickRent settles every room whose 12-hour cycle has lapsed. Rooms of an
// auto-pay tier with auto-pay enabled and an affordable rent are settled
// from the token balance; every other lapsed room loses power. An
// unaffordable auto-pay stays enabled so it settles once the balance
// recovers.
func (e *Engine) TickRent(now time.Time) {
	for _, room := range e.State.Rooms() {
		if room.LastRentSettledAt.IsZero() {
			// First-run grace.
			room.LastRentSettledAt = now
			room.Powered = true
			continue
		}
		if e.State.RentTimeLeft(room, now) > 0 {
			continue
		}
		entry, ok := e.entry(room)
		if !ok || entry.RentCost <= 0 {
			continue
		}
		if autoPayTiers[entry.Tier] && room.AutoPay && e.State.TokenBalance >= entry.RentCost {
			desc := fmt.Sprintf("Auto rent: %s", entry.Name)
			if err := e.State.DebitToken(e.NewID(), now, desc, entry.RentCost, ledger.KindDebit); err == nil {
				room.LastRentSettledAt = now
				room.Powered = true
				continue
			}
		}
		room.Powered = false
	}
}
