package game

import (
	"time"

	"miner-tycoon/internal/catalog"
)

// Get returns the item for a uid.
func (s *State) Get(uid string) (*Item, bool) {
	it, ok := s.Inventory[uid]
	return it, ok
}

// ChildrenOf returns every item whose parent is uid. The index is
// recomputed on demand; inventory sizes here never justify a denormalized
// lookup.
func (s *State) ChildrenOf(uid string) []*Item {
	out := []*Item{}
	for _, it := range s.Inventory {
		if it.ParentUID == uid {
			out = append(out, it)
		}
	}
	return out
}

// Rooms returns every room in the inventory.
func (s *State) Rooms() []*Item {
	out := []*Item{}
	for _, it := range s.Inventory {
		if it.Category == catalog.CategoryRoom {
			out = append(out, it)
		}
	}
	return out
}

// RentTimeLeft is how long a room's current rent cycle still runs.
// Negative once the cycle has lapsed.
func (s *State) RentTimeLeft(room *Item, now time.Time) time.Duration {
	return room.LastRentSettledAt.Add(RentCycleDuration).Sub(now)
}

// IsActive is the single eligibility predicate behind every aggregate
// computation: the miner sits on a shelf, the shelf sits in a room, the
// room is powered with rent time remaining, and the miner has health
// left.
func (s *State) IsActive(miner *Item, now time.Time) bool {
	if miner.Category != catalog.CategoryMiner || miner.ParentUID == "" {
		return false
	}
	shelf, ok := s.Inventory[miner.ParentUID]
	if !ok || shelf.Category != catalog.CategoryShelf || shelf.ParentUID == "" {
		return false
	}
	room, ok := s.Inventory[shelf.ParentUID]
	if !ok || room.Category != catalog.CategoryRoom {
		return false
	}
	if !room.Powered || s.RentTimeLeft(room, now) <= 0 {
		return false
	}
	return miner.Health > 0
}
