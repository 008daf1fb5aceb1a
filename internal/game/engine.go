package game

import (
	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/store"
)

// Engine applies every action and scheduler transition to one session
// state. It is not safe for concurrent use; callers serialize access
// (the session service holds a single mutex).
type Engine struct {
	State   *State
	Catalog *catalog.Catalog
	Clock   Clock
	Rand    Rand
	NewID   func() string

	// Two-phase demolition: the proposed room uid, cleared on confirm.
	pendingDemolition string
}

func NewEngine(cat *catalog.Catalog, st *State, clock Clock, rnd Rand) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if rnd == nil {
		rnd = DefaultRand()
	}
	return &Engine{
		State:   st,
		Catalog: cat,
		Clock:   clock,
		Rand:    rnd,
		NewID:   store.NewID,
	}
}

// entry resolves an inventory item's catalog entry.
func (e *Engine) entry(it *Item) (catalog.Entry, bool) {
	return e.Catalog.Get(it.Category, it.CatalogID)
}
