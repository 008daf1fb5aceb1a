package game

import (
	"fmt"
	"testing"
	"time"

	"miner-tycoon/internal/catalog"
)

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type stubRand struct {
	vals []float64
	i    int
}

func (s *stubRand) Float64() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// newTestEngine builds an engine over a fresh starter session with a
// deterministic clock, random source and id generator.
func newTestEngine(t *testing.T, vals ...float64) (*Engine, *fakeClock) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog load: %v", err)
	}
	clk := &fakeClock{now: testStart}
	rnd := &stubRand{vals: vals}
	// The referral code draws from its own source so the stub sequence
	// lines up with the actions under test.
	st := NewState(clk.now, DefaultRand())
	eng := NewEngine(cat, st, clk, rnd)
	n := 0
	eng.NewID = func() string {
		n++
		return fmt.Sprintf("id-%04d", n)
	}
	st.GrantStarterKit(clk.now, eng.NewID)
	return eng, clk
}

func findByCatalogID(t *testing.T, e *Engine, id string) *Item {
	t.Helper()
	for _, it := range e.State.Inventory {
		if it.CatalogID == id {
			return it
		}
	}
	t.Fatalf("no inventory item with catalog id %s", id)
	return nil
}

// buyAndInstallMiner purchases a node_basic and installs it on the
// starter shelf, returning the miner item.
func buyAndInstallMiner(t *testing.T, e *Engine) *Item {
	t.Helper()
	res, err := e.Purchase(catalog.CategoryMiner, "node_basic")
	if err != nil {
		t.Fatalf("purchase miner: %v", err)
	}
	shelf := findByCatalogID(t, e, "shelf_basic")
	if err := e.Install(res.ItemUID, shelf.UID); err != nil {
		t.Fatalf("install miner: %v", err)
	}
	it, _ := e.State.Get(res.ItemUID)
	return it
}
