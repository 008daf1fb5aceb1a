package game

import (
	"fmt"
	"time"

	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/ledger"
)

// RentCycleDuration is the window a single rent payment keeps a room
// powered.
const RentCycleDuration = 12 * time.Hour

// Item is one owned physical unit. Containment is modeled with a
// non-owning parent back-reference: a miner's parent is a shelf, a
// shelf's parent is a room, a room has no parent.
type Item struct {
	UID        string           `json:"uid"`
	CatalogID  string           `json:"catalog_id"`
	Category   catalog.Category `json:"category"`
	ParentUID  string           `json:"parent_uid,omitempty"`
	AcquiredAt time.Time        `json:"acquired_at"`

	// Room only.
	LastRentSettledAt time.Time `json:"last_rent_settled_at,omitempty"`
	Powered           bool      `json:"powered,omitempty"`
	AutoPay           bool      `json:"auto_pay,omitempty"`

	// Miner only. Health in [0,100]; a zero LastHealthUpdateAt marks a
	// migrated item whose health has never been tracked.
	Health             float64   `json:"health,omitempty"`
	LastHealthUpdateAt time.Time `json:"last_health_update_at,omitempty"`
}

// Referral holds the local counters of the referral program. There is no
// server-side propagation; the code is generated once and immutable.
type Referral struct {
	Code        string  `json:"code"`
	Level1      int     `json:"level1_users"`
	Level2      int     `json:"level2_users"`
	Level3      int     `json:"level3_users"`
	Balance     float64 `json:"balance"`
	TotalEarned float64 `json:"total_earned"`
}

// State is the aggregate root: wallet, inventory forest, identity and
// referral counters. One instance per process, mutated only through the
// engine's action entry points.
type State struct {
	ledger.Wallet

	Inventory        map[string]*Item `json:"inventory"`
	Username         string           `json:"username"`
	AccountCreatedAt time.Time        `json:"account_created_at"`
	Referral         Referral         `json:"referral"`
}

const (
	starterFiat  = 1_000_000.0
	starterToken = 1_000_000.0
)

// NewState returns a freshly defaulted session.
func NewState(now time.Time, r Rand) *State {
	return &State{
		Wallet: ledger.Wallet{
			FiatBalance:  starterFiat,
			TokenBalance: starterToken,
		},
		Inventory:        map[string]*Item{},
		Username:         "CEO",
		AccountCreatedAt: now,
		Referral:         Referral{Code: NewReferralCode(r)},
	}
}

// NewReferralCode returns "USER-" followed by five digits.
func NewReferralCode(r Rand) string {
	return fmt.Sprintf("USER-%d", 10000+int(r.Float64()*90000))
}

// Migrate back-fills runtime fields absent from older snapshots: miners
// that were never health-tracked start at full health.
func (s *State) Migrate(now time.Time) {
	if s.Inventory == nil {
		s.Inventory = map[string]*Item{}
	}
	for _, it := range s.Inventory {
		if it.Category == catalog.CategoryMiner && it.LastHealthUpdateAt.IsZero() {
			it.Health = 100
			it.LastHealthUpdateAt = now
		}
	}
}

// GrantStarterKit seeds a powered basic room with a basic shelf installed
// when the inventory is empty. Granted at most once.
func (s *State) GrantStarterKit(now time.Time, newID func() string) {
	if len(s.Inventory) > 0 {
		return
	}
	room := &Item{
		UID:               newID(),
		CatalogID:         "room_basic",
		Category:          catalog.CategoryRoom,
		AcquiredAt:        now,
		LastRentSettledAt: now,
		Powered:           true,
	}
	shelf := &Item{
		UID:        newID(),
		CatalogID:  "shelf_basic",
		Category:   catalog.CategoryShelf,
		ParentUID:  room.UID,
		AcquiredAt: now,
	}
	s.Inventory[room.UID] = room
	s.Inventory[shelf.UID] = shelf
	s.Append(newID(), now, "Starter kit: free room and rack", 0, ledger.KindCredit)
}
