package game

import (
	"fmt"
	"strings"
	"time"

	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/ledger"
)

const (
	// RepairCost resets a miner to full health.
	RepairCost = 50.0
	// RepairHealthThreshold is the health at or below which an installed
	// miner counts as needing repair.
	RepairHealthThreshold = 20.0
	// DemolitionReward is credited when a room is demolished.
	DemolitionReward = 8.0
	// MinPoolCollect is the pending-pool threshold for collection.
	MinPoolCollect = 10.0
	// MaxUsernameLen bounds RenameUser.
	MaxUsernameLen = 12
)

// scrapValues are the fixed token credits for recycling an unlinked item.
var scrapValues = map[catalog.Category]float64{
	catalog.CategoryMiner: 20,
	catalog.CategoryRoom:  8,
	catalog.CategoryShelf: 4,
}

// addItem appends a new inventory item with category-appropriate runtime
// defaults.
func (e *Engine) addItem(entry catalog.Entry, now time.Time) *Item {
	it := &Item{
		UID:        e.NewID(),
		CatalogID:  entry.ID,
		Category:   entry.Category,
		AcquiredAt: now,
	}
	switch entry.Category {
	case catalog.CategoryRoom:
		it.Powered = true
		it.LastRentSettledAt = now
	case catalog.CategoryMiner:
		it.Health = 100
		it.LastHealthUpdateAt = now
	}
	e.State.Inventory[it.UID] = it
	return it
}

// PurchaseResult reports a direct purchase. Box is set when the bought
// entry was a box, in which case ItemUID is the won item.
type PurchaseResult struct {
	Entry   catalog.Entry `json:"entry"`
	ItemUID string        `json:"item_uid"`
	Box     *BoxResult    `json:"box,omitempty"`
}

// Purchase buys a catalog entry outright. Hidden non-special entries are
// unobtainable directly; buying a box opens it immediately.
func (e *Engine) Purchase(cat catalog.Category, catalogID string) (*PurchaseResult, error) {
	entry, ok := e.Catalog.Get(cat, catalogID)
	if !ok {
		return nil, ErrInvalidState
	}
	if entry.Category == catalog.CategoryBox {
		box, err := e.OpenBox(catalogID)
		if err != nil {
			return nil, err
		}
		return &PurchaseResult{Entry: entry, ItemUID: box.ItemUID, Box: box}, nil
	}
	if entry.Hidden && !entry.Special {
		return nil, ErrInvalidState
	}
	if entry.Price <= 0 {
		return nil, ErrInvalidState
	}
	now := e.Clock.Now()
	if err := e.State.DebitToken(e.NewID(), now, "Purchase: "+entry.Name, entry.Price, ledger.KindTokenEvent); err != nil {
		return nil, err
	}
	it := e.addItem(entry, now)
	return &PurchaseResult{Entry: entry, ItemUID: it.UID}, nil
}

// Install places an item into a container: miners onto shelves, shelves
// into rooms. Broken miners must be repaired first, and the container's
// slot capacity is enforced.
func (e *Engine) Install(itemUID, parentUID string) error {
	it, ok := e.State.Get(itemUID)
	if !ok {
		return ErrInvalidState
	}
	parent, ok := e.State.Get(parentUID)
	if !ok {
		return ErrInvalidState
	}
	switch {
	case it.Category == catalog.CategoryMiner && parent.Category == catalog.CategoryShelf:
	case it.Category == catalog.CategoryShelf && parent.Category == catalog.CategoryRoom:
	default:
		return ErrInvalidState
	}
	if it.Category == catalog.CategoryMiner && it.Health <= 0 {
		return ErrInvalidState
	}
	parentEntry, ok := e.entry(parent)
	if !ok {
		return ErrInvalidState
	}
	occupied := 0
	for _, child := range e.State.ChildrenOf(parentUID) {
		// Re-installing onto the current parent is a no-op, not a
		// capacity violation.
		if child.UID != itemUID {
			occupied++
		}
	}
	if occupied >= parentEntry.SlotCapacity {
		return ErrCapacityExceeded
	}
	it.ParentUID = parentUID
	return nil
}

// Uninstall detaches an item from its container. Shelves and rooms with
// children stay put until emptied.
func (e *Engine) Uninstall(itemUID string) error {
	it, ok := e.State.Get(itemUID)
	if !ok {
		return ErrInvalidState
	}
	if it.Category != catalog.CategoryMiner && len(e.State.ChildrenOf(itemUID)) > 0 {
		return ErrNotEmpty
	}
	it.ParentUID = ""
	return nil
}

// Recycle scraps an unlinked item for a fixed credit. Containers must be
// empty and anything installed must be uninstalled first, which forces a
// bottom-up teardown order.
func (e *Engine) Recycle(itemUID string) (float64, error) {
	it, ok := e.State.Get(itemUID)
	if !ok {
		return 0, ErrInvalidState
	}
	if it.ParentUID != "" {
		return 0, ErrNotEmpty
	}
	if len(e.State.ChildrenOf(itemUID)) > 0 {
		return 0, ErrNotEmpty
	}
	entry, _ := e.entry(it)
	value := scrapValues[it.Category]
	delete(e.State.Inventory, itemUID)
	e.State.CreditToken(e.NewID(), e.Clock.Now(), "Scrapped: "+entry.Name, value, ledger.KindTokenEvent)
	return value, nil
}

// DemolitionProposal is the first phase of demolishing a room; nothing
// mutates until the proposal is confirmed.
type DemolitionProposal struct {
	RoomUID  string  `json:"room_uid"`
	RoomName string  `json:"room_name"`
	Reward   float64 `json:"reward"`
}

// ProposeDemolition validates the room can be demolished and arms the
// confirmation step.
func (e *Engine) ProposeDemolition(roomUID string) (*DemolitionProposal, error) {
	room, ok := e.State.Get(roomUID)
	if !ok || room.Category != catalog.CategoryRoom {
		return nil, ErrInvalidState
	}
	if len(e.State.ChildrenOf(roomUID)) > 0 {
		return nil, ErrNotEmpty
	}
	entry, _ := e.entry(room)
	e.pendingDemolition = roomUID
	return &DemolitionProposal{RoomUID: roomUID, RoomName: entry.Name, Reward: DemolitionReward}, nil
}

// ConfirmDemolition executes a previously proposed demolition. The guards
// re-run because state may have changed between the phases.
func (e *Engine) ConfirmDemolition(roomUID string) (float64, error) {
	if e.pendingDemolition == "" || e.pendingDemolition != roomUID {
		return 0, ErrInvalidState
	}
	room, ok := e.State.Get(roomUID)
	if !ok || room.Category != catalog.CategoryRoom {
		e.pendingDemolition = ""
		return 0, ErrInvalidState
	}
	if len(e.State.ChildrenOf(roomUID)) > 0 {
		return 0, ErrNotEmpty
	}
	entry, _ := e.entry(room)
	delete(e.State.Inventory, roomUID)
	e.pendingDemolition = ""
	e.State.CreditToken(e.NewID(), e.Clock.Now(), "Demolished: "+entry.Name, DemolitionReward, ledger.KindCredit)
	return DemolitionReward, nil
}

// PayRent settles one room's rent cycle from the token balance.
func (e *Engine) PayRent(roomUID string) error {
	room, ok := e.State.Get(roomUID)
	if !ok || room.Category != catalog.CategoryRoom {
		return ErrInvalidState
	}
	entry, ok := e.entry(room)
	if !ok || entry.RentCost <= 0 {
		return ErrInvalidState
	}
	now := e.Clock.Now()
	if err := e.State.DebitToken(e.NewID(), now, "Rent: "+entry.Name, entry.RentCost, ledger.KindDebit); err != nil {
		return err
	}
	room.LastRentSettledAt = now
	room.Powered = true
	return nil
}

// BulkRentResult reports an atomic multi-room settlement.
type BulkRentResult struct {
	Tier  catalog.Tier `json:"tier"`
	Count int          `json:"count"`
	Total float64      `json:"total"`
}

// PayRentBulk settles every room of a tier that is not at a full cycle,
// all or nothing: if the summed rent exceeds the balance nothing is
// settled.
func (e *Engine) PayRentBulk(tier catalog.Tier) (*BulkRentResult, error) {
	now := e.Clock.Now()
	due := []*Item{}
	total := 0.0
	for _, room := range e.State.Rooms() {
		entry, ok := e.entry(room)
		if !ok || entry.Tier != tier || entry.RentCost <= 0 {
			continue
		}
		if left := e.State.RentTimeLeft(room, now); left <= 0 || left < RentCycleDuration {
			due = append(due, room)
			total += entry.RentCost
		}
	}
	if len(due) == 0 {
		return &BulkRentResult{Tier: tier}, nil
	}
	desc := fmt.Sprintf("Energy: %d rooms", len(due))
	if err := e.State.DebitToken(e.NewID(), now, desc, total, ledger.KindDebit); err != nil {
		return nil, err
	}
	for _, room := range due {
		room.LastRentSettledAt = now
		room.Powered = true
	}
	return &BulkRentResult{Tier: tier, Count: len(due), Total: total}, nil
}

// ToggleAutoPay flips a room's auto-pay flag. Only rare and better rooms
// support it.
func (e *Engine) ToggleAutoPay(roomUID string) (bool, error) {
	room, ok := e.State.Get(roomUID)
	if !ok || room.Category != catalog.CategoryRoom {
		return false, ErrInvalidState
	}
	entry, ok := e.entry(room)
	if !ok || !autoPayTiers[entry.Tier] {
		return false, ErrInvalidState
	}
	room.AutoPay = !room.AutoPay
	return room.AutoPay, nil
}

// Repair resets a miner to full health for a fixed token cost.
func (e *Engine) Repair(minerUID string) error {
	miner, ok := e.State.Get(minerUID)
	if !ok || miner.Category != catalog.CategoryMiner {
		return ErrInvalidState
	}
	now := e.Clock.Now()
	if err := e.State.DebitToken(e.NewID(), now, "Miner repair", RepairCost, ledger.KindTokenEvent); err != nil {
		return err
	}
	miner.Health = 100
	miner.LastHealthUpdateAt = now
	return nil
}

// Deposit converts external fiat to token at a fixed 1:1 rate.
func (e *Engine) Deposit(fiatAmount float64) error {
	if fiatAmount <= 0 {
		return ErrInvalidState
	}
	e.State.CreditToken(e.NewID(), e.Clock.Now(), "Deposit (fiat -> token)", fiatAmount, ledger.KindTokenEvent)
	return nil
}

// AccountAgeDays is the whole days elapsed since account creation.
func (e *Engine) AccountAgeDays(now time.Time) int {
	return int(now.Sub(e.State.AccountCreatedAt).Hours() / 24)
}

// WithdrawFeeRate is tiered by account age: 30% up to 10 days, 15% up to
// 20 days, then 5%.
func (e *Engine) WithdrawFeeRate(now time.Time) float64 {
	switch days := e.AccountAgeDays(now); {
	case days <= 10:
		return 0.30
	case days <= 20:
		return 0.15
	default:
		return 0.05
	}
}

// WithdrawResult reports the settled gross and the informational fee.
type WithdrawResult struct {
	Gross          float64 `json:"gross"`
	FeeRate        float64 `json:"fee_rate"`
	Fee            float64 `json:"fee"`
	Net            float64 `json:"net"`
	AccountAgeDays int     `json:"account_age_days"`
}

// Withdraw debits the gross amount from the fiat balance. The fee is
// computed for the net the user receives externally; it is not deducted
// from the in-system balance (observed product behavior, flagged for
// clarification, preserved here).
func (e *Engine) Withdraw(fiatAmount float64) (*WithdrawResult, error) {
	if fiatAmount <= 0 {
		return nil, ErrInvalidState
	}
	now := e.Clock.Now()
	if err := e.State.DebitFiat(e.NewID(), now, "Bank withdrawal", fiatAmount, ledger.KindDebit); err != nil {
		return nil, err
	}
	rate := e.WithdrawFeeRate(now)
	fee := fiatAmount * rate
	return &WithdrawResult{
		Gross:          fiatAmount,
		FeeRate:        rate,
		Fee:            fee,
		Net:            fiatAmount - fee,
		AccountAgeDays: e.AccountAgeDays(now),
	}, nil
}

// ExchangeResult reports a full token sale.
type ExchangeResult struct {
	Sold  float64 `json:"sold"`
	Gross float64 `json:"gross"`
	Fee   float64 `json:"fee"`
	Net   float64 `json:"net"`
}

// ExchangeAll sells the entire token balance for fiat at tokenPrice,
// minus the flat exchange fee.
func (e *Engine) ExchangeAll(tokenPrice float64) (*ExchangeResult, error) {
	sold := e.State.TokenBalance
	if sold <= 0 {
		return nil, ErrInvalidState
	}
	gross := sold * tokenPrice
	fee := gross * ExchangeFee
	net := gross - fee
	now := e.Clock.Now()
	e.State.TokenBalance = 0
	e.State.CreditFiat(e.NewID(), now, "Token sale", net, ledger.KindCredit)
	return &ExchangeResult{Sold: sold, Gross: gross, Fee: fee, Net: net}, nil
}

// CollectPendingPool moves the accrued mining pool into the token
// balance once it reaches the collection threshold.
func (e *Engine) CollectPendingPool() (float64, error) {
	amount := e.State.PendingPool
	if amount < MinPoolCollect {
		return 0, ErrInvalidState
	}
	e.State.PendingPool = 0
	e.State.CreditToken(e.NewID(), e.Clock.Now(), "Pool collection", amount, ledger.KindTokenEvent)
	return amount, nil
}

// CollectReferral moves the redeemable referral balance into the fiat
// wallet.
func (e *Engine) CollectReferral() (float64, error) {
	amount := e.State.Referral.Balance
	if amount <= 0 {
		return 0, ErrInvalidState
	}
	e.State.Referral.Balance = 0
	e.State.CreditFiat(e.NewID(), e.Clock.Now(), "Referral commission", amount, ledger.KindCredit)
	return amount, nil
}

// RenameUser sets the username, truncated to MaxUsernameLen runes.
func (e *Engine) RenameUser(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidState
	}
	if runes := []rune(name); len(runes) > MaxUsernameLen {
		name = string(runes[:MaxUsernameLen])
	}
	e.State.Username = name
	return name, nil
}
