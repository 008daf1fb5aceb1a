// Package session serializes access to the single game engine, binds it
// to the snapshot store and drives the periodic simulation loops.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/config"
	"miner-tycoon/internal/game"
	"miner-tycoon/internal/ledger"
	"miner-tycoon/internal/store"
)

// Service owns the engine behind a single mutex. Every action and read
// model takes the lock; the engine itself is not concurrency-safe.
type Service struct {
	mu  sync.Mutex
	eng *game.Engine

	catalog    *catalog.Catalog
	store      store.Store
	notifier   game.Notifier
	clock      game.Clock
	rand       game.Rand
	tokenPrice float64
}

func NewService(cat *catalog.Catalog, st store.Store, notifier game.Notifier, tokenPrice float64, clock game.Clock, rnd game.Rand) *Service {
	if clock == nil {
		clock = game.SystemClock{}
	}
	if rnd == nil {
		rnd = game.DefaultRand()
	}
	return &Service{
		catalog:    cat,
		store:      st,
		notifier:   notifier,
		clock:      clock,
		rand:       rnd,
		tokenPrice: tokenPrice,
	}
}

// Bootstrap loads the persisted snapshot or starts a fresh session. A
// missing or unparseable snapshot falls back to a defaulted state with
// the starter kit; a store failure is surfaced so startup can abort.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	st, err := s.loadState(ctx, now)
	if err != nil {
		return err
	}
	st.Migrate(now)
	s.eng = game.NewEngine(s.catalog, st, s.clock, s.rand)
	st.GrantStarterKit(now, s.eng.NewID)
	return nil
}

func (s *Service) loadState(ctx context.Context, now time.Time) (*game.State, error) {
	blob, err := s.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		log.Info().Msg("no saved session, starting fresh")
		return game.NewState(now, s.rand), nil
	}
	if err != nil {
		return nil, err
	}
	var st game.State
	if err := json.Unmarshal(blob, &st); err != nil {
		log.Warn().Err(err).Msg("corrupt session snapshot, starting fresh")
		return game.NewState(now, s.rand), nil
	}
	return &st, nil
}

// Flush persists the current state. The snapshot is marshaled under the
// lock; the store write happens outside it.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	blob, err := json.Marshal(s.eng.State)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.store.Save(ctx, blob)
}

// StartLoops runs the decay, rent and persistence tickers until ctx is
// cancelled.
func (s *Service) StartLoops(ctx context.Context, cfg config.SimConfig) {
	go s.loop(ctx, cfg.DecayInterval, func() { s.TickDecay() })
	go s.loop(ctx, cfg.RentInterval, func() { s.TickRent() })
	go s.loop(ctx, cfg.FlushInterval, func() {
		if err := s.Flush(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("session flush failed")
		}
	})
}

func (s *Service) loop(ctx context.Context, every time.Duration, fn func()) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

// TickDecay advances miner health and emits an equipment-failure
// notification for every miner that broke this tick. Events are emitted
// after the lock is released.
func (s *Service) TickDecay() {
	s.mu.Lock()
	events := s.eng.TickDecay(s.clock.Now())
	s.mu.Unlock()
	for _, ev := range events {
		s.notifier.Emit(ev.Message, ev.Severity)
	}
}

// TickRent settles or powers down rooms whose rent cycle lapsed.
func (s *Service) TickRent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.TickRent(s.clock.Now())
}

// --- actions ---

func (s *Service) Purchase(cat catalog.Category, catalogID string) (*game.PurchaseResult, error) {
	if cat == "" || catalogID == "" {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	res, err := s.eng.Purchase(cat, catalogID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if res.Box != nil {
		s.notifier.Emit("Box opened: "+res.Box.Won.Name, game.SeveritySuccess)
	}
	return res, nil
}

func (s *Service) OpenBox(catalogID string) (*game.BoxResult, error) {
	if catalogID == "" {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	res, err := s.eng.OpenBox(catalogID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.notifier.Emit("Box opened: "+res.Won.Name, game.SeveritySuccess)
	return res, nil
}

func (s *Service) Install(itemUID, parentUID string) error {
	if itemUID == "" || parentUID == "" {
		return ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Install(itemUID, parentUID)
}

func (s *Service) Uninstall(itemUID string) error {
	if itemUID == "" {
		return ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Uninstall(itemUID)
}

func (s *Service) Recycle(itemUID string) (float64, error) {
	if itemUID == "" {
		return 0, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Recycle(itemUID)
}

func (s *Service) ProposeDemolition(roomUID string) (*game.DemolitionProposal, error) {
	if roomUID == "" {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ProposeDemolition(roomUID)
}

func (s *Service) ConfirmDemolition(roomUID string) (float64, error) {
	if roomUID == "" {
		return 0, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ConfirmDemolition(roomUID)
}

func (s *Service) PayRent(roomUID string) error {
	if roomUID == "" {
		return ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.PayRent(roomUID)
}

func (s *Service) PayRentBulk(tier catalog.Tier) (*game.BulkRentResult, error) {
	if tier == "" {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.PayRentBulk(tier)
}

func (s *Service) ToggleAutoPay(roomUID string) (bool, error) {
	if roomUID == "" {
		return false, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ToggleAutoPay(roomUID)
}

func (s *Service) Repair(minerUID string) error {
	if minerUID == "" {
		return ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Repair(minerUID)
}

func (s *Service) Deposit(fiatAmount float64) error {
	if fiatAmount <= 0 {
		return ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Deposit(fiatAmount)
}

func (s *Service) Withdraw(fiatAmount float64) (*game.WithdrawResult, error) {
	if fiatAmount <= 0 {
		return nil, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Withdraw(fiatAmount)
}

func (s *Service) ExchangeAll() (*game.ExchangeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ExchangeAll(s.tokenPrice)
}

func (s *Service) CollectPendingPool() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.CollectPendingPool()
}

func (s *Service) CollectReferral() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.CollectReferral()
}

func (s *Service) RenameUser(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.RenameUser(name)
}

// --- read models ---

func (s *Service) Summary() *SummaryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	st := s.eng.State
	repairNeeded := 0
	for _, it := range st.Inventory {
		if it.Category == catalog.CategoryMiner && it.ParentUID != "" && it.Health <= game.RepairHealthThreshold {
			repairNeeded++
		}
	}
	return &SummaryResponse{
		Username:         st.Username,
		AccountAgeDays:   s.eng.AccountAgeDays(now),
		Referral:         st.Referral,
		FiatBalance:      st.FiatBalance,
		TokenBalance:     st.TokenBalance,
		PendingPool:      st.PendingPool,
		WithdrawFeeRate:  s.eng.WithdrawFeeRate(now),
		ActivePower:      s.eng.ActivePower(now),
		ActiveDailyYield: s.eng.ActiveDailyYield(now),
		ActiveWattDraw:   s.eng.ActiveWattDraw(now),
		RentLiability:    s.eng.TotalRentLiability(),
		RepairNeeded:     repairNeeded,
	}
}

func (s *Service) Inventory() *InventoryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	st := s.eng.State
	items := make([]InventoryItem, 0, len(st.Inventory))
	for _, it := range st.Inventory {
		view := InventoryItem{
			UID:       it.UID,
			CatalogID: it.CatalogID,
			Category:  it.Category,
			ParentUID: it.ParentUID,
		}
		if entry, ok := s.catalog.Get(it.Category, it.CatalogID); ok {
			view.Tier = entry.Tier
			view.Name = entry.Name
			view.SlotCapacity = entry.SlotCapacity
			view.RentCost = entry.RentCost
		}
		switch it.Category {
		case catalog.CategoryRoom:
			view.Powered = it.Powered
			view.AutoPay = it.AutoPay
			if left := st.RentTimeLeft(it, now); left > 0 {
				view.RentSecondsLeft = left.Seconds()
			}
		case catalog.CategoryMiner:
			view.Health = it.Health
			view.Active = st.IsActive(it, now)
		}
		for _, child := range st.ChildrenOf(it.UID) {
			view.ChildUIDs = append(view.ChildUIDs, child.UID)
		}
		sort.Strings(view.ChildUIDs)
		items = append(items, view)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UID < items[j].UID })
	return &InventoryResponse{Items: items}
}

func (s *Service) CatalogListing() *CatalogResponse {
	return &CatalogResponse{
		Miners:  s.catalog.Listing(catalog.CategoryMiner, true),
		Shelves: s.catalog.Listing(catalog.CategoryShelf, true),
		Rooms:   s.catalog.Listing(catalog.CategoryRoom, true),
		Boxes:   s.catalog.Listing(catalog.CategoryBox, true),
	}
}

// TransactionLog returns up to limit entries, newest first.
func (s *Service) TransactionLog(limit int) *LogResponse {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	logEntries := s.eng.State.Log
	total := len(logEntries)
	n := limit
	if n > total {
		n = total
	}
	items := make([]ledger.Entry, 0, n)
	for i := total - 1; i >= total-n; i-- {
		items = append(items, logEntries[i])
	}
	return &LogResponse{Items: items, Total: total}
}

func (s *Service) Projection() *ProjectionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &ProjectionResponse{
		TokenPrice: s.tokenPrice,
		Projection: s.eng.Project(s.clock.Now(), s.tokenPrice),
	}
}
