package session

import (
	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/game"
	"miner-tycoon/internal/ledger"
)

// SummaryResponse is the dashboard read model: identity, balances and the
// aggregate production figures for the current instant.
type SummaryResponse struct {
	Username         string        `json:"username"`
	AccountAgeDays   int           `json:"account_age_days"`
	Referral         game.Referral `json:"referral"`
	FiatBalance      float64       `json:"fiat_balance"`
	TokenBalance     float64       `json:"token_balance"`
	PendingPool      float64       `json:"pending_pool"`
	WithdrawFeeRate  float64       `json:"withdraw_fee_rate"`
	ActivePower      float64       `json:"active_power"`
	ActiveDailyYield float64       `json:"active_daily_yield"`
	ActiveWattDraw   float64       `json:"active_watt_draw"`
	RentLiability    float64       `json:"rent_liability"`
	RepairNeeded     int           `json:"repair_needed"`
}

// InventoryItem is one owned item joined with its catalog entry and the
// derived runtime fields the caller would otherwise recompute.
type InventoryItem struct {
	UID          string           `json:"uid"`
	CatalogID    string           `json:"catalog_id"`
	Category     catalog.Category `json:"category"`
	Tier         catalog.Tier     `json:"tier"`
	Name         string           `json:"name"`
	ParentUID    string           `json:"parent_uid,omitempty"`
	ChildUIDs    []string         `json:"child_uids,omitempty"`
	SlotCapacity int              `json:"slot_capacity,omitempty"`

	// Room only.
	Powered         bool    `json:"powered,omitempty"`
	AutoPay         bool    `json:"auto_pay,omitempty"`
	RentCost        float64 `json:"rent_cost,omitempty"`
	RentSecondsLeft float64 `json:"rent_seconds_left,omitempty"`

	// Miner only.
	Health float64 `json:"health,omitempty"`
	Active bool    `json:"active,omitempty"`
}

type InventoryResponse struct {
	Items []InventoryItem `json:"items"`
}

// CatalogResponse is the direct-purchase listing grouped by category.
// Hidden entries are excluded; specials are listed because they are
// purchasable despite being absent from box rolls.
type CatalogResponse struct {
	Miners  []catalog.Entry `json:"miners"`
	Shelves []catalog.Entry `json:"shelves"`
	Rooms   []catalog.Entry `json:"rooms"`
	Boxes   []catalog.Entry `json:"boxes"`
}

// LogResponse returns transaction log entries, newest first.
type LogResponse struct {
	Items []ledger.Entry `json:"items"`
	Total int            `json:"total"`
}

type ProjectionResponse struct {
	TokenPrice float64         `json:"token_price"`
	Projection game.Projection `json:"projection"`
}
