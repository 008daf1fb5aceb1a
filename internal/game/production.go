package game

import (
	"math"
	"time"

	"miner-tycoon/internal/catalog"
)

// wattOverheadFactor models electrical overhead distinct from hashrate.
const wattOverheadFactor = 0.8

// ExchangeFee is the flat rate taken when selling token for fiat.
const ExchangeFee = 0.05

// ActivePower sums powerDraw over active miners.
func (e *Engine) ActivePower(now time.Time) float64 {
	total := 0.0
	e.eachActiveMiner(now, func(entry catalog.Entry) {
		total += entry.PowerDraw
	})
	return total
}

// ActiveDailyYield sums dailyYield over active miners.
func (e *Engine) ActiveDailyYield(now time.Time) float64 {
	total := 0.0
	e.eachActiveMiner(now, func(entry catalog.Entry) {
		total += entry.DailyYield
	})
	return total
}

// ActiveWattDraw sums floor(powerDraw * 0.8) over active miners.
func (e *Engine) ActiveWattDraw(now time.Time) float64 {
	total := 0.0
	e.eachActiveMiner(now, func(entry catalog.Entry) {
		total += math.Floor(entry.PowerDraw * wattOverheadFactor)
	})
	return total
}

func (e *Engine) eachActiveMiner(now time.Time, fn func(catalog.Entry)) {
	for _, it := range e.State.Inventory {
		if !e.State.IsActive(it, now) {
			continue
		}
		if entry, ok := e.entry(it); ok {
			fn(entry)
		}
	}
}

// TotalRentLiability sums rentCost over every room regardless of power
// state. Cost-of-ownership display, not power-state input.
func (e *Engine) TotalRentLiability() float64 {
	total := 0.0
	for _, room := range e.State.Rooms() {
		if entry, ok := e.entry(room); ok {
			total += entry.RentCost
		}
	}
	return total
}

// ProjectionRow is one horizon of the financial projection.
type ProjectionRow struct {
	Days        int     `json:"days"`
	Yield       float64 `json:"yield"`
	Gross       float64 `json:"gross"`
	EnergyCost  float64 `json:"energy_cost"`
	ExchangeFee float64 `json:"exchange_fee"`
	Net         float64 `json:"net"`
}

// Projection is the 1/7/30-day profit table. Margin is net over gross,
// or 0 when nothing is produced.
type Projection struct {
	Margin float64         `json:"margin"`
	Rows   []ProjectionRow `json:"rows"`
}

// Project computes the financial projection from the current inventory:
// gross is daily yield at the token price, energy cost is the rent
// liability over two 12-hour cycles per day, and the exchange fee applies
// to the gross.
func (e *Engine) Project(now time.Time, tokenPrice float64) Projection {
	dailyYield := e.ActiveDailyYield(now)
	dailyGross := dailyYield * tokenPrice
	dailyEnergy := e.TotalRentLiability() * 2
	dailyFee := dailyGross * ExchangeFee
	dailyNet := dailyGross - dailyEnergy - dailyFee

	margin := 0.0
	if dailyGross > 0 {
		margin = dailyNet / dailyGross
	}
	rows := make([]ProjectionRow, 0, 3)
	for _, days := range []int{1, 7, 30} {
		m := float64(days)
		rows = append(rows, ProjectionRow{
			Days:        days,
			Yield:       dailyYield * m,
			Gross:       dailyGross * m,
			EnergyCost:  dailyEnergy * m,
			ExchangeFee: dailyFee * m,
			Net:         dailyNet * m,
		})
	}
	return Projection{Margin: margin, Rows: rows}
}
