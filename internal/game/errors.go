package game

import (
	"errors"

	"miner-tycoon/internal/ledger"
)

// ErrInsufficientBalance is the ledger's sentinel re-exported so callers
// can match every engine failure against one package.
var ErrInsufficientBalance = ledger.ErrInsufficientBalance

var (
	// ErrNotEmpty guards unlink/dispose/demolish on containers that
	// still have children.
	ErrNotEmpty = errors.New("not_empty")
	// ErrInvalidState covers unknown uids, wrong parent categories and
	// installing a broken miner.
	ErrInvalidState = errors.New("invalid_state")
	// ErrCapacityExceeded rejects installs beyond the parent's slots.
	ErrCapacityExceeded = errors.New("capacity_exceeded")
	// ErrDataIntegrity marks a box roll with no catalog match. This is a
	// catalog authoring bug, not a user error.
	ErrDataIntegrity = errors.New("data_integrity")
)
