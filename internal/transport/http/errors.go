package httptransport

import (
	"errors"
	"net/http"

	appsession "miner-tycoon/internal/app/session"
	"miner-tycoon/internal/game"
)

// MapActionError translates domain failures to an HTTP status and error
// code. Malformed input is 400, rule violations are 409 and a catalog
// gap is 500.
func MapActionError(err error) (int, string) {
	switch {
	case errors.Is(err, appsession.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, game.ErrInsufficientBalance):
		return http.StatusConflict, "insufficient_balance"
	case errors.Is(err, game.ErrNotEmpty):
		return http.StatusConflict, "not_empty"
	case errors.Is(err, game.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, game.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, game.ErrDataIntegrity):
		return http.StatusInternalServerError, "data_integrity"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
