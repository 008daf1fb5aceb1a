package session

import "errors"

// ErrInvalidRequest covers malformed input rejected before it reaches the
// engine: empty uids, unknown categories, non-positive amounts.
var ErrInvalidRequest = errors.New("invalid_request")
