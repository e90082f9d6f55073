package scoreboard

import "errors"

// ErrActiveGameConflict is returned when storage rejects a new game because
// the tenant still has a non-terminal active one. Retryable: the caller can
// re-issue the create after the close-old step has settled.
var ErrActiveGameConflict = errors.New("tenant already has an active game")
