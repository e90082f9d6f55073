package scoreboard

import (
	"time"

	"github.com/scorecast/scorecast/internal/models"
)

// ComputeLiveTimer derives the displayed clock value from the persisted timer
// fields and the current wall clock. This is the single numeric contract
// shared by the snapshot builder and by clients extrapolating locally:
//
//	not running:  elapsedAtPause
//	running UP:   elapsedAtPause + (now - startedAt)
//	running DOWN: max(0, setSeconds - (elapsedAtPause + (now - startedAt)))
//
// The countdown clamps at zero but does not auto-stop; stopping at zero is a
// presentation decision, not a state-machine one. Because the inputs are all
// persisted, a crashed or redeployed process reconstructs the correct value
// from a fresh storage read.
func ComputeLiveTimer(running bool, startedAt *time.Time, elapsedAtPause int, direction models.TimerDirection, setSeconds int, now time.Time) int {
	elapsed := elapsedAtPause
	if running && startedAt != nil {
		elapsed += int(now.Sub(*startedAt).Seconds())
	}

	if direction == models.TimerDown {
		remaining := setSeconds - elapsed
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	return elapsed
}

// GameTimer applies ComputeLiveTimer to a game row.
func GameTimer(g *models.Game, now time.Time) int {
	return ComputeLiveTimer(g.TimerRunning, g.TimerStartedAt, g.ElapsedSecondsAtPause, g.TimerDirection, g.TimerSetSeconds, now)
}
