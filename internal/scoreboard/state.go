package scoreboard

import (
	"time"

	"github.com/scorecast/scorecast/internal/models"
)

// Pure transitions over a single game row. No I/O: the app layer loads the
// row, applies one of these, and persists the result under the tenant's
// mutation lock. Each returns whether the row changed.

// startTimer starts the clock if stopped and promotes PREGAME to LIVE.
func startTimer(g *models.Game, now time.Time) bool {
	if g.TimerRunning {
		return false
	}
	startedAt := now
	g.TimerRunning = true
	g.TimerStartedAt = &startedAt
	if g.Status == models.GameStatusPregame {
		g.Status = models.GameStatusLive
	}
	return true
}

// stopTimer folds the running span into the pause accumulator. Idempotent.
func stopTimer(g *models.Game, now time.Time) bool {
	if !g.TimerRunning {
		return false
	}
	if g.TimerStartedAt != nil {
		g.ElapsedSecondsAtPause += int(now.Sub(*g.TimerStartedAt).Seconds())
	}
	g.TimerRunning = false
	g.TimerStartedAt = nil
	return true
}

// resetTimer forces the clock back to zero. Direction and target seconds are
// left untouched.
func resetTimer(g *models.Game) bool {
	changed := g.TimerRunning || g.TimerStartedAt != nil || g.ElapsedSecondsAtPause != 0
	g.TimerRunning = false
	g.TimerStartedAt = nil
	g.ElapsedSecondsAtPause = 0
	return changed
}

// setTimer sets what the clock currently reads. For UP the elapsed count is
// repositioned to the given value; for DOWN the elapsed count resets to zero
// against the new target, so both directions display the set value. The
// asymmetry is deliberate product behavior, not an oversight.
func setTimer(g *models.Game, seconds int) bool {
	if seconds < 0 {
		seconds = 0
	}
	g.TimerSetSeconds = seconds
	if g.TimerDirection == models.TimerUp {
		g.ElapsedSecondsAtPause = seconds
	} else {
		g.ElapsedSecondsAtPause = 0
	}
	return true
}

// setTimerMode flips the count direction. It does not recompute elapsed or
// target; callers follow with setTimer for a consistent display.
func setTimerMode(g *models.Game, countDown bool) bool {
	direction := models.TimerUp
	if countDown {
		direction = models.TimerDown
	}
	if g.TimerDirection == direction {
		return false
	}
	g.TimerDirection = direction
	return true
}

// recordPenaltyKick appends an outcome to one side's sequence. Appends beyond
// the cap are silently ignored.
func recordPenaltyKick(g *models.Game, isHome bool, result models.KickResult) bool {
	kicks := g.AwayKicks
	if isHome {
		kicks = g.HomeKicks
	}
	if len(kicks) >= models.MaxPenaltyKicks {
		return false
	}
	kicks = append(kicks, result)
	if isHome {
		g.HomeKicks = kicks
	} else {
		g.AwayKicks = kicks
	}
	return true
}

// undoPenaltyKick pops the last outcome of one side's sequence, if any.
func undoPenaltyKick(g *models.Game, isHome bool) bool {
	if isHome {
		if len(g.HomeKicks) == 0 {
			return false
		}
		g.HomeKicks = g.HomeKicks[:len(g.HomeKicks)-1]
		return true
	}
	if len(g.AwayKicks) == 0 {
		return false
	}
	g.AwayKicks = g.AwayKicks[:len(g.AwayKicks)-1]
	return true
}

// resetGame rewinds the row to a fresh rematch: timer zeroed, penalties
// cleared, status back to PREGAME. Scores and cards live on the stats rows
// and are zeroed by the app alongside this.
func resetGame(g *models.Game, firstPeriod string) bool {
	g.TimerRunning = false
	g.TimerStartedAt = nil
	g.ElapsedSecondsAtPause = 0
	g.HomeKicks = nil
	g.AwayKicks = nil
	g.Status = models.GameStatusPregame
	if firstPeriod != "" {
		g.Period = firstPeriod
	}
	return true
}

// clampScore normalizes a score to the allowed range.
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// clampCards normalizes a card count to [0,3].
func clampCards(v int) int {
	if v < 0 {
		return 0
	}
	if v > 3 {
		return 3
	}
	return v
}
