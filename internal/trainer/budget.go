package trainer

import "time"

// Frame budget defaults.
const (
	DefaultTargetFPS    = 10
	DefaultBudgetMargin = 50 * time.Millisecond
	DefaultMinBudget    = 15 * time.Millisecond
)

// FrameBudget is the training time left in the current frame:
// the frame period at targetFPS minus the time already spent since
// frameStart and a safety margin, never less than minBudget.
func FrameBudget(frameStart, now time.Time, targetFPS int, margin, minBudget time.Duration) time.Duration {
	if targetFPS <= 0 {
		targetFPS = DefaultTargetFPS
	}
	frame := time.Second / time.Duration(targetFPS)
	budget := frame - now.Sub(frameStart) - margin
	if budget < minBudget {
		return minBudget
	}
	return budget
}
