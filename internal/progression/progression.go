// Package progression applies earned XP to a user's level state.
package progression

import (
	"math"

	"github.com/claude/ironquest/internal/models"
)

// growthFactor is the multiplicative XP-threshold growth applied on each
// level-up. Chosen over a flat increment so leveling naturally slows.
const growthFactor = 1.2

// Result carries the updated profile plus a level-up event for notification.
type Result struct {
	Profile      models.UserProfile `json:"profile"`
	LevelsGained int                `json:"levels_gained"`
}

// ApplyXP adds earned XP and rolls over levels while the threshold is met,
// so a single large award can gain several levels at once. The threshold
// grows by growthFactor (rounded) per level.
func ApplyXP(p models.UserProfile, xpEarned int) Result {
	out := p
	out.CurrentXP += xpEarned

	gained := 0
	for out.XPRequired > 0 && out.CurrentXP >= out.XPRequired {
		out.CurrentXP -= out.XPRequired
		out.Level++
		gained++
		out.XPRequired = int(math.Round(float64(out.XPRequired) * growthFactor))
	}

	return Result{Profile: out, LevelsGained: gained}
}
