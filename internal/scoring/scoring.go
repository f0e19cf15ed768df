// Package scoring computes experience points and training volume from
// set completion state. All functions are pure.
package scoring

import (
	"strconv"
	"strings"

	"github.com/claude/ironquest/internal/models"
)

// xpPerSet is the base XP awarded for one completed set before the
// difficulty multiplier is applied.
const xpPerSet = 10

// multipliers is the single difficulty→multiplier table. Both SessionXP and
// EstimatedXP consume it; unknown tiers normalize to intermediate.
var multipliers = map[models.Difficulty]int{
	models.DifficultyBeginner:     1,
	models.DifficultyIntermediate: 2,
	models.DifficultyExpert:       3,
}

// Multiplier returns the XP multiplier for a difficulty tier.
func Multiplier(d models.Difficulty) int {
	return multipliers[d.Normalize()]
}

// SessionXP sums completed-set XP across all exercises:
// completedSets * 10 * multiplier per exercise.
func SessionXP(exercises []models.RoutineExercise) int {
	total := 0
	for _, ex := range exercises {
		completed := 0
		for _, set := range ex.SetLogs {
			if set.Completed {
				completed++
			}
		}
		total += completed * xpPerSet * Multiplier(ex.Exercise.Difficulty)
	}
	return total
}

// EstimatedXP is the XP a user would earn by completing every target set of
// every exercise in the routine. Preview only, never persisted.
func EstimatedXP(r models.Routine) int {
	total := 0
	for _, ex := range r.Exercises {
		total += ex.TargetSets * xpPerSet * Multiplier(ex.Exercise.Difficulty)
	}
	return total
}

// Volume sums weight*reps over completed sets. Malformed weight or reps
// contribute zero.
func Volume(exercises []models.RoutineExercise) float64 {
	var total float64
	for _, ex := range exercises {
		for _, set := range ex.SetLogs {
			if set.Completed {
				total += parseQty(set.Weight) * parseQty(set.Reps)
			}
		}
	}
	return total
}

// parseQty parses a user-entered numeric string, returning 0 for anything
// unparseable or negative.
func parseQty(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
