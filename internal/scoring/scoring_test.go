package scoring

import (
	"testing"

	"github.com/claude/ironquest/internal/models"
	"github.com/google/uuid"
)

func exerciseWithSets(diff models.Difficulty, targetSets, completed int) models.RoutineExercise {
	ex := models.RoutineExercise{
		ID:         uuid.New(),
		Exercise:   models.Exercise{ID: uuid.New(), Name: "Bench Press", Difficulty: diff},
		TargetSets: targetSets,
	}
	for i := 0; i < targetSets; i++ {
		ex.SetLogs = append(ex.SetLogs, models.SetLog{
			ID:        uuid.New(),
			Weight:    "60",
			Reps:      "10",
			Completed: i < completed,
		})
	}
	return ex
}

// TestSessionXPMultipliers verifies the difficulty multiplier table:
// k completed sets yield k*10*{1,2,3} for beginner/intermediate/expert,
// and an unspecified difficulty behaves as intermediate.
func TestSessionXPMultipliers(t *testing.T) {
	tests := []struct {
		name      string
		diff      models.Difficulty
		completed int
		want      int
	}{
		{"beginner", models.DifficultyBeginner, 3, 30},
		{"intermediate", models.DifficultyIntermediate, 3, 60},
		{"expert", models.DifficultyExpert, 3, 90},
		{"unspecified defaults to intermediate", "", 2, 40},
		{"unknown tier defaults to intermediate", "legendary", 2, 40},
		{"no completed sets", models.DifficultyExpert, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exs := []models.RoutineExercise{exerciseWithSets(tt.diff, 4, tt.completed)}
			if got := SessionXP(exs); got != tt.want {
				t.Errorf("SessionXP = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestSessionXPSumsAcrossExercises verifies XP accumulates over exercises.
func TestSessionXPSumsAcrossExercises(t *testing.T) {
	exs := []models.RoutineExercise{
		exerciseWithSets(models.DifficultyExpert, 3, 2),   // 2*10*3 = 60
		exerciseWithSets(models.DifficultyBeginner, 3, 3), // 3*10*1 = 30
	}
	if got := SessionXP(exs); got != 90 {
		t.Errorf("SessionXP = %d, want 90", got)
	}
}

// TestEstimatedXP verifies the routine preview equals the XP obtainable if
// every target set were completed.
func TestEstimatedXP(t *testing.T) {
	r := models.Routine{
		ID: uuid.New(),
		Exercises: []models.RoutineExercise{
			exerciseWithSets(models.DifficultyExpert, 3, 0),
			exerciseWithSets(models.DifficultyIntermediate, 4, 0),
		},
	}
	// 3*10*3 + 4*10*2 = 170
	if got := EstimatedXP(r); got != 170 {
		t.Errorf("EstimatedXP = %d, want 170", got)
	}

	// Fully completing the materialized session earns exactly the estimate.
	full := []models.RoutineExercise{
		exerciseWithSets(models.DifficultyExpert, 3, 3),
		exerciseWithSets(models.DifficultyIntermediate, 4, 4),
	}
	if got := SessionXP(full); got != 170 {
		t.Errorf("SessionXP fully completed = %d, want EstimatedXP 170", got)
	}
}

// TestVolume verifies weight*reps summation over completed sets only.
func TestVolume(t *testing.T) {
	ex := models.RoutineExercise{
		Exercise: models.Exercise{Difficulty: models.DifficultyIntermediate},
		SetLogs: []models.SetLog{
			{Weight: "100", Reps: "5", Completed: true},  // 500
			{Weight: "80", Reps: "8", Completed: true},   // 640
			{Weight: "120", Reps: "3", Completed: false}, // skipped
		},
	}
	if got := Volume([]models.RoutineExercise{ex}); got != 1140 {
		t.Errorf("Volume = %v, want 1140", got)
	}
}

// TestVolumeMalformedInput verifies unparseable weight/reps silently
// contribute zero instead of failing.
func TestVolumeMalformedInput(t *testing.T) {
	ex := models.RoutineExercise{
		SetLogs: []models.SetLog{
			{Weight: "abc", Reps: "10", Completed: true},
			{Weight: "50", Reps: "", Completed: true},
			{Weight: "-20", Reps: "5", Completed: true},
			{Weight: " 42.5 ", Reps: "2", Completed: true}, // whitespace tolerated: 85
		},
	}
	if got := Volume([]models.RoutineExercise{ex}); got != 85 {
		t.Errorf("Volume = %v, want 85", got)
	}
}

// TestVolumeEmpty verifies empty input yields zero, not a panic.
func TestVolumeEmpty(t *testing.T) {
	if got := Volume(nil); got != 0 {
		t.Errorf("Volume(nil) = %v, want 0", got)
	}
	if got := SessionXP(nil); got != 0 {
		t.Errorf("SessionXP(nil) = %d, want 0", got)
	}
}
