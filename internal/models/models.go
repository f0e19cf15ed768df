package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty is an exercise's catalog difficulty tier.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyExpert       Difficulty = "expert"
)

// Normalize maps an absent or unknown tier to intermediate.
func (d Difficulty) Normalize() Difficulty {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyExpert:
		return d
	}
	return DifficultyIntermediate
}

// Exercise is a catalog entity. Immutable once fetched.
type Exercise struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	BodyPart     string     `json:"body_part"`
	Equipment    string     `json:"equipment"`
	Difficulty   Difficulty `json:"difficulty"`
	Instructions []string   `json:"instructions,omitempty"`
}

// SetLog is one pending or completed set. Weight and reps are kept as the
// user typed them; unparseable values count as zero in derived metrics.
type SetLog struct {
	ID        uuid.UUID `json:"id"`
	Weight    string    `json:"weight"`
	Reps      string    `json:"reps"`
	Completed bool      `json:"completed"`
}

// RoutineExercise is an Exercise plus routine-specific targets. SetLogs is
// empty while the exercise is part of a routine template and holds exactly
// TargetSets entries once a session materializes it.
type RoutineExercise struct {
	ID           uuid.UUID `json:"id"`
	Exercise     Exercise  `json:"exercise"`
	TargetSets   int       `json:"target_sets"`
	TargetReps   string    `json:"target_reps"`
	TargetWeight string    `json:"target_weight"`
	SetLogs      []SetLog  `json:"set_logs,omitempty"`
}

// Routine is a user-authored workout template.
type Routine struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Exercises     []RoutineExercise `json:"exercises"`
	LastPerformed *time.Time        `json:"last_performed,omitempty"`
	IsFavorite    bool              `json:"is_favorite"`
}

// WorkoutSession is one live execution of a routine. It exists only in
// memory and terminates into exactly one WorkoutLog.
type WorkoutSession struct {
	ID          uuid.UUID         `json:"id"`
	RoutineID   uuid.UUID         `json:"routine_id"`
	RoutineName string            `json:"routine_name"`
	StartTime   time.Time         `json:"start_time"`
	Exercises   []RoutineExercise `json:"exercises"`

	// Pause accounting. PausedAt is non-nil while paused; PausedTotal
	// accumulates every closed pause interval.
	PausedAt    *time.Time    `json:"paused_at,omitempty"`
	PausedTotal time.Duration `json:"paused_total"`
}

// LogStatus classifies how a session ended.
type LogStatus string

const (
	StatusCompleted  LogStatus = "COMPLETED"
	StatusIncomplete LogStatus = "INCOMPLETE"
	StatusAborted    LogStatus = "ABORTED"
)

// WorkoutLog is the immutable record produced when a session ends.
// Date is the session's start time, not its end time.
type WorkoutLog struct {
	ID                 uuid.UUID         `json:"id"`
	RoutineID          uuid.UUID         `json:"routine_id"`
	RoutineName        string            `json:"routine_name"`
	Date               time.Time         `json:"date"`
	DurationMin        int               `json:"duration_min"`
	XPEarned           int               `json:"xp_earned"`
	ExercisesCompleted int               `json:"exercises_completed"`
	TotalVolume        float64           `json:"total_volume"`
	Status             LogStatus         `json:"status"`
	Exercises          []RoutineExercise `json:"exercises"`
}

// BodyStat is one named biometric with a fixed maximum, for the profile
// radar chart.
type BodyStat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

// UserProfile is the per-user progression and biometric state.
type UserProfile struct {
	UserID     int        `json:"user_id"`
	Name       string     `json:"name"`
	HeightCm   float64    `json:"height_cm"`
	WeightKg   float64    `json:"weight_kg"`
	Level      int        `json:"level"`
	CurrentXP  int        `json:"current_xp"`
	XPRequired int        `json:"xp_required"`
	BodyStats  []BodyStat `json:"body_stats"`
	Onboarded  bool       `json:"onboarded"`
}

// DefaultBodyStatMax is the radar chart ceiling for each biometric stat.
const DefaultBodyStatMax = 120

// NewProfile returns a level-1 profile with the standard stat set.
func NewProfile(userID int, name string) UserProfile {
	stats := make([]BodyStat, 0, len(defaultStatNames))
	for _, n := range defaultStatNames {
		stats = append(stats, BodyStat{Name: n, Value: 50, Max: DefaultBodyStatMax})
	}
	return UserProfile{
		UserID:     userID,
		Name:       name,
		Level:      1,
		CurrentXP:  0,
		XPRequired: 1000,
		BodyStats:  stats,
	}
}

var defaultStatNames = []string{"strength", "endurance", "agility", "mobility", "recovery"}
