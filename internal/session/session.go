// Package session owns the workout-session state machine: a routine is
// materialized into a live session, set-level mutations are applied while it
// is active, and finishing or aborting reduces it into a WorkoutLog.
package session

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/scoring"
	"github.com/google/uuid"
)

var (
	// ErrSessionActive is returned by Start when the user already has a
	// session in progress.
	ErrSessionActive = errors.New("a workout session is already active")
	// ErrNoActiveSession is returned by mutations and terminal transitions
	// when no session is in progress.
	ErrNoActiveSession = errors.New("no active workout session")
	// ErrExerciseNotFound is returned when an exercise id does not identify
	// an exercise in the active session.
	ErrExerciseNotFound = errors.New("exercise not found in session")
	// ErrSetIndexOutOfRange is returned for a set index outside the
	// exercise's set logs.
	ErrSetIndexOutOfRange = errors.New("set index out of range")
	// ErrUnknownField is returned by UpdateSetValue for a field other than
	// weight or reps.
	ErrUnknownField = errors.New("unknown set field")
	// ErrNotPaused is returned by Resume when the session is not paused.
	ErrNotPaused = errors.New("session is not paused")
	// ErrAlreadyPaused is returned by Pause when the session is already paused.
	ErrAlreadyPaused = errors.New("session is already paused")
)

// SetField names a mutable SetLog field for UpdateSetValue.
type SetField string

const (
	FieldWeight SetField = "weight"
	FieldReps   SetField = "reps"
)

// Targets holds default targets applied when an exercise is added without
// routine-specific values.
type Targets struct {
	Sets   int    `json:"sets"`
	Reps   string `json:"reps"`
	Weight string `json:"weight"`
}

// DefaultTargets is the 3x10 scheme used for ad-hoc exercise additions.
var DefaultTargets = Targets{Sets: 3, Reps: "10", Weight: ""}

// Manager holds the active session per user. Sessions are transient: they
// exist only here and survive only as the WorkoutLog produced by Finish or
// Abort. All methods are safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	active map[int]*models.WorkoutSession
	log    *slog.Logger
	now    func() time.Time
}

// NewManager creates a Manager with a wall clock.
func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		active: make(map[int]*models.WorkoutSession),
		log:    log,
		now:    time.Now,
	}
}

// Materialize expands a routine exercise's targets into set logs: one
// pending set per target set, seeded with the target weight and reps.
func Materialize(ex models.RoutineExercise) models.RoutineExercise {
	out := ex
	out.SetLogs = make([]models.SetLog, 0, ex.TargetSets)
	for i := 0; i < ex.TargetSets; i++ {
		out.SetLogs = append(out.SetLogs, models.SetLog{
			ID:     uuid.New(),
			Weight: ex.TargetWeight,
			Reps:   ex.TargetReps,
		})
	}
	return out
}

// Start materializes a routine into a live session. The routine itself is
// left untouched; the session holds an independent copy. Fails with
// ErrSessionActive if the user already has one.
func (m *Manager) Start(userID int, r models.Routine) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[userID]; ok {
		return nil, ErrSessionActive
	}

	s := &models.WorkoutSession{
		ID:          uuid.New(),
		RoutineID:   r.ID,
		RoutineName: r.Name,
		StartTime:   m.now(),
		Exercises:   make([]models.RoutineExercise, 0, len(r.Exercises)),
	}
	for _, ex := range r.Exercises {
		s.Exercises = append(s.Exercises, Materialize(ex))
	}

	m.active[userID] = s
	m.log.Info("session started", "user_id", userID, "session_id", s.ID, "routine", r.Name, "exercises", len(s.Exercises))
	return snapshot(s), nil
}

// Active returns a copy of the user's active session, or false when none.
func (m *Manager) Active(userID int) (*models.WorkoutSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[userID]
	if !ok {
		return nil, false
	}
	return snapshot(s), true
}

// ToggleSet flips the completed flag on exactly one set. No other field
// changes.
func (m *Manager) ToggleSet(userID int, exerciseID uuid.UUID, setIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.findSet(userID, exerciseID, setIndex)
	if err != nil {
		return err
	}
	set.Completed = !set.Completed
	return nil
}

// UpdateSetValue overwrites a set's weight or reps with the given string.
// The completed flag is untouched, and updates are allowed regardless of
// completion state.
func (m *Manager) UpdateSetValue(userID int, exerciseID uuid.UUID, setIndex int, field SetField, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.findSet(userID, exerciseID, setIndex)
	if err != nil {
		return err
	}
	switch field {
	case FieldWeight:
		set.Weight = value
	case FieldReps:
		set.Reps = value
	default:
		return ErrUnknownField
	}
	return nil
}

// MarkAllSets bulk-sets the completed flag on every set of one exercise.
func (m *Manager) MarkAllSets(userID int, exerciseID uuid.UUID, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return ErrNoActiveSession
	}
	ex := findExercise(s, exerciseID)
	if ex == nil {
		return ErrExerciseNotFound
	}
	for i := range ex.SetLogs {
		ex.SetLogs[i].Completed = completed
	}
	return nil
}

// AddExercise appends a freshly materialized exercise to the active session.
// The originating routine template is unaffected.
func (m *Manager) AddExercise(userID int, ex models.Exercise, t Targets) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	re := Materialize(models.RoutineExercise{
		ID:           uuid.New(),
		Exercise:     ex,
		TargetSets:   t.Sets,
		TargetReps:   t.Reps,
		TargetWeight: t.Weight,
	})
	s.Exercises = append(s.Exercises, re)
	return snapshot(s), nil
}

// Pause marks the session paused. Set mutations remain callable while
// paused; gating them is the caller's concern.
func (m *Manager) Pause(userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return ErrNoActiveSession
	}
	if s.PausedAt != nil {
		return ErrAlreadyPaused
	}
	t := m.now()
	s.PausedAt = &t
	return nil
}

// Resume closes the current pause interval and adds it to the total.
func (m *Manager) Resume(userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return ErrNoActiveSession
	}
	if s.PausedAt == nil {
		return ErrNotPaused
	}
	s.PausedTotal += m.now().Sub(*s.PausedAt)
	s.PausedAt = nil
	return nil
}

// Elapsed returns active time: now - start - accumulated pauses. An open
// pause interval counts up to now.
func (m *Manager) Elapsed(userID int) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return 0, ErrNoActiveSession
	}
	return m.elapsed(s), nil
}

func (m *Manager) elapsed(s *models.WorkoutSession) time.Duration {
	paused := s.PausedTotal
	if s.PausedAt != nil {
		paused += m.now().Sub(*s.PausedAt)
	}
	return m.now().Sub(s.StartTime) - paused
}

// Progress returns the completed fraction of all sets in [0,1]. A session
// with zero sets reports 0 rather than dividing by zero.
func Progress(s *models.WorkoutSession) float64 {
	total, completed := 0, 0
	for _, ex := range s.Exercises {
		for _, set := range ex.SetLogs {
			total++
			if set.Completed {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// Finish reduces the active session into a WorkoutLog and clears it.
// Status is COMPLETED only when every set of every exercise is completed
// (vacuously COMPLETED for a session with no exercises), else INCOMPLETE.
// Partial completion still earns full per-set XP and volume.
func (m *Manager) Finish(userID int) (*models.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}

	log := m.reduce(s)
	log.XPEarned = scoring.SessionXP(s.Exercises)
	if allSetsCompleted(s) {
		log.Status = models.StatusCompleted
	} else {
		log.Status = models.StatusIncomplete
	}

	delete(m.active, userID)
	m.log.Info("session finished", "user_id", userID, "session_id", s.ID,
		"status", log.Status, "xp", log.XPEarned, "duration_min", log.DurationMin)
	return log, nil
}

// Abort reduces the active session into an ABORTED WorkoutLog at half XP,
// rounded down. The caller is responsible for user confirmation before
// invoking this, and for not stamping the routine's last-performed marker.
func (m *Manager) Abort(userID int) (*models.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}

	log := m.reduce(s)
	log.XPEarned = scoring.SessionXP(s.Exercises) / 2
	log.Status = models.StatusAborted

	delete(m.active, userID)
	m.log.Info("session aborted", "user_id", userID, "session_id", s.ID,
		"xp", log.XPEarned, "duration_min", log.DurationMin)
	return log, nil
}

// reduce computes the log fields common to Finish and Abort.
func (m *Manager) reduce(s *models.WorkoutSession) *models.WorkoutLog {
	return &models.WorkoutLog{
		ID:                 s.ID,
		RoutineID:          s.RoutineID,
		RoutineName:        s.RoutineName,
		Date:               s.StartTime,
		DurationMin:        int(math.Round(m.elapsed(s).Minutes())),
		ExercisesCompleted: countTouched(s),
		TotalVolume:        scoring.Volume(s.Exercises),
		Exercises:          cloneExercises(s.Exercises),
	}
}

func (m *Manager) findSet(userID int, exerciseID uuid.UUID, setIndex int) (*models.SetLog, error) {
	s, ok := m.active[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	ex := findExercise(s, exerciseID)
	if ex == nil {
		return nil, ErrExerciseNotFound
	}
	if setIndex < 0 || setIndex >= len(ex.SetLogs) {
		return nil, ErrSetIndexOutOfRange
	}
	return &ex.SetLogs[setIndex], nil
}

func findExercise(s *models.WorkoutSession, exerciseID uuid.UUID) *models.RoutineExercise {
	for i := range s.Exercises {
		if s.Exercises[i].ID == exerciseID {
			return &s.Exercises[i]
		}
	}
	return nil
}

func allSetsCompleted(s *models.WorkoutSession) bool {
	for _, ex := range s.Exercises {
		for _, set := range ex.SetLogs {
			if !set.Completed {
				return false
			}
		}
	}
	return true
}

// countTouched counts exercises with at least one completed set.
func countTouched(s *models.WorkoutSession) int {
	n := 0
	for _, ex := range s.Exercises {
		for _, set := range ex.SetLogs {
			if set.Completed {
				n++
				break
			}
		}
	}
	return n
}

// snapshot returns a deep copy so callers cannot mutate manager state
// outside the lock.
func snapshot(s *models.WorkoutSession) *models.WorkoutSession {
	out := *s
	out.Exercises = cloneExercises(s.Exercises)
	return &out
}

func cloneExercises(exs []models.RoutineExercise) []models.RoutineExercise {
	out := make([]models.RoutineExercise, len(exs))
	for i, ex := range exs {
		out[i] = ex
		out[i].SetLogs = append([]models.SetLog(nil), ex.SetLogs...)
	}
	return out
}
