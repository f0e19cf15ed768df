// Package routine implements the mutation rules for workout routines:
// favorite exclusivity, forking, and exercise add/remove. All functions
// return new values and leave their inputs untouched.
package routine

import (
	"errors"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/session"
	"github.com/google/uuid"
)

var (
	// ErrRoutineNotFound is returned when a routine id does not exist in
	// the user's collection.
	ErrRoutineNotFound = errors.New("routine not found")
	// ErrExerciseNotFound is returned when an exercise id does not exist in
	// the routine.
	ErrExerciseNotFound = errors.New("exercise not found in routine")
	// ErrNoActiveRoutine is returned by active-routine resolution when no
	// routine is marked favorite. The user must pick an active mission first.
	ErrNoActiveRoutine = errors.New("no active routine selected")
)

// SetFavorite marks the target routine as the single favorite, clearing the
// flag on every other routine in the same pass.
func SetFavorite(routines []models.Routine, targetID uuid.UUID) ([]models.Routine, error) {
	found := false
	out := make([]models.Routine, len(routines))
	for i, r := range routines {
		out[i] = r
		out[i].IsFavorite = r.ID == targetID
		if out[i].IsFavorite {
			found = true
		}
	}
	if !found {
		return nil, ErrRoutineNotFound
	}
	return out, nil
}

// ActiveRoutine resolves the current favorite.
func ActiveRoutine(routines []models.Routine) (models.Routine, error) {
	for _, r := range routines {
		if r.IsFavorite {
			return r, nil
		}
	}
	return models.Routine{}, ErrNoActiveRoutine
}

// Fork deep-copies a routine under a fresh id. Every contained exercise
// instance gets a fresh id too, since those ids are mutation keys and must
// not alias the source. The copy is never favorite and has no
// last-performed marker.
func Fork(r models.Routine) models.Routine {
	out := r
	out.ID = uuid.New()
	out.Name = r.Name + " (Copy)"
	out.IsFavorite = false
	out.LastPerformed = nil
	out.Exercises = make([]models.RoutineExercise, len(r.Exercises))
	for i, ex := range r.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].ID = uuid.New()
		out.Exercises[i].SetLogs = nil
	}
	return out
}

// AddExercise appends an exercise in template state: empty set logs, with
// the supplied default targets.
func AddExercise(r models.Routine, ex models.Exercise, t session.Targets) models.Routine {
	out := r
	out.Exercises = append(append([]models.RoutineExercise(nil), r.Exercises...), models.RoutineExercise{
		ID:           uuid.New(),
		Exercise:     ex,
		TargetSets:   t.Sets,
		TargetReps:   t.Reps,
		TargetWeight: t.Weight,
	})
	return out
}

// AddExerciseToActive appends an exercise to the favorite routine. Fails
// with ErrNoActiveRoutine rather than picking one arbitrarily.
func AddExerciseToActive(routines []models.Routine, ex models.Exercise, t session.Targets) ([]models.Routine, error) {
	active, err := ActiveRoutine(routines)
	if err != nil {
		return nil, err
	}
	out := append([]models.Routine(nil), routines...)
	for i := range out {
		if out[i].ID == active.ID {
			out[i] = AddExercise(out[i], ex, t)
			break
		}
	}
	return out, nil
}

// RemoveExercise filters an exercise out of the routine. A session already
// in progress holds its own snapshot and is unaffected.
func RemoveExercise(r models.Routine, exerciseID uuid.UUID) (models.Routine, error) {
	out := r
	out.Exercises = make([]models.RoutineExercise, 0, len(r.Exercises))
	found := false
	for _, ex := range r.Exercises {
		if ex.ID == exerciseID {
			found = true
			continue
		}
		out.Exercises = append(out.Exercises, ex)
	}
	if !found {
		return models.Routine{}, ErrExerciseNotFound
	}
	return out, nil
}
