package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/storage"
	"github.com/google/uuid"
)

// Namespace for deriving stable exercise and routine IDs from names, so the
// same file imports to the same rows on every run.
var idNamespace = uuid.MustParse("8f2e6f1c-01a4-4c2e-9a51-6a4a14b2d7f0")

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ExercisesInserted   int64
	ExercisesDuplicated int64
	RoutinesImported    int
}

// exerciseEntry is one catalog exercise as it appears on disk. The ID is
// optional; absent IDs are derived from the lowercased name.
type exerciseEntry struct {
	ID           uuid.UUID         `json:"id,omitempty"`
	Name         string            `json:"name"`
	BodyPart     string            `json:"body_part"`
	Equipment    string            `json:"equipment"`
	Difficulty   models.Difficulty `json:"difficulty"`
	Instructions []string          `json:"instructions,omitempty"`
}

// exerciseFile is the on-disk catalog format: {"exercises": [...]}.
type exerciseFile struct {
	Exercises []exerciseEntry `json:"exercises"`
}

// routineFile is the on-disk routine template format.
type routineFile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Exercises   []struct {
		exerciseEntry
		TargetSets   int    `json:"target_sets"`
		TargetReps   string `json:"target_reps"`
		TargetWeight string `json:"target_weight"`
	} `json:"exercises"`
}

// Importer reads catalog and routine JSON files from a seed directory and
// inserts them into the database. Import is single-user (user 1).
type Importer struct {
	db     *storage.DB
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil to disable file-level
// deduplication.
func New(db *storage.DB, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, state: state, log: log, dryRun: dryRun}
}

// Import processes all .json files under dir/Exercises and dir/Routines.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	exerciseDir := filepath.Join(dir, "Exercises")
	routineDir := filepath.Join(dir, "Routines")

	if _, err := os.Stat(exerciseDir); err == nil {
		if err := imp.importExerciseDir(ctx, exerciseDir); err != nil {
			return &imp.stats, fmt.Errorf("importing exercises: %w", err)
		}
	}

	if _, err := os.Stat(routineDir); err == nil {
		if err := imp.importRoutineDir(ctx, routineDir); err != nil {
			return &imp.stats, fmt.Errorf("importing routines: %w", err)
		}
	}

	return &imp.stats, nil
}

// seen reports whether the state db already holds this exact file.
func (imp *Importer) seen(path string) (bool, int64, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, "", err
	}
	hash, err := HashFile(path)
	if err != nil {
		return false, 0, "", err
	}
	if imp.state == nil {
		return false, info.Size(), hash, nil
	}
	ok, err := imp.state.IsImported(filepath.Base(path), info.Size(), hash)
	return ok, info.Size(), hash, err
}

func (imp *Importer) markSeen(path string, size int64, hash string) {
	if imp.state == nil || imp.dryRun {
		return
	}
	if err := imp.state.MarkImported(filepath.Base(path), size, hash); err != nil {
		imp.log.Warn("recording import state", "file", path, "error", err)
	}
}

// importExerciseDir imports every catalog file in the directory.
func (imp *Importer) importExerciseDir(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}

	for _, f := range files {
		skip, size, hash, err := imp.seen(f)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", f, err)
		}
		if skip {
			imp.stats.FilesSkipped++
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		var file exerciseFile
		if err := json.Unmarshal(data, &file); err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if len(file.Exercises) == 0 {
			imp.stats.FilesSkipped++
			continue
		}

		exercises := make([]models.Exercise, 0, len(file.Exercises))
		for _, e := range file.Exercises {
			if e.Name == "" {
				continue
			}
			exercises = append(exercises, e.toModel())
		}
		if len(exercises) == 0 {
			imp.stats.FilesSkipped++
			continue
		}

		imp.stats.FilesProcessed++
		if imp.dryRun {
			imp.stats.ExercisesInserted += int64(len(exercises))
			continue
		}

		inserted, err := imp.batchInsertExercises(ctx, exercises)
		if err != nil {
			return fmt.Errorf("inserting exercises from %s: %w", filepath.Base(f), err)
		}
		imp.stats.ExercisesInserted += inserted
		imp.stats.ExercisesDuplicated += int64(len(exercises)) - inserted
		imp.markSeen(f, size, hash)
	}

	return nil
}

// batchInsertExercises inserts catalog rows in batches to stay within
// PostgreSQL parameter limits. 6 params per row, max 65535 params. Use 5000.
func (imp *Importer) batchInsertExercises(ctx context.Context, rows []models.Exercise) (int64, error) {
	const batchSize = 5000
	var totalInserted int64

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		inserted, err := imp.db.InsertExercises(ctx, rows[i:end])
		if err != nil {
			return totalInserted, err
		}
		totalInserted += inserted
	}
	return totalInserted, nil
}

// importRoutineDir imports every routine template in the directory. Routine
// IDs are derived from names, so re-importing an edited template updates the
// existing routine instead of duplicating it.
func (imp *Importer) importRoutineDir(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}

	for _, f := range files {
		skip, size, hash, err := imp.seen(f)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", f, err)
		}
		if skip {
			imp.stats.FilesSkipped++
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		var file routineFile
		if err := json.Unmarshal(data, &file); err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if file.Name == "" {
			imp.log.Warn("routine template missing name", "file", f)
			imp.stats.FilesErrored++
			continue
		}

		rt := models.Routine{
			ID:          stableID("routine", file.Name),
			Name:        file.Name,
			Description: file.Description,
			Exercises:   make([]models.RoutineExercise, 0, len(file.Exercises)),
		}
		for _, e := range file.Exercises {
			if e.Name == "" {
				continue
			}
			targetSets := e.TargetSets
			if targetSets <= 0 {
				targetSets = 3
			}
			rt.Exercises = append(rt.Exercises, models.RoutineExercise{
				ID:           stableID("routine-exercise", file.Name+"/"+e.Name),
				Exercise:     e.toModel(),
				TargetSets:   targetSets,
				TargetReps:   e.TargetReps,
				TargetWeight: e.TargetWeight,
			})
		}

		imp.stats.FilesProcessed++
		if imp.dryRun {
			imp.stats.RoutinesImported++
			continue
		}

		if err := imp.db.UpsertRoutine(ctx, 1, rt); err != nil {
			return fmt.Errorf("upserting routine %s: %w", file.Name, err)
		}
		imp.stats.RoutinesImported++
		imp.markSeen(f, size, hash)
	}

	return nil
}

func (e exerciseEntry) toModel() models.Exercise {
	id := e.ID
	if id == uuid.Nil {
		id = stableID("exercise", e.Name)
	}
	return models.Exercise{
		ID:           id,
		Name:         e.Name,
		BodyPart:     e.BodyPart,
		Equipment:    e.Equipment,
		Difficulty:   e.Difficulty.Normalize(),
		Instructions: e.Instructions,
	}
}

// stableID derives a v5 UUID from a kind tag and a case-insensitive name.
func stableID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+strings.ToLower(name)))
}
