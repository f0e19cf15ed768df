package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// TestStateDBRoundtrip verifies the dedup contract: a marked file is seen,
// the same path with a different hash is not.
func TestStateDBRoundtrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	seen, err := state.IsImported("catalog.json", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("fresh state db reports file as imported")
	}

	if err := state.MarkImported("catalog.json", 100, "abc"); err != nil {
		t.Fatal(err)
	}

	seen, err = state.IsImported("catalog.json", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("marked file not reported as imported")
	}

	// Changed content under the same path imports again.
	seen, err = state.IsImported("catalog.json", 100, "def")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("changed hash reported as imported")
	}
}

// TestHashFile verifies hashing is content-based and deterministic.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	if err := os.WriteFile(a, []byte(`{"exercises":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(`{"exercises":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("same content hashed differently: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

// TestImportDryRun verifies counting without a database: valid files are
// processed, malformed files are counted as errors, empty ones skipped.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	exDir := filepath.Join(dir, "Exercises")
	rtDir := filepath.Join(dir, "Routines")
	if err := os.MkdirAll(exDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(rtDir, 0o755); err != nil {
		t.Fatal(err)
	}

	catalog := `{"exercises":[
		{"name":"Bench Press","body_part":"chest","equipment":"barbell","difficulty":"intermediate"},
		{"name":"Pull Up","body_part":"back","equipment":"body weight","difficulty":"expert"}
	]}`
	if err := os.WriteFile(filepath.Join(exDir, "catalog.json"), []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(exDir, "broken.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(exDir, "empty.json"), []byte(`{"exercises":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	routine := `{"name":"Push Day","description":"Chest and triceps","exercises":[
		{"name":"Bench Press","difficulty":"intermediate","target_sets":4,"target_reps":"8","target_weight":"80"}
	]}`
	if err := os.WriteFile(filepath.Join(rtDir, "push.json"), []byte(routine), 0o644); err != nil {
		t.Fatal(err)
	}

	imp := New(nil, nil, slog.Default(), true)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesProcessed != 2 {
		t.Errorf("processed = %d, want 2", stats.FilesProcessed)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("errored = %d, want 1", stats.FilesErrored)
	}
	if stats.FilesSkipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.FilesSkipped)
	}
	if stats.ExercisesInserted != 2 {
		t.Errorf("exercises = %d, want 2", stats.ExercisesInserted)
	}
	if stats.RoutinesImported != 1 {
		t.Errorf("routines = %d, want 1", stats.RoutinesImported)
	}
}

// TestStableID verifies ID derivation is deterministic and case-insensitive,
// and that distinct kinds never collide.
func TestStableID(t *testing.T) {
	if stableID("exercise", "Bench Press") != stableID("exercise", "bench press") {
		t.Error("case should not change the derived ID")
	}
	if stableID("exercise", "Bench Press") == stableID("routine", "Bench Press") {
		t.Error("different kinds derived the same ID")
	}
	if stableID("exercise", "Bench Press") == uuid.Nil {
		t.Error("derived ID is nil")
	}
}

// TestExerciseEntryToModel verifies difficulty normalization and explicit ID
// passthrough.
func TestExerciseEntryToModel(t *testing.T) {
	explicit := uuid.New()
	e := exerciseEntry{ID: explicit, Name: "Squat", Difficulty: "impossible"}
	m := e.toModel()
	if m.ID != explicit {
		t.Errorf("explicit ID not preserved")
	}
	if m.Difficulty != "intermediate" {
		t.Errorf("difficulty = %q, want intermediate", m.Difficulty)
	}

	derived := exerciseEntry{Name: "Squat"}.toModel()
	if derived.ID == uuid.Nil {
		t.Error("derived ID is nil")
	}
}
