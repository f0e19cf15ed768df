package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/google/uuid"
)

// newTestAPI creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths and
// query params.
func newTestAPI(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWorkoutLogs verifies the HTTP client sends the right time range
// and parses the JSON array response.
func TestQueryWorkoutLogs(t *testing.T) {
	ts := newTestAPI(t, map[string]http.HandlerFunc{
		"/api/v1/logs": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got == "" {
				t.Error("start param missing")
			}
			writeTestJSON(t, w, []models.WorkoutLog{
				{ID: uuid.New(), RoutineName: "Push Day", XPEarned: 120, Status: models.StatusCompleted},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	logs, err := client.QueryWorkoutLogs(context.Background(), start, end, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	if logs[0].XPEarned != 120 {
		t.Errorf("xp = %d, want 120", logs[0].XPEarned)
	}
}

// TestGetRoutineUnwrap verifies the client unwraps the detail endpoint's
// {routine, estimated_xp} envelope.
func TestGetRoutineUnwrap(t *testing.T) {
	id := uuid.New()
	ts := newTestAPI(t, map[string]http.HandlerFunc{
		"/api/v1/routines/" + id.String(): func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"routine":      models.Routine{ID: id, Name: "Leg Day"},
				"estimated_xp": 180,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	rt, err := client.GetRoutine(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rt.Name != "Leg Day" {
		t.Errorf("name = %q, want Leg Day", rt.Name)
	}
}

// TestGetProfileOnboarding verifies that a needs_onboarding response maps to
// a nil profile, matching the local storage contract.
func TestGetProfileOnboarding(t *testing.T) {
	ts := newTestAPI(t, map[string]http.HandlerFunc{
		"/api/v1/profile": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"profile":          models.NewProfile(1, "New User"),
				"needs_onboarding": true,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	profile, err := client.GetProfile(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if profile != nil {
		t.Errorf("profile = %+v, want nil before onboarding", profile)
	}
}

// TestSearchExercisesPaging verifies limit/offset translate to the API's
// page/per_page params.
func TestSearchExercisesPaging(t *testing.T) {
	ts := newTestAPI(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("per_page"); got != "20" {
				t.Errorf("per_page = %q, want 20", got)
			}
			if got := q.Get("page"); got != "3" {
				t.Errorf("page = %q, want 3", got)
			}
			writeTestJSON(t, w, map[string]any{
				"items": []models.Exercise{{ID: uuid.New(), Name: "Deadlift"}},
				"total": 41,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	items, total, err := client.SearchExercises(context.Background(), "dead", "", "", "", 20, 40)
	if err != nil {
		t.Fatal(err)
	}
	if total != 41 {
		t.Errorf("total = %d, want 41", total)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

// TestHTTPErrorSurface verifies non-200 responses return an error with the
// status code.
func TestHTTPErrorSurface(t *testing.T) {
	ts := newTestAPI(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.GetTrainingStats(context.Background(), 1); err == nil {
		t.Error("expected error for 500 response")
	}
}
