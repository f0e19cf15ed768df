package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the IronQuest REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) QueryWorkoutLogs(ctx context.Context, start, end time.Time, _ int) ([]models.WorkoutLog, error) {
	body, err := c.get(ctx, "/api/v1/logs", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var logs []models.WorkoutLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode logs: %w", err)
	}
	return logs, nil
}

func (c *HTTPClient) GetWorkoutLog(ctx context.Context, logID uuid.UUID, _ int) (*models.WorkoutLog, error) {
	body, err := c.get(ctx, "/api/v1/logs/"+logID.String(), nil)
	if err != nil {
		return nil, err
	}

	var log models.WorkoutLog
	if err := json.Unmarshal(body, &log); err != nil {
		return nil, fmt.Errorf("httpclient: decode log: %w", err)
	}
	return &log, nil
}

func (c *HTTPClient) ListRoutines(ctx context.Context, _ int) ([]models.Routine, error) {
	body, err := c.get(ctx, "/api/v1/routines", nil)
	if err != nil {
		return nil, err
	}

	var routines []models.Routine
	if err := json.Unmarshal(body, &routines); err != nil {
		return nil, fmt.Errorf("httpclient: decode routines: %w", err)
	}
	return routines, nil
}

func (c *HTTPClient) GetRoutine(ctx context.Context, routineID uuid.UUID, _ int) (*models.Routine, error) {
	body, err := c.get(ctx, "/api/v1/routines/"+routineID.String(), nil)
	if err != nil {
		return nil, err
	}

	// The detail endpoint wraps the routine with its XP preview.
	var resp struct {
		Routine models.Routine `json:"routine"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode routine: %w", err)
	}
	return &resp.Routine, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, _ int) (*models.UserProfile, error) {
	body, err := c.get(ctx, "/api/v1/profile", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Profile         *models.UserProfile `json:"profile"`
		NeedsOnboarding bool                `json:"needs_onboarding"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode profile: %w", err)
	}
	if resp.NeedsOnboarding {
		return nil, nil
	}
	return resp.Profile, nil
}

func (c *HTTPClient) GetTrainingStats(ctx context.Context, _ int) (*storage.TrainingStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.TrainingStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, query, bodyPart, equipment, difficulty string, limit, offset int) ([]models.Exercise, int, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if bodyPart != "" {
		params.Set("body_part", bodyPart)
	}
	if equipment != "" {
		params.Set("equipment", equipment)
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}
	if limit > 0 {
		params.Set("per_page", strconv.Itoa(limit))
		params.Set("page", strconv.Itoa(offset/limit+1))
	}

	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, 0, err
	}

	var resp struct {
		Items []models.Exercise `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return resp.Items, resp.Total, nil
}
