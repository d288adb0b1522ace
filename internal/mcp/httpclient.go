package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/share"
)

// HTTPClient implements DataSource by calling the doonemore REST API.
// Used when the MCP binary runs over stdio but the data lives in a
// running doonemore server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// errNotFound marks a 404 from the server.
var errNotFound = errors.New("not found")

// ImportError carries the alert the server returned for a rejected import.
type ImportError struct {
	Alert share.Alert
}

func (e *ImportError) Error() string { return e.Alert.Message }

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// may be empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}
	return data, resp.StatusCode, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	return body, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}
	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) ListRoutines(ctx context.Context) ([]models.Routine, error) {
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

func (c *HTTPClient) ListWorkouts(ctx context.Context, exercise string) ([]models.Workout, error) {
	params := url.Values{}
	if exercise != "" {
		params.Set("exercise", exercise)
	}
	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}
	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) LatestWorkout(ctx context.Context, exercise string) (*models.Workout, error) {
	body, err := c.get(ctx, "/api/v1/exercises/latest", url.Values{"name": {exercise}})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var w models.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) RoutineLink(ctx context.Context, id uuid.UUID) (string, error) {
	body, err := c.get(ctx, "/api/v1/routines/"+id.String()+"/link", nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("httpclient: decode link: %w", err)
	}
	return resp.Link, nil
}

func (c *HTTPClient) ImportRoutineLink(ctx context.Context, link string) (models.Routine, error) {
	const path = "/api/v1/routines/import/link"
	body, status, err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"link": link})
	if err != nil {
		return models.Routine{}, err
	}
	switch status {
	case http.StatusCreated, http.StatusOK:
	case http.StatusUnprocessableEntity:
		var resp struct {
			Alert share.Alert `json:"alert"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return models.Routine{}, fmt.Errorf("httpclient: decode alert: %w", err)
		}
		return models.Routine{}, &ImportError{Alert: resp.Alert}
	default:
		return models.Routine{}, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	var r models.Routine
	if err := json.Unmarshal(body, &r); err != nil {
		return models.Routine{}, fmt.Errorf("httpclient: decode routine: %w", err)
	}
	return r, nil
}
