// ABOUTME: ExerciseDB catalog client fetching the full exercise list over HTTP.
// ABOUTME: Sends RapidAPI auth headers and reports failures as *FetchError.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harperreed/liftlog/internal/models"
)

const (
	DefaultBaseURL = "https://exercisedb.p.rapidapi.com/"
	DefaultAPIHost = "exercisedb.p.rapidapi.com"
	DefaultTimeout = 30 * time.Second

	exercisesPath = "exercises"
)

// Fetcher returns the full exercise catalog.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.CatalogExercise, error)
}

// FetchError reports an unreachable catalog or a malformed response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch catalog %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch catalog %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	APIKey     string
	APIHost    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the ExerciseDB API.
type Client struct {
	baseURL string
	apiKey  string
	apiHost string
	http    *http.Client
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a catalog client.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	apiHost := opts.APIHost
	if apiHost == "" {
		apiHost = DefaultAPIHost
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		apiHost: apiHost,
		http:    httpClient,
	}
}

// FetchAll downloads every exercise in the catalog.
func (c *Client) FetchAll(ctx context.Context) ([]models.CatalogExercise, error) {
	url := c.baseURL + exercisesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	var exercises []models.CatalogExercise
	if err := json.NewDecoder(resp.Body).Decode(&exercises); err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	// An entry without id or name cannot be displayed or logged.
	out := exercises[:0]
	for _, ex := range exercises {
		if ex.ID == "" || ex.Name == "" {
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}
