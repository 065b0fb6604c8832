// Package weatherapi talks to the upstream current-weather API.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/alexivanou/weatherlog/internal/validator"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public weather endpoint
const DefaultBaseURL = "https://weather.talkpython.fm/api/weather"

// StatusError is returned (wrapped in model.ErrTransport) when the API
// answers with a 4xx or 5xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather API returned status %d", e.Code)
}

// NotFound reports whether the API could not resolve the requested city
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// Client fetches and parses current-weather data
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a client for baseURL. A nil httpClient means a client
// without timeout, so a hung connection blocks until ctx is done.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Weather API client initialized", zap.String("base_url", baseURL))
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		now:        time.Now,
	}
}

// Get fetches the current weather for q and parses it into a record
func (c *Client) Get(ctx context.Context, q model.WeatherQuery) (*model.WeatherRecord, error) {
	raw, err := c.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.Parse(raw)
}

// Fetch requests weather data for q and returns the decoded body unchanged
func (c *Client) Fetch(ctx context.Context, q model.WeatherQuery) (model.RawResponse, error) {
	if q.Units == "" {
		q.Units = model.UnitsMetric
	}
	if err := validator.Validate(q); err != nil {
		c.logger.Error("Invalid weather query", zap.String("city", q.City), zap.Error(err))
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse base URL: %v", model.ErrTransport, err)
	}
	u.RawQuery = QueryParams(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", model.ErrTransport, err)
	}

	c.logger.Info("Requesting weather data", zap.String("city", q.City), zap.String("country", q.Country))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Error fetching weather data", zap.String("city", q.City), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrTransport, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		statusErr := &StatusError{Code: resp.StatusCode, Body: string(body)}
		if statusErr.NotFound() {
			c.logger.Error("City name might be incorrect or not found in the database",
				zap.String("city", q.City), zap.Int("status", resp.StatusCode))
		} else {
			c.logger.Error("HTTP error occurred", zap.Int("status", resp.StatusCode), zap.String("body", statusErr.Body))
		}
		return nil, fmt.Errorf("%w: %w", model.ErrTransport, statusErr)
	}

	var raw model.RawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Error("Failed to decode weather response", zap.String("city", q.City), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to decode response: %w", model.ErrTransport, err)
	}

	c.logger.Info("Weather data received", zap.String("city", q.City))
	return raw, nil
}

// QueryParams builds the query string for q. State is sent only when set,
// country only when set and always upper-cased.
func QueryParams(q model.WeatherQuery) url.Values {
	values := url.Values{}
	values.Set("city", q.City)
	values.Set("units", q.Units)
	if q.State != "" {
		values.Set("state", q.State)
	}
	if q.Country != "" {
		values.Set("country", strings.ToUpper(q.Country))
	}
	return values
}

// IsNotFound reports whether err came from a 404 response
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.NotFound()
}
