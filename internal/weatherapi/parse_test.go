package weatherapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func decodeFixture(t *testing.T) model.RawResponse {
	t.Helper()
	var raw model.RawResponse
	require.NoError(t, json.Unmarshal(loadFixture(t), &raw))
	return raw
}

func TestClient_Parse(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	before := time.Now()
	rec, err := client.Parse(decodeFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "Dubai", rec.City)
	assert.Nil(t, rec.State)
	assert.Equal(t, "AE", rec.Country)
	assert.Equal(t, ptr(305.15), rec.Temperature)
	assert.Equal(t, ptr(309.1), rec.FeelsLike)
	assert.Equal(t, ptr(1008.0), rec.Pressure)
	assert.Equal(t, ptr(55.0), rec.Humidity)
	assert.Equal(t, ptr(304.15), rec.Low)
	assert.Equal(t, ptr(306.15), rec.High)
	assert.Equal(t, ptr(4.12), rec.WindSpeed)
	assert.Equal(t, ptr(320.0), rec.WindDeg)
	assert.Equal(t, ptr("clear sky"), rec.Description)
	assert.Equal(t, ptr("Clear"), rec.Category)
	assert.Equal(t, ptr("standard"), rec.Units)
	assert.Equal(t, ptr(48), rec.RateLimitRemaining)
	assert.Equal(t, ptr("1 hour"), rec.RateLimitResetWindow)

	captured, err := time.ParseInLocation(model.CapturedAtLayout, rec.CapturedAt, time.Local)
	require.NoError(t, err)
	assert.WithinDuration(t, before, captured, 5*time.Second)
}

func TestClient_Parse_FixedClock(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())
	client.now = func() time.Time {
		return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	}

	rec, err := client.Parse(decodeFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09 14:05:07", rec.CapturedAt)
}

func TestClient_Parse_Empty(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	rec, err := client.Parse(nil)
	assert.ErrorIs(t, err, model.ErrParse)
	assert.Nil(t, rec)

	rec, err = client.Parse(model.RawResponse{})
	assert.ErrorIs(t, err, model.ErrParse)
	assert.Nil(t, rec)
}

func TestClient_Parse_MissingFields(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	tests := []struct {
		name          string
		mutate        func(raw model.RawResponse)
		expectedError string
	}{
		{
			name: "missing forecast.temp",
			mutate: func(raw model.RawResponse) {
				delete(raw["forecast"].(map[string]any), "temp")
			},
			expectedError: `"forecast.temp"`,
		},
		{
			name: "missing location block",
			mutate: func(raw model.RawResponse) {
				delete(raw, "location")
			},
			expectedError: `"location.city"`,
		},
		{
			name: "missing units",
			mutate: func(raw model.RawResponse) {
				delete(raw, "units")
			},
			expectedError: `"units"`,
		},
		{
			name: "missing rate limit window",
			mutate: func(raw model.RawResponse) {
				delete(raw["rate_limiting"].(map[string]any), "lookup_reset_window")
			},
			expectedError: `"rate_limiting.lookup_reset_window"`,
		},
		{
			name: "wind is not an object",
			mutate: func(raw model.RawResponse) {
				raw["wind"] = "calm"
			},
			expectedError: `"wind.speed"`,
		},
		{
			name: "temperature is a string",
			mutate: func(raw model.RawResponse) {
				raw["forecast"].(map[string]any)["temp"] = "hot"
			},
			expectedError: "expected number",
		},
		{
			name: "null city",
			mutate: func(raw model.RawResponse) {
				raw["location"].(map[string]any)["city"] = nil
			},
			expectedError: `"location.city"`,
		},
		{
			name: "null country",
			mutate: func(raw model.RawResponse) {
				raw["location"].(map[string]any)["country"] = nil
			},
			expectedError: `"location.country"`,
		},
		{
			name: "fractional lookups remaining",
			mutate: func(raw model.RawResponse) {
				raw["rate_limiting"].(map[string]any)["unique_lookups_remaining"] = 4.5
			},
			expectedError: "expected integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decodeFixture(t)
			tt.mutate(raw)

			rec, err := client.Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrParse)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Nil(t, rec)
		})
	}
}

func TestClient_Parse_LocationDefaults(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	raw := decodeFixture(t)
	location := raw["location"].(map[string]any)
	delete(location, "state")
	delete(location, "country")

	rec, err := client.Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, rec.State)
	assert.Equal(t, "N/A", *rec.State)
	assert.Equal(t, "N/A", rec.Country)
}

func TestClient_Parse_StatePresent(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	raw := decodeFixture(t)
	raw["location"].(map[string]any)["state"] = "OR"

	rec, err := client.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "OR", rec.StateOrDefault())
}

func TestClient_Parse_NullValues(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	raw := decodeFixture(t)
	raw["wind"].(map[string]any)["deg"] = nil
	raw["forecast"].(map[string]any)["humidity"] = nil
	raw["weather"].(map[string]any)["category"] = nil
	raw["rate_limiting"].(map[string]any)["unique_lookups_remaining"] = nil

	rec, err := client.Parse(raw)
	require.NoError(t, err)
	assert.Nil(t, rec.WindDeg)
	assert.Nil(t, rec.Humidity)
	assert.Nil(t, rec.Category)
	assert.Nil(t, rec.RateLimitRemaining)
	assert.Equal(t, ptr(4.12), rec.WindSpeed)
	assert.Equal(t, ptr("clear sky"), rec.Description)
}

func TestClient_Parse_NullKeyStillRequired(t *testing.T) {
	client := NewClient("", nil, zap.NewNop())

	raw := decodeFixture(t)
	delete(raw["wind"].(map[string]any), "deg")
	delete(raw["weather"].(map[string]any), "category")

	_, err := client.Parse(raw)
	assert.ErrorIs(t, err, model.ErrParse)
	assert.Contains(t, err.Error(), `"wind.deg"`)
}
