package model

// Units accepted by the weather API
const (
	UnitsMetric   = "metric"
	UnitsStandard = "standard"
	UnitsImperial = "imperial"
)

// CapturedAtLayout is the format of WeatherRecord.CapturedAt
const CapturedAtLayout = "2006-01-02 15:04:05"

// WeatherQuery represents the parameters of a single current-weather lookup
type WeatherQuery struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Units   string `json:"units"`
}

// RawResponse is the decoded JSON body returned by the weather API
type RawResponse map[string]any

// WeatherRecord represents one flattened weather observation. Pointer fields
// map to nullable columns; nil is stored as NULL.
type WeatherRecord struct {
	City                 string   `json:"city" db:"city"`
	State                *string  `json:"state" db:"state"`
	Country              string   `json:"country" db:"country"`
	Temperature          *float64 `json:"temperature" db:"temperature"`
	FeelsLike            *float64 `json:"feels_like" db:"feels_like"`
	Pressure             *float64 `json:"pressure" db:"pressure"`
	Humidity             *float64 `json:"humidity" db:"humidity"`
	Low                  *float64 `json:"low" db:"low"`
	High                 *float64 `json:"high" db:"high"`
	WindSpeed            *float64 `json:"wind_speed" db:"wind_speed"`
	WindDeg              *float64 `json:"wind_deg" db:"wind_deg"`
	Description          *string  `json:"description" db:"description"`
	Category             *string  `json:"category" db:"category"`
	Units                *string  `json:"units" db:"units"`
	RateLimitRemaining   *int     `json:"rate_limit_remaining" db:"rate_limiting_unique_lookups_remaining"`
	RateLimitResetWindow *string  `json:"rate_limit_reset_window" db:"rate_limiting_lookup_reset_window"`
	CapturedAt           string   `json:"captured_at" db:"date_time"`
}

// StoredRecord is a WeatherRecord together with the row ID it was stored under
type StoredRecord struct {
	ID     int64         `json:"id"`
	Record WeatherRecord `json:"record"`
}

// StateOrDefault returns the record state, or "N/A" when it is unset
func (r WeatherRecord) StateOrDefault() string {
	if r.State == nil {
		return "N/A"
	}
	return *r.State
}
