package weatherapi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexivanou/weatherlog/internal/model"
	"go.uber.org/zap"
)

const notAvailable = "N/A"

// Parse flattens a raw API body into a WeatherRecord. A missing or mistyped
// field fails the whole record; partial records are never returned. An
// explicit null is kept as nil for nullable columns. City and country back
// NOT NULL columns, so a null there fails instead.
func (c *Client) Parse(raw model.RawResponse) (*model.WeatherRecord, error) {
	if len(raw) == 0 {
		c.logger.Warn("No data to parse")
		return nil, fmt.Errorf("%w: no data to parse", model.ErrParse)
	}

	p := &fieldReader{raw: raw}
	rec := &model.WeatherRecord{
		City:                 p.str("location", "city"),
		State:                p.optionalStr("location", "state"),
		Country:              p.strOr(notAvailable, "location", "country"),
		Temperature:          p.num("forecast", "temp"),
		FeelsLike:            p.num("forecast", "feels_like"),
		Pressure:             p.num("forecast", "pressure"),
		Humidity:             p.num("forecast", "humidity"),
		Low:                  p.num("forecast", "low"),
		High:                 p.num("forecast", "high"),
		WindSpeed:            p.num("wind", "speed"),
		WindDeg:              p.num("wind", "deg"),
		Description:          p.text("weather", "description"),
		Category:             p.text("weather", "category"),
		Units:                p.text("units"),
		RateLimitRemaining:   p.integer("rate_limiting", "unique_lookups_remaining"),
		RateLimitResetWindow: p.text("rate_limiting", "lookup_reset_window"),
		CapturedAt:           c.now().Format(model.CapturedAtLayout),
	}
	if p.err != nil {
		c.logger.Error("Key error while parsing data", zap.Error(p.err))
		return nil, fmt.Errorf("%w: %w", model.ErrParse, p.err)
	}

	c.logger.Info("Weather data parsed", zap.String("city", rec.City))
	return rec, nil
}

// fieldReader walks nested JSON objects and keeps the first error it hits
type fieldReader struct {
	raw model.RawResponse
	err error
}

func (p *fieldReader) lookup(path ...string) (any, bool) {
	var cur any = map[string]any(p.raw)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (p *fieldReader) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
}

func (p *fieldReader) required(path ...string) (any, bool) {
	v, ok := p.lookup(path...)
	if !ok {
		p.fail("missing key %q", strings.Join(path, "."))
	}
	return v, ok
}

func (p *fieldReader) str(path ...string) string {
	v, ok := p.required(path...)
	if !ok {
		return ""
	}
	s, ok := scalarString(v)
	if !ok {
		p.fail("key %q: expected string, got %T", strings.Join(path, "."), v)
	}
	return s
}

func (p *fieldReader) strOr(def string, path ...string) string {
	v, ok := p.lookup(path...)
	if !ok {
		return def
	}
	s, ok := scalarString(v)
	if !ok {
		p.fail("key %q: expected string, got %T", strings.Join(path, "."), v)
	}
	return s
}

// optionalStr distinguishes an absent key ("N/A") from an explicit null (nil)
func (p *fieldReader) optionalStr(path ...string) *string {
	v, ok := p.lookup(path...)
	if !ok {
		def := notAvailable
		return &def
	}
	if v == nil {
		return nil
	}
	s, ok := scalarString(v)
	if !ok {
		p.fail("key %q: expected string, got %T", strings.Join(path, "."), v)
		return nil
	}
	return &s
}

// text is like optionalStr but the key itself is required
func (p *fieldReader) text(path ...string) *string {
	if _, ok := p.required(path...); !ok {
		return nil
	}
	return p.optionalStr(path...)
}

func (p *fieldReader) num(path ...string) *float64 {
	v, ok := p.required(path...)
	if !ok || v == nil {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		p.fail("key %q: expected number, got %T", strings.Join(path, "."), v)
		return nil
	}
	return &f
}

func (p *fieldReader) integer(path ...string) *int {
	f := p.num(path...)
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) {
		p.fail("key %q: expected integer, got %v", strings.Join(path, "."), *f)
		return nil
	}
	n := int(*f)
	return &n
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
