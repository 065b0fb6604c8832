package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"reflect"
	"strings"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/alexivanou/weatherlog/internal/service"
	"github.com/alexivanou/weatherlog/internal/weatherapi"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var unitOptions = []string{model.UnitsMetric, model.UnitsStandard, model.UnitsImperial}

var templateFuncs = template.FuncMap{"orNA": orNA}

// orNA dereferences nullable record fields for display
func orNA(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return "N/A"
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "N/A"
		}
		return rv.Elem().Interface()
	}
	return v
}

// FormDefaults are applied to form fields the user left empty
type FormDefaults struct {
	Country string
	Units   string
}

// Handler handles HTTP requests
type Handler struct {
	service   service.ServiceInterface
	logger    *zap.Logger
	defaults  FormDefaults
	templates *template.Template
}

type flash struct {
	Category string
	Message  string
}

type pageData struct {
	Flash       *flash
	Form        model.WeatherQuery
	Stored      *model.StoredRecord
	UnitOptions []string
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger, defaults FormDefaults) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.Country == "" {
		defaults.Country = "US"
	}
	if defaults.Units == "" {
		defaults.Units = model.UnitsMetric
	}
	return &Handler{
		service:   service,
		logger:    logger,
		defaults:  defaults,
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")),
	}
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", pageData{
		Form: model.WeatherQuery{Country: h.defaults.Country, Units: h.defaults.Units},
	})
}

// Submit handles POST /
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	q := h.formQuery(r)

	stored, err := h.service.Record(r.Context(), q)
	if err != nil {
		h.logger.Error("Weather lookup failed",
			zap.String("stage", model.Stage(err)),
			zap.String("city", q.City),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		h.render(w, statusForError(err), "index.html", pageData{
			Flash: &flash{Category: "error", Message: model.UserMessage(err)},
			Form:  q,
		})
		return
	}

	h.render(w, http.StatusOK, "result.html", pageData{
		Flash: &flash{
			Category: "success",
			Message:  fmt.Sprintf("Weather data for %s, %s has been stored in the database.", q.City, q.Country),
		},
		Stored: stored,
	})
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	city := params.Get("city")
	if city == "" {
		writeJSONError(w, http.StatusBadRequest, "query parameter 'city' is required", "validation")
		return
	}

	q := model.WeatherQuery{
		City:    city,
		State:   strings.TrimSpace(params.Get("state")),
		Country: strings.TrimSpace(params.Get("country")),
		Units:   params.Get("units"),
	}
	if q.Units == "" {
		q.Units = h.defaults.Units
	}

	stored, err := h.service.Record(r.Context(), q)
	if err != nil {
		h.logger.Error("Weather lookup failed",
			zap.String("stage", model.Stage(err)),
			zap.String("city", q.City),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeJSONError(w, statusForError(err), apiErrorMessage(err), model.Stage(err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(stored); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) formQuery(r *http.Request) model.WeatherQuery {
	q := model.WeatherQuery{
		City:    r.PostFormValue("city"),
		State:   strings.TrimSpace(r.PostFormValue("state")),
		Country: strings.TrimSpace(r.PostFormValue("country")),
		Units:   r.PostFormValue("units"),
	}
	if q.Country == "" {
		q.Country = h.defaults.Country
	}
	if q.Units == "" {
		q.Units = h.defaults.Units
	}
	return q
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.UnitOptions = unitOptions

	var buf strings.Builder
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Error rendering template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func statusForError(err error) int {
	switch model.Stage(err) {
	case "validation":
		return http.StatusBadRequest
	case "fetch":
		if weatherapi.IsNotFound(err) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case "parse":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// apiErrorMessage keeps driver and SQL detail out of JSON responses
func apiErrorMessage(err error) string {
	if model.Stage(err) == "storage" {
		return "An error occurred while storing the data."
	}
	return model.UserMessage(err)
}

func writeJSONError(w http.ResponseWriter, status int, message, stage string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"stage": stage,
	})
}
