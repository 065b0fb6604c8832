package api

import (
	"github.com/alexivanou/weatherlog/internal/service"
	"github.com/alexivanou/weatherlog/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger, defaults FormDefaults) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger, defaults)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(RequestID, Logger(logger), Recovery(logger), SecurityHeaders)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Web form
	router.HandleFunc("/", handler.Index).Methods("GET")
	router.HandleFunc("/", handler.Submit).Methods("POST")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/weather", handler.GetWeather).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
