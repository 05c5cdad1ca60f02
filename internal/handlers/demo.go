package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"revenue-service/internal/service"

	"github.com/gorilla/mux"
)

// DemoHandler handles demo-related HTTP requests
type DemoHandler struct {
	demoGenerator *service.DemoRideGenerator
}

// NewDemoHandler creates a new demo handler
func NewDemoHandler(demoGenerator *service.DemoRideGenerator) *DemoHandler {
	return &DemoHandler{
		demoGenerator: demoGenerator,
	}
}

// RegisterRoutes sets up demo HTTP routes
func (h *DemoHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/demo/start", h.StartDemo).Methods("POST")
	router.HandleFunc("/demo/stop", h.StopDemo).Methods("POST")
	router.HandleFunc("/demo/status", h.GetDemoStatus).Methods("GET")
	router.HandleFunc("/demo/seed", h.SeedDemo).Methods("POST")
}

// maxSeedRides caps a single backfill request.
const maxSeedRides = 5000

// SeedDemo backfills ride history, 100 rides unless ?rides= says otherwise
func (h *DemoHandler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	rides := 100
	if v := r.URL.Query().Get("rides"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSeedRides {
			http.Error(w, "Invalid rides count", http.StatusBadRequest)
			return
		}
		rides = n
	}

	if err := h.demoGenerator.SeedRides(r.Context(), rides); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":          "seeded",
		"rides":           rides,
		"rides_generated": h.demoGenerator.RidesGenerated(),
	})
}

// StartDemo starts the demo ride generator
func (h *DemoHandler) StartDemo(w http.ResponseWriter, r *http.Request) {
	h.demoGenerator.Start()

	response := map[string]interface{}{
		"status":  "started",
		"message": "Demo ride generator started",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// StopDemo stops the demo ride generator
func (h *DemoHandler) StopDemo(w http.ResponseWriter, r *http.Request) {
	h.demoGenerator.Stop()

	response := map[string]interface{}{
		"status":  "stopped",
		"message": "Demo ride generator stopped",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetDemoStatus returns the current demo status
func (h *DemoHandler) GetDemoStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"running":         h.demoGenerator.IsRunning(),
		"rides_generated": h.demoGenerator.RidesGenerated(),
		"status":          "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
