package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"revenue-service/internal/reporting"
	"revenue-service/internal/service"
	"revenue-service/internal/storage"

	"github.com/gorilla/mux"
)

func setupDemoRouter() (*mux.Router, *storage.MemoryStorage, *service.DemoRideGenerator) {
	store := storage.NewMemoryStorage()
	generator := service.NewDemoRideGenerator(store, reporting.NewFareCalculator(nil), time.Hour, 3)

	router := mux.NewRouter()
	NewDemoHandler(generator).RegisterRoutes(router)
	return router, store, generator
}

func TestDemoHandler_StartStop(t *testing.T) {
	router, _, generator := setupDemoRouter()

	rr := serve(router, "POST", "/demo/start")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !generator.IsRunning() {
		t.Error("Expected generator to be running")
	}

	rr = serve(router, "GET", "/demo/status")
	var status map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&status)
	if status["running"] != true {
		t.Errorf("Expected running status, got %v", status["running"])
	}

	serve(router, "POST", "/demo/stop")
	if generator.IsRunning() {
		t.Error("Expected generator to be stopped")
	}
}

func TestDemoHandler_Seed(t *testing.T) {
	router, store, _ := setupDemoRouter()

	rr := serve(router, "POST", "/demo/seed?rides=25")
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	if store.RideCount() != 25 {
		t.Errorf("Expected 25 rides, got %d", store.RideCount())
	}

	rr = serve(router, "POST", "/demo/seed?rides=0")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}
