package roster

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"revenue-service/internal/reporting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetAllDrivers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drivers", r.URL.Path)
		json.NewEncoder(w).Encode([]reporting.DriverRecord{
			{ID: "doc-1", UID: "uid-1", Username: "juan"},
			{ID: "doc-2", DisplayName: "Maria"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	drivers, err := client.GetAllDrivers(context.Background())

	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "uid-1", drivers[0].UID)
	assert.Equal(t, "Maria", drivers[1].DisplayName)
}

func TestClient_GetDriver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drivers/uid-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(reporting.DriverRecord{ID: "doc-1", UID: "uid-1", Username: "juan"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	driver, err := client.GetDriver(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "juan", driver.Username)

	_, err = client.GetDriver(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetAllDrivers(context.Background())

	assert.True(t, errors.Is(err, ErrRosterUnavailable))
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, err := client.GetAllDrivers(context.Background())

	assert.ErrorIs(t, err, ErrRosterUnavailable)
}
