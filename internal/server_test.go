package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/gymtracker/internal/config"
	"github.com/2beens/gymtracker/internal/gymstats/exercises"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), NewServerParams{
		Config: &config.Config{
			StorageDriver:  "file",
			DataDir:        t.TempDir(),
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		VersionInfo: "test-version",
	})
	require.NoError(t, err)
	t.Cleanup(s.GracefulShutdown)
	return s
}

func TestServer_Router(t *testing.T) {
	s := newTestServer(t)
	router := s.routerSetup()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/gymstats/exercises", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var catalog exercises.Catalog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &catalog))
	assert.Len(t, catalog, 8)

	req := httptest.NewRequest("POST", "/gymstats/workouts", strings.NewReader(`{"exerciseId":"1","weight":"60","reps":"8"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Len(t, s.Tracker().Log(), 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metricsManager.CounterWorkoutsAdded))

	req = httptest.NewRequest("GET", "/gymstats/exercises", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/version", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "test-version", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/weather", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metricsManager.CounterRequests.WithLabelValues("POST", "201")))
}

func TestServer_StatePersistsAcrossRestart(t *testing.T) {
	dataDir := t.TempDir()
	cfg := &config.Config{StorageDriver: "file", DataDir: dataDir}

	s, err := NewServer(context.Background(), NewServerParams{Config: cfg})
	require.NoError(t, err)
	_, err = s.Tracker().AddWorkout(context.Background(), "3", "140", "5")
	require.NoError(t, err)
	s.GracefulShutdown()

	restarted, err := NewServer(context.Background(), NewServerParams{Config: cfg})
	require.NoError(t, err)
	defer restarted.GracefulShutdown()

	workoutLog := restarted.Tracker().Log()
	require.Len(t, workoutLog, 1)
	assert.Equal(t, "Deadlift", workoutLog[0].ExerciseName)
	best, found := restarted.Tracker().BestPerformance(3)
	require.True(t, found)
	assert.Equal(t, float64(140), best.Weight)
}

func TestNewServer_UnknownStorageDriver(t *testing.T) {
	_, err := NewServer(context.Background(), NewServerParams{
		Config: &config.Config{StorageDriver: "cassandra"},
	})
	assert.Error(t, err)
}
