//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/gymtracker/internal/gymstats"
	"github.com/2beens/gymtracker/internal/gymstats/exercises"
	"github.com/2beens/gymtracker/internal/gymstats/plan"
	"github.com/2beens/gymtracker/internal/storage"
	pkgtesting "github.com/2beens/gymtracker/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path string,
	body any,
) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) TestGymStats() {
	ctx := context.Background()
	t := s.T()

	status, body := s.doRequest(ctx, "GET", "/gymstats/exercises", nil)
	require.Equal(t, http.StatusOK, status)
	var catalog exercises.Catalog
	require.NoError(t, json.Unmarshal(body, &catalog))
	require.Equal(t, exercises.DefaultCatalog(), catalog)

	// first run persisted the default catalog
	rdbCtx, rdb := pkgtesting.GetRedisClientAndCtx(t, s.redisPort)
	storedCatalog, err := rdb.Get(rdbCtx, redisPrefix+storage.KeyExercises).Bytes()
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(storedCatalog))

	sets := []gymstats.AddWorkoutRequest{
		{ExerciseID: "1", Weight: "60", Reps: "10"},
		{ExerciseID: "1", Weight: "70", Reps: "8"},
		{ExerciseID: "2", Weight: "100", Reps: "5"},
	}
	for _, set := range sets {
		status, body = s.doRequest(ctx, "POST", "/gymstats/workouts", set)
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body = s.doRequest(ctx, "POST", "/gymstats/workouts", gymstats.AddWorkoutRequest{
		ExerciseID: "42", Weight: "60", Reps: "10",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	var rejection gymstats.RejectionResponse
	require.NoError(t, json.Unmarshal(body, &rejection))
	assert.Equal(t, "exerciseId", rejection.Field)

	storedLog, err := rdb.Get(rdbCtx, redisPrefix+storage.KeyWorkouts).Bytes()
	require.NoError(t, err)
	workoutLog, err := exercises.UnmarshalLog(storedLog)
	require.NoError(t, err)
	require.Len(t, workoutLog, 3)

	status, body = s.doRequest(ctx, "GET", "/gymstats/exercises/1/best", nil)
	require.Equal(t, http.StatusOK, status)
	var best exercises.LoggedSet
	require.NoError(t, json.Unmarshal(body, &best))
	// 70x8 -> 89, 60x10 -> 80
	assert.Equal(t, float64(70), best.Weight)

	status, _ = s.doRequest(ctx, "GET", "/gymstats/exercises/3/best", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.doRequest(ctx, "POST", "/gymstats/plan/chest", nil)
	require.Equal(t, http.StatusOK, status)
	var items []plan.Item
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Bench Press", items[0].Name)
	assert.Equal(t, "Incline Bench Press", items[1].Name)

	// state survives a restart
	s.restartServer(ctx)

	status, body = s.doRequest(ctx, "GET", "/gymstats/workouts/recent?limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	var recent []exercises.LoggedSet
	require.NoError(t, json.Unmarshal(body, &recent))
	require.Len(t, recent, 3)
	assert.Equal(t, 2, recent[0].ExerciseID)

	status, body = s.doRequest(ctx, "GET", fmt.Sprintf("/gymstats/onerepmax?weight=%d&reps=%d", 100, 10), nil)
	require.Equal(t, http.StatusOK, status)
	var orm gymstats.OneRepMaxResponse
	require.NoError(t, json.Unmarshal(body, &orm))
	assert.Equal(t, 133, orm.OneRepMax)
}
