package gymstats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/gymtracker/internal/gymstats/exercises"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	defaultRecentWorkouts   = 5
	defaultProgressLastSets = 3
)

// rawField keeps the user input as typed. Both JSON strings and JSON numbers are accepted,
// so the validation of the text itself stays in one place.
type rawField string

func (f *rawField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = rawField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = rawField(n.String())
	return nil
}

type AddWorkoutRequest struct {
	ExerciseID rawField `json:"exerciseId"`
	Weight     rawField `json:"weight"`
	Reps       rawField `json:"reps"`
}

type RejectionResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type OneRepMaxResponse struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	OneRepMax int     `json:"oneRepMax"`
}

type Handler struct {
	tracker          *Tracker
	recentWorkouts   int
	progressLastSets int
}

type NewHandlerParams struct {
	Tracker          *Tracker
	RecentWorkouts   int
	ProgressLastSets int
}

func NewHandler(params NewHandlerParams) *Handler {
	if params.RecentWorkouts <= 0 {
		params.RecentWorkouts = defaultRecentWorkouts
	}
	if params.ProgressLastSets <= 0 {
		params.ProgressLastSets = defaultProgressLastSets
	}
	return &Handler{
		tracker:          params.Tracker,
		recentWorkouts:   params.RecentWorkouts,
		progressLastSets: params.ProgressLastSets,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	r := router.PathPrefix("/gymstats").Subrouter()
	r.HandleFunc("/exercises", handler.HandleExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/categories", handler.HandleCategories).Methods("GET", "OPTIONS").Name("list-categories")
	r.HandleFunc("/workouts", handler.HandleAddWorkout).Methods("POST", "OPTIONS").Name("add-workout")
	r.HandleFunc("/workouts/recent", handler.HandleRecentWorkouts).Methods("GET", "OPTIONS").Name("recent-workouts")
	r.HandleFunc("/exercises/{id}/progress", handler.HandleProgress).Methods("GET", "OPTIONS").Name("exercise-progress")
	r.HandleFunc("/exercises/{id}/best", handler.HandleBestPerformance).Methods("GET", "OPTIONS").Name("exercise-best")
	r.HandleFunc("/exercises/{id}/history", handler.HandleExerciseHistory).Methods("GET", "OPTIONS").Name("exercise-history")
	r.HandleFunc("/progress", handler.HandleOverview).Methods("GET", "OPTIONS").Name("progress-overview")
	r.HandleFunc("/onerepmax", handler.HandleOneRepMax).Methods("GET", "OPTIONS").Name("one-rep-max")
	r.HandleFunc("/plan/{category}", handler.HandleGeneratePlan).Methods("POST", "OPTIONS").Name("generate-plan")
	r.HandleFunc("/plan", handler.HandleCurrentPlan).Methods("GET", "OPTIONS").Name("current-plan")
}

func (handler *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises")
	defer span.End()

	pkg.WriteJSON(w, handler.tracker.Catalog(), http.StatusOK)
}

func (handler *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, handler.tracker.Categories(), http.StatusOK)
}

func (handler *Handler) HandleAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.addWorkout")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	set, err := handler.tracker.AddWorkout(ctx, string(req.ExerciseID), string(req.Weight), string(req.Reps))
	if err != nil {
		var rejection *exercises.Rejection
		if errors.As(err, &rejection) {
			log.Debugf("add workout rejected: %s", rejection)
			pkg.WriteJSON(w, RejectionResponse{
				Error:  rejection.Error(),
				Field:  rejection.Field,
				Reason: string(rejection.Reason),
			}, http.StatusUnprocessableEntity)
			return
		}
		log.Errorf("add workout: %s", err)
		http.Error(w, "add workout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, set, http.StatusCreated)
}

func (handler *Handler) HandleRecentWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", handler.recentWorkouts)
	if !ok {
		return
	}
	pkg.WriteJSON(w, handler.tracker.RecentWorkouts(limit), http.StatusOK)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.progress")
	defer span.End()

	id, ok := exerciseIDVar(w, r)
	if !ok {
		return
	}
	pkg.WriteJSON(w, handler.tracker.ProgressHistory(id), http.StatusOK)
}

func (handler *Handler) HandleBestPerformance(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.best")
	defer span.End()

	id, ok := exerciseIDVar(w, r)
	if !ok {
		return
	}
	best, found := handler.tracker.BestPerformance(id)
	if !found {
		http.Error(w, "no sets logged for exercise", http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, best, http.StatusOK)
}

func (handler *Handler) HandleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.history")
	defer span.End()

	id, ok := exerciseIDVar(w, r)
	if !ok {
		return
	}
	pkg.WriteJSON(w, handler.tracker.ExerciseHistory(id), http.StatusOK)
}

func (handler *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.overview")
	defer span.End()

	last, ok := queryInt(w, r, "last", handler.progressLastSets)
	if !ok {
		return
	}
	pkg.WriteJSON(w, handler.tracker.Overview(last), http.StatusOK)
}

func (handler *Handler) HandleOneRepMax(w http.ResponseWriter, r *http.Request) {
	weight, err := strconv.ParseFloat(r.URL.Query().Get("weight"), 64)
	if err != nil {
		http.Error(w, "error, weight must be a number", http.StatusBadRequest)
		return
	}
	reps, err := strconv.Atoi(r.URL.Query().Get("reps"))
	if err != nil {
		http.Error(w, "error, reps must be an integer", http.StatusBadRequest)
		return
	}
	if err := exercises.ValidateEstimate(weight, reps); err != nil {
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, OneRepMaxResponse{
		Weight:    weight,
		Reps:      reps,
		OneRepMax: handler.tracker.OneRepMax(weight, reps),
	}, http.StatusOK)
}

func (handler *Handler) HandleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.generatePlan")
	defer span.End()

	category := mux.Vars(r)["category"]
	if category == "" {
		http.Error(w, "error, category empty", http.StatusBadRequest)
		return
	}
	pkg.WriteJSON(w, handler.tracker.GeneratePlan(ctx, category), http.StatusOK)
}

func (handler *Handler) HandleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, handler.tracker.CurrentPlan(), http.StatusOK)
}

func exerciseIDVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return def, true
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		http.Error(w, "error, invalid parameter <"+name+">", http.StatusBadRequest)
		return 0, false
	}
	return val, true
}
