package gymstats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/gymstats/exercises"
	"github.com/2beens/gymtracker/internal/gymstats/plan"
	"github.com/2beens/gymtracker/internal/storage"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -destination=store_mocks_test.go -package=gymstats_test github.com/2beens/gymtracker/internal/storage Store

// State is everything the tracker knows: the exercise catalog and the workout log.
type State struct {
	Catalog exercises.Catalog
	Log     exercises.Log
}

type NewTrackerParams struct {
	Store     storage.Store
	Generator *plan.Generator
	Metrics   *metrics.Manager
	// Now defaults to time.Now
	Now func() time.Time
}

// Tracker holds the state in memory and writes it through to the store after
// every successful mutation. A failing store never fails an operation.
type Tracker struct {
	mutex sync.RWMutex
	state State
	// logLoaded is false while the persisted log could not be read;
	// until then it must not be overwritten.
	logLoaded bool
	plan      []plan.Item
	store     storage.Store
	generator *plan.Generator
	metrics   *metrics.Manager
	now       func() time.Time
}

func NewTracker(ctx context.Context, params NewTrackerParams) (*Tracker, error) {
	if params.Store == nil {
		return nil, errors.New("tracker store not set")
	}
	if params.Generator == nil {
		params.Generator = plan.NewGenerator(nil)
	}
	if params.Metrics == nil {
		return nil, errors.New("tracker metrics manager not set")
	}
	if params.Now == nil {
		params.Now = time.Now
	}

	t := &Tracker{
		plan:      make([]plan.Item, 0),
		store:     params.Store,
		generator: params.Generator,
		metrics:   params.Metrics,
		now:       params.Now,
	}
	t.state = t.loadState(ctx)
	t.metrics.GaugeLoggedSets.Set(float64(len(t.state.Log)))

	log.Debugf("tracker loaded: %d exercises, %d logged sets", len(t.state.Catalog), len(t.state.Log))
	return t, nil
}

func (t *Tracker) loadState(ctx context.Context) State {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.loadState")
	defer span.End()

	state := State{
		Catalog: exercises.DefaultCatalog(),
		Log:     exercises.Log{},
	}

	catalogBlob, err := t.store.Load(ctx, storage.KeyExercises)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Infoln("no saved exercise catalog, using and saving the default one")
		t.saveCatalog(ctx, state.Catalog)
	case err != nil:
		log.Errorf("load exercise catalog, using the default one: %s", err)
		t.metrics.CounterPersistenceFailures.WithLabelValues("load", storage.KeyExercises).Inc()
	default:
		if catalog, err := exercises.UnmarshalCatalog(catalogBlob); err != nil {
			log.Errorf("decode exercise catalog, using the default one: %s", err)
			t.metrics.CounterPersistenceFailures.WithLabelValues("decode", storage.KeyExercises).Inc()
		} else {
			state.Catalog = catalog
		}
	}

	workoutLog, err := t.loadLog(ctx)
	if err != nil {
		log.Errorf("%s, starting with an empty log until it can be read", err)
	} else {
		state.Log = workoutLog
		t.logLoaded = true
	}

	return state
}

// loadLog reads the persisted workouts. Records that cannot be read are moved to
// the quarantine key first, so the log can be written back without losing them.
func (t *Tracker) loadLog(ctx context.Context) (exercises.Log, error) {
	blob, err := t.store.Load(ctx, storage.KeyWorkouts)
	if errors.Is(err, storage.ErrNotFound) {
		log.Infoln("no saved workouts, starting with an empty log")
		return exercises.Log{}, nil
	}
	if err != nil {
		t.metrics.CounterPersistenceFailures.WithLabelValues("load", storage.KeyWorkouts).Inc()
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	workoutLog, unreadable := exercises.DecodeLog(blob)
	if len(unreadable) > 0 {
		log.Warnf("%d unreadable workout records, moving them to [%s]", len(unreadable), storage.KeyWorkoutsQuarantine)
		t.metrics.CounterPersistenceFailures.WithLabelValues("decode", storage.KeyWorkouts).Add(float64(len(unreadable)))
		if err := t.quarantine(ctx, unreadable); err != nil {
			t.metrics.CounterPersistenceFailures.WithLabelValues("quarantine", storage.KeyWorkoutsQuarantine).Inc()
			return nil, fmt.Errorf("quarantine workouts: %w", err)
		}
	}
	return workoutLog, nil
}

func (t *Tracker) quarantine(ctx context.Context, unreadable [][]byte) error {
	var records []exercises.QuarantinedRecord
	blob, err := t.store.Load(ctx, storage.KeyWorkoutsQuarantine)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return err
	default:
		if records, err = exercises.UnmarshalQuarantine(blob); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.Raw] = true
	}
	nowMs := t.now().UnixMilli()
	added := 0
	for _, raw := range unreadable {
		if seen[string(raw)] {
			continue
		}
		seen[string(raw)] = true
		records = append(records, exercises.QuarantinedRecord{Raw: string(raw), QuarantinedAt: nowMs})
		added++
	}
	if added == 0 {
		return nil
	}

	blob, err = exercises.MarshalQuarantine(records)
	if err != nil {
		return err
	}
	return t.store.Save(ctx, storage.KeyWorkoutsQuarantine, blob)
}

// persistLog writes the whole log through. While the persisted log is unread the
// load is retried first, and the sets added in the meantime go after the persisted ones.
func (t *Tracker) persistLog(ctx context.Context) {
	if !t.logLoaded {
		persisted, err := t.loadLog(ctx)
		if err != nil {
			log.Errorf("saved workouts still unreadable, keeping in-memory state only: %s", err)
			t.metrics.CounterPersistenceFailures.WithLabelValues("save_skipped", storage.KeyWorkouts).Inc()
			return
		}
		t.state.Log = append(persisted[:len(persisted):len(persisted)], t.state.Log...)
		t.logLoaded = true
		log.Infof("saved workouts loaded, %d sets in the log", len(t.state.Log))
	}

	blob, err := exercises.MarshalLog(t.state.Log)
	if err != nil {
		log.Errorf("marshal workouts: %s", err)
		return
	}
	t.save(ctx, storage.KeyWorkouts, blob)
}

func (t *Tracker) saveCatalog(ctx context.Context, catalog exercises.Catalog) {
	blob, err := exercises.MarshalCatalog(catalog)
	if err != nil {
		log.Errorf("marshal exercise catalog: %s", err)
		return
	}
	t.save(ctx, storage.KeyExercises, blob)
}

func (t *Tracker) save(ctx context.Context, key string, blob []byte) {
	if err := t.store.Save(ctx, key, blob); err != nil {
		log.Errorf("save [%s], keeping in-memory state only: %s", key, err)
		t.metrics.CounterPersistenceFailures.WithLabelValues("save", key).Inc()
	}
}

// AddWorkout validates the raw user input and appends a new set to the log.
// A rejection is returned as *exercises.Rejection and leaves the log untouched.
func (t *Tracker) AddWorkout(ctx context.Context, exerciseID, weight, reps string) (_ exercises.LoggedSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.addWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	input, err := exercises.ParseWorkoutInput(exerciseID, weight, reps)
	if err != nil {
		t.countRejection(err)
		return exercises.LoggedSet{}, err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	set, newLog, err := exercises.AddWorkout(t.state.Catalog, t.state.Log, input, t.now())
	if err != nil {
		t.countRejection(err)
		return exercises.LoggedSet{}, err
	}
	t.state.Log = newLog

	t.metrics.CounterWorkoutsAdded.Inc()
	span.SetAttributes(
		attribute.Int("exercise.id", set.ExerciseID),
		attribute.Int64("set.id", set.ID),
	)

	t.persistLog(ctx)
	t.metrics.GaugeLoggedSets.Set(float64(len(t.state.Log)))

	log.Debugf("set logged: %d [%s] %.2f x %d", set.ExerciseID, set.ExerciseName, set.Weight, set.Reps)
	return set, nil
}

func (t *Tracker) countRejection(err error) {
	var rejection *exercises.Rejection
	if errors.As(err, &rejection) {
		t.metrics.CounterWorkoutsRejected.WithLabelValues(rejection.Field, string(rejection.Reason)).Inc()
		return
	}
	t.metrics.CounterWorkoutsRejected.WithLabelValues("", "unknown").Inc()
}

// GeneratePlan replaces the current plan with a freshly drawn one for the category.
// Plans are never persisted.
func (t *Tracker) GeneratePlan(ctx context.Context, category string) []plan.Item {
	_, span := tracing.GlobalTracer.Start(ctx, "tracker.generatePlan")
	defer span.End()

	c, ok := exercises.ParseCategory(category)
	if !ok {
		log.Debugf("generate plan: unknown category [%s]", category)
		c = exercises.Category(category)
	}
	span.SetAttributes(attribute.String("category", string(c)))

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.plan = t.generator.Generate(t.state.Catalog, c)
	t.metrics.CounterPlansGenerated.WithLabelValues(string(c)).Inc()

	return append(make([]plan.Item, 0, len(t.plan)), t.plan...)
}

func (t *Tracker) CurrentPlan() []plan.Item {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append(make([]plan.Item, 0, len(t.plan)), t.plan...)
}

func (t *Tracker) Catalog() exercises.Catalog {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append(make(exercises.Catalog, 0, len(t.state.Catalog)), t.state.Catalog...)
}

func (t *Tracker) Categories() []exercises.Category {
	return exercises.Categories()
}

// Log returns a copy of the whole workout log in creation order.
func (t *Tracker) Log() exercises.Log {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append(make(exercises.Log, 0, len(t.state.Log)), t.state.Log...)
}

func (t *Tracker) RecentWorkouts(n int) []exercises.LoggedSet {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return exercises.RecentWorkouts(t.state.Log, n)
}

func (t *Tracker) ProgressHistory(exerciseID int) []exercises.LoggedSet {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return exercises.ProgressHistory(t.state.Log, exerciseID)
}

func (t *Tracker) BestPerformance(exerciseID int) (exercises.LoggedSet, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return exercises.BestPerformance(t.state.Log, exerciseID)
}

func (t *Tracker) ExerciseHistory(exerciseID int) exercises.ExerciseHistory {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return exercises.ExerciseHistoryFor(t.state.Log, exerciseID)
}

func (t *Tracker) Overview(lastN int) []exercises.ExerciseProgress {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return exercises.Overview(t.state.Catalog, t.state.Log, lastN)
}

// FindExercise looks the id up in the current catalog.
func (t *Tracker) FindExercise(exerciseID int) (exercises.Exercise, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.state.Catalog.Find(exerciseID)
}

func (t *Tracker) OneRepMax(weight float64, reps int) int {
	return exercises.OneRepMax(weight, reps)
}

func (t *Tracker) Close() error {
	if err := t.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
