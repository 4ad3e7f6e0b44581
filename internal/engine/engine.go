// Package engine holds the workout session state machine. Each user
// has at most one active session with a set timer and a rest timer,
// of which at most one runs at any moment. All mutations go through
// the engine so the two users can train side by side without stepping
// on each other's state.
package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/liftmates/internal/telemetry/metrics"
	"github.com/2beens/liftmates/internal/telemetry/tracing"
	"github.com/2beens/liftmates/internal/workouts"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoActiveSession = errors.New("no active workout session")
	ErrEmptyPlan       = errors.New("workout plan has no exercises")
)

type Engine struct {
	mu          sync.Mutex
	sessions    map[string]*SessionState
	activeUsers map[string]struct{}
	status      Status

	// sharedNow is refreshed once per second by a single shared tick
	// goroutine while anyone is training, and read by timer displays.
	sharedNow  atomic.Int64
	tickerOn   bool
	tickerDone chan struct{}

	notifier   Notifier
	snapshots  SnapshotStore
	metrics    *metrics.Manager
	graceDelay time.Duration

	// ability to inject the clock (for unit testing)
	nowFunc func() time.Time
}

type Params struct {
	Notifier   Notifier
	Snapshots  SnapshotStore
	Metrics    *metrics.Manager
	GraceDelay time.Duration
}

func New(params Params) *Engine {
	return &Engine{
		sessions:    make(map[string]*SessionState),
		activeUsers: make(map[string]struct{}),
		status:      StatusIdle,
		notifier:    params.Notifier,
		snapshots:   params.Snapshots,
		metrics:     params.Metrics,
		graceDelay:  params.GraceDelay,
		nowFunc:     time.Now,
	}
}

// RestoreSessions loads persisted sessions after a restart. Restored
// sessions come back paused, the user resumes explicitly.
func (e *Engine) RestoreSessions(ctx context.Context) error {
	restored, err := e.snapshots.Restore(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for userID, state := range restored {
		e.sessions[userID] = state
		e.activeUsers[userID] = struct{}{}
		log.Infof("restored workout session for [%s]: %s", userID, state.Plan.Title)
	}

	if len(e.activeUsers) > 0 {
		e.status = StatusPaused
		e.startTicker()
		e.updateActiveSessionsGauge()
	}
	return nil
}

// StartWorkout begins a new session for the user with the given plan.
// Any previous session of that user is discarded.
func (e *Engine) StartWorkout(ctx context.Context, userID string, plan *workouts.Plan) (*SessionState, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.startWorkout")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	if plan == nil || len(plan.Exercises) == 0 {
		return nil, ErrEmptyPlan
	}

	e.mu.Lock()
	now := e.nowFunc()
	state := &SessionState{
		UserID:      userID,
		Plan:        plan,
		StartedAt:   now,
		SetTimer:    SetTimer{SetIndex: -1},
		CheckedSets: make(map[string]bool),
		SetTimings:  make(map[string]int),
		TotalSets:   plan.TotalSets(),
	}
	e.sessions[userID] = state
	e.activeUsers[userID] = struct{}{}
	e.status = StatusActive
	e.startTicker()
	e.persist(ctx, state)
	e.updateActiveSessionsGauge()
	stateCopy := copyState(state)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.CounterSessionsStarted.With(prometheus.Labels{"user": userID}).Inc()
	}
	e.notify(ctx, Event{
		Type:      EventWorkoutStarted,
		UserID:    userID,
		Timestamp: now,
		Plan:      plan,
	})

	log.Infof("workout started for [%s]: %s", userID, plan.Title)
	return stateCopy, nil
}

// StartSet begins timing a set. A still running set timer of the same
// user is ended first and recorded with the time it got, the rest
// timer is stopped and its elapsed time discarded. Only one of the two
// timers ever runs.
func (e *Engine) StartSet(ctx context.Context, userID, exerciseID string, setIndex int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.startSet")
	defer span.End()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("exercise", exerciseID),
		attribute.Int("set", setIndex),
	)

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}

	now := e.nowFunc().UnixMilli()
	if state.SetTimer.Running {
		e.endSetLocked(state, now, state.SetTimer.ExerciseID, state.SetTimer.SetIndex)
	}
	if state.RestTimer.Running {
		state.RestTimer = RestTimer{}
	}

	state.SetTimer = SetTimer{
		Running:    true,
		StartedAt:  now,
		ExerciseID: exerciseID,
		SetIndex:   setIndex,
	}
	e.startTicker()
	e.persist(ctx, state)
	return nil
}

// EndSet finishes the running set, recording it under the given
// exercise and set index (the running timer's own identity when no
// exercise is given), and starts the rest timer. Without a running set
// timer it is a no-op, the client may fire it twice.
func (e *Engine) EndSet(ctx context.Context, userID, exerciseID string, setIndex int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.endSet")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return 0, ErrNoActiveSession
	}
	if !state.SetTimer.Running {
		return 0, nil
	}

	if exerciseID == "" {
		exerciseID = state.SetTimer.ExerciseID
		setIndex = state.SetTimer.SetIndex
	}

	duration := e.endSetLocked(state, e.nowFunc().UnixMilli(), exerciseID, setIndex)
	e.persist(ctx, state)
	return duration, nil
}

// endSetLocked records the running set under the given key and flips
// over to resting. A set done again only replaces its recorded time,
// it is counted once. Callers hold the mutex.
func (e *Engine) endSetLocked(state *SessionState, nowMilli int64, exerciseID string, setIndex int) int {
	duration := elapsedSeconds(nowMilli, state.SetTimer.StartedAt)

	key := SetKey(exerciseID, setIndex)
	if state.CheckedSets[key] {
		state.TotalWorkoutTime += duration - state.SetTimings[key]
	} else {
		state.CheckedSets[key] = true
		state.CompletedSets++
		state.TotalWorkoutTime += duration
	}
	state.SetTimings[key] = duration

	state.SetTimer = SetTimer{SetIndex: -1}
	state.RestTimer = RestTimer{
		Running:   true,
		StartedAt: nowMilli,
	}

	if e.metrics != nil {
		e.metrics.CounterSetsCompleted.With(prometheus.Labels{"user": state.UserID}).Inc()
	}
	return duration
}

// Pause freezes whichever timer is running, keeping its identity and
// elapsed seconds so Resume can pick up exactly where it left off.
func (e *Engine) Pause(ctx context.Context, userID string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.pause")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}

	now := e.nowFunc().UnixMilli()
	e.status = StatusPaused

	if state.SetTimer.Running {
		state.SetTimer.Duration = elapsedSeconds(now, state.SetTimer.StartedAt)
		state.SetTimer.Running = false
	}
	if state.RestTimer.Running {
		state.RestTimer.Duration = elapsedSeconds(now, state.RestTimer.StartedAt)
		state.RestTimer.Running = false
	}

	e.persist(ctx, state)
	return nil
}

// Resume restarts a paused timer by moving its start time into the
// past by the stored duration. The set timer wins over the rest timer.
func (e *Engine) Resume(ctx context.Context, userID string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.resume")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}

	now := e.nowFunc().UnixMilli()
	e.status = StatusActive

	if state.SetTimer.ExerciseID != "" && state.SetTimer.Duration > 0 {
		state.SetTimer.StartedAt = now - int64(state.SetTimer.Duration)*1000
		state.SetTimer.Running = true
	}
	if state.RestTimer.Duration > 0 && !state.SetTimer.Running {
		state.RestTimer.StartedAt = now - int64(state.RestTimer.Duration)*1000
		state.RestTimer.Running = true
	}

	e.startTicker()
	e.persist(ctx, state)
	return nil
}

// Complete closes the session and returns its summary. The shared
// status goes back to idle after a short grace period, provided nobody
// else is still training.
func (e *Engine) Complete(ctx context.Context, userID string) (*Summary, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.complete")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	e.mu.Lock()
	state, ok := e.sessions[userID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrNoActiveSession
	}

	now := e.nowFunc()
	summary := &Summary{
		UserID:        userID,
		Title:         state.Plan.Title,
		Duration:      FormatSeconds(state.TotalWorkoutTime),
		TotalSeconds:  state.TotalWorkoutTime,
		Progress:      state.Progress(),
		CompletedSets: state.CompletedSets,
		TotalSets:     state.TotalSets,
		CompletedAt:   now,
	}

	delete(e.sessions, userID)
	delete(e.activeUsers, userID)
	e.status = StatusCompleted
	e.stopTickerIfIdle()
	e.updateActiveSessionsGauge()
	e.dropSnapshot(ctx, userID)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.CounterSessionsCompleted.With(prometheus.Labels{"user": userID}).Inc()
	}
	e.notify(ctx, Event{
		Type:      EventWorkoutCompleted,
		UserID:    userID,
		Timestamp: now,
		Summary:   summary,
	})

	// the "completed" status lingers for a moment so the other side of
	// the gym can see it, then the floor goes idle
	time.AfterFunc(e.graceDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if len(e.activeUsers) == 0 {
			e.status = StatusIdle
		}
	})

	log.Infof("workout completed for [%s]: %s in %s", userID, summary.Title, summary.Duration)
	return summary, nil
}

// Cancel throws the session away. Only the given user is reset, a
// session of the other user stays untouched.
func (e *Engine) Cancel(ctx context.Context, userID string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	e.mu.Lock()
	if _, ok := e.sessions[userID]; !ok {
		e.mu.Unlock()
		return ErrNoActiveSession
	}

	delete(e.sessions, userID)
	delete(e.activeUsers, userID)
	if len(e.activeUsers) == 0 {
		e.status = StatusIdle
	}
	e.stopTickerIfIdle()
	e.updateActiveSessionsGauge()
	e.dropSnapshot(ctx, userID)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.CounterSessionsCancelled.With(prometheus.Labels{"user": userID}).Inc()
	}
	e.notify(ctx, Event{
		Type:      EventWorkoutCancelled,
		UserID:    userID,
		Timestamp: e.nowFunc(),
	})

	log.Infof("workout cancelled for [%s]", userID)
	return nil
}

// Session returns a copy of the user's session state.
func (e *Engine) Session(userID string) (*SessionState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return nil, false
	}
	return copyState(state), true
}

// Progress returns the user's completion percentage, 0 without a
// session.
func (e *Engine) Progress(userID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return 0
	}
	return state.Progress()
}

// TimerInfo returns what the user's timer shows right now and what it
// is counting. Paused and missing sessions show a ready 00:00.
func (e *Engine) TimerInfo(userID string) (string, TimerMode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return FormatSeconds(0), TimerModeReady
	}

	now := e.clockMilli()
	switch {
	case state.SetTimer.Running:
		return FormatSeconds(elapsedSeconds(now, state.SetTimer.StartedAt)), TimerModeSet
	case state.RestTimer.Running:
		return FormatSeconds(elapsedSeconds(now, state.RestTimer.StartedAt)), TimerModeRest
	default:
		return FormatSeconds(0), TimerModeReady
	}
}

// TotalTime returns the accumulated training time (finished sets) of
// the user's session, formatted mm:ss.
func (e *Engine) TotalTime(userID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[userID]
	if !ok {
		return FormatSeconds(0)
	}
	return FormatSeconds(state.TotalWorkoutTime)
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) ActiveUsers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	users := make([]string, 0, len(e.activeUsers))
	for userID := range e.activeUsers {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Close stops the shared tick goroutine regardless of active users.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tickerOn {
		close(e.tickerDone)
		e.tickerOn = false
		e.sharedNow.Store(0)
	}
}

// startTicker launches the single shared tick goroutine. Callers hold
// the mutex.
func (e *Engine) startTicker() {
	if e.tickerOn {
		return
	}
	e.tickerOn = true
	e.tickerDone = make(chan struct{})
	go e.tickLoop(e.tickerDone)
	log.Debugln("engine: shared timer tick started")
}

// stopTickerIfIdle stops the tick goroutine once no user has an
// active session. Callers hold the mutex.
func (e *Engine) stopTickerIfIdle() {
	if e.tickerOn && len(e.activeUsers) == 0 {
		close(e.tickerDone)
		e.tickerOn = false
		e.sharedNow.Store(0)
		log.Debugln("engine: shared timer tick stopped")
	}
}

func (e *Engine) tickLoop(done chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.sharedNow.Store(e.nowFunc().UnixMilli())
		case <-done:
			return
		}
	}
}

// clockMilli prefers the shared ticking clock and falls back to the
// wall clock before the first tick.
func (e *Engine) clockMilli() int64 {
	if now := e.sharedNow.Load(); now > 0 {
		return now
	}
	return e.nowFunc().UnixMilli()
}

// persist stamps and snapshots the state. A failed snapshot is logged
// and never fails the operation, training goes on without redis.
func (e *Engine) persist(ctx context.Context, state *SessionState) {
	state.UpdatedAt = e.nowFunc().UnixMilli()
	if e.snapshots == nil {
		return
	}
	if err := e.snapshots.Save(ctx, state); err != nil {
		log.Errorf("persist session snapshot for [%s]: %s", state.UserID, err)
	}
}

func (e *Engine) dropSnapshot(ctx context.Context, userID string) {
	if e.snapshots == nil {
		return
	}
	if err := e.snapshots.Delete(ctx, userID); err != nil {
		log.Errorf("delete session snapshot for [%s]: %s", userID, err)
	}
}

func (e *Engine) notify(ctx context.Context, event Event) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, event)
}

func (e *Engine) updateActiveSessionsGauge() {
	if e.metrics == nil {
		return
	}
	e.metrics.GaugeActiveSessions.Set(float64(len(e.activeUsers)))
}

func copyState(state *SessionState) *SessionState {
	stateCopy := *state
	stateCopy.CheckedSets = make(map[string]bool, len(state.CheckedSets))
	for k, v := range state.CheckedSets {
		stateCopy.CheckedSets[k] = v
	}
	stateCopy.SetTimings = make(map[string]int, len(state.SetTimings))
	for k, v := range state.SetTimings {
		stateCopy.SetTimings[k] = v
	}
	return &stateCopy
}
