package profile

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/liftmates/internal/engine"
	"github.com/2beens/liftmates/internal/telemetry/metrics"
	"github.com/2beens/liftmates/internal/workouts"

	log "github.com/sirupsen/logrus"
)

const defaultSyncTimeout = 10 * time.Second

type statusService interface {
	SetDayStatus(ctx context.Context, userID, day string, status DayStatus) error
}

type sessionLogger interface {
	LogSession(ctx context.Context, summary workouts.SessionSummary) error
}

// pendingSummary is a completed workout whose remote sync did not fully
// go through yet. It is retried on the next completion or on demand.
type pendingSummary struct {
	userID      string
	day         string
	summary     *workouts.SessionSummary
	statusDone  bool
	summaryDone bool
}

// Store mirrors each user's training state and pushes lifecycle
// changes out to the spreadsheet. It implements engine.Notifier. The
// local mirror is updated first and survives failed remote syncs, the
// sheet catches up on the next completed workout.
type Store struct {
	mu      sync.Mutex
	states  map[string]*UserState
	pending []*pendingSummary

	statusService statusService
	sessionLogger sessionLogger
	metrics       *metrics.Manager
	syncTimeout   time.Duration
	syncWG        sync.WaitGroup
}

func NewStore(
	statusService statusService,
	sessionLogger sessionLogger,
	metricsManager *metrics.Manager,
) *Store {
	return &Store{
		states:        make(map[string]*UserState),
		statusService: statusService,
		sessionLogger: sessionLogger,
		metrics:       metricsManager,
		syncTimeout:   defaultSyncTimeout,
	}
}

func (s *Store) Notify(_ context.Context, event engine.Event) {
	if !event.Type.IsValid() {
		log.Warnf("profile store: unknown event type: %s", event.Type)
		return
	}

	s.mu.Lock()
	state := s.stateLocked(event.UserID)

	switch event.Type {
	case engine.EventWorkoutStarted:
		state.WorkoutActive = true
		s.mu.Unlock()

	case engine.EventWorkoutCompleted:
		state.WorkoutActive = false
		state.Streak++
		completedAt := event.Timestamp
		state.LastWorkoutDate = &completedAt
		if event.Summary != nil {
			state.LastDuration = event.Summary.Duration
			state.LastProgress = event.Summary.Progress
		}
		s.mu.Unlock()

		// the engine must not wait for the spreadsheet
		s.syncWG.Add(1)
		go s.syncCompleted(event)

	case engine.EventWorkoutCancelled:
		state.WorkoutActive = false
		state.Streak = 0
		s.mu.Unlock()
	}
}

// State returns the local mirror of a user's training state.
func (s *Store) State(userID string) UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.stateLocked(userID)
}

// stateLocked returns the state of the user, creating it on first
// access. Callers hold the mutex.
func (s *Store) stateLocked(userID string) *UserState {
	state, ok := s.states[userID]
	if !ok {
		state = &UserState{UserID: userID}
		s.states[userID] = state
	}
	return state
}

// syncCompleted marks the completion's weekday in the weekly status
// sheet and logs the finished session, together with anything still
// pending from earlier failed syncs. Failures are logged and counted,
// the local state stays as it is and the entry waits for a retry.
func (s *Store) syncCompleted(event engine.Event) {
	defer s.syncWG.Done()

	entry := &pendingSummary{
		userID: event.UserID,
		day:    event.Timestamp.Weekday().String(),
	}
	if event.Summary != nil {
		entry.summary = &workouts.SessionSummary{
			UserID:               event.UserID,
			WorkoutDate:          event.Timestamp.Format("2006-01-02"),
			Duration:             event.Summary.Duration,
			DurationSeconds:      event.Summary.TotalSeconds,
			CompletionPercentage: event.Summary.Progress,
			CompletedSets:        event.Summary.CompletedSets,
			TotalSets:            event.Summary.TotalSets,
			CompletedAt:          event.Summary.CompletedAt,
		}
	} else {
		entry.summaryDone = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	s.mu.Lock()
	queue := append(s.pending, entry)
	s.pending = nil
	s.mu.Unlock()

	s.drain(ctx, queue)
}

// SyncPending retries summaries from earlier failed syncs. Called on
// shutdown so nothing completed is silently lost.
func (s *Store) SyncPending(ctx context.Context) {
	s.mu.Lock()
	queue := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.drain(ctx, queue)
}

func (s *Store) drain(ctx context.Context, queue []*pendingSummary) {
	var remaining []*pendingSummary
	for _, entry := range queue {
		if !s.push(ctx, entry) {
			remaining = append(remaining, entry)
		}
	}
	if len(remaining) == 0 {
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, remaining...)
	s.mu.Unlock()
}

// push attempts the remote writes an entry still needs and reports
// whether the entry is fully synced.
func (s *Store) push(ctx context.Context, entry *pendingSummary) bool {
	if !entry.statusDone {
		if err := s.statusService.SetDayStatus(ctx, entry.userID, entry.day, DayCompleted); err != nil {
			log.Errorf("profile store: sync weekly status for [%s] failed, keeping local state: %s", entry.userID, err)
			s.countSyncFailure()
		} else {
			entry.statusDone = true
		}
	}

	if !entry.summaryDone {
		if err := s.sessionLogger.LogSession(ctx, *entry.summary); err != nil {
			log.Errorf("profile store: log session for [%s] failed: %s", entry.userID, err)
			s.countSyncFailure()
		} else {
			entry.summaryDone = true
		}
	}

	return entry.statusDone && entry.summaryDone
}

func (s *Store) countSyncFailure() {
	if s.metrics != nil {
		s.metrics.CounterSyncFailures.Inc()
	}
}

// WaitForSync blocks until in-flight remote syncs finish. Used on
// shutdown and in tests.
func (s *Store) WaitForSync() {
	s.syncWG.Wait()
}
