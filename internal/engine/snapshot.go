package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	snapshotKeyPrefix = "liftmates-snapshot||"
	snapshotUsersKey  = "liftmates-snapshot-users"
)

// SnapshotStore persists session state across service restarts.
type SnapshotStore interface {
	Save(ctx context.Context, state *SessionState) error
	Delete(ctx context.Context, userID string) error
	Restore(ctx context.Context) (map[string]*SessionState, error)
}

type RedisSnapshotStore struct {
	redisClient *redis.Client
}

func NewRedisSnapshotStore(redisClient *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		redisClient: redisClient,
	}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, state *SessionState) error {
	stateJson, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	key := snapshotKeyPrefix + state.UserID
	if err := s.redisClient.Set(ctx, key, stateJson, 0).Err(); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	if err := s.redisClient.SAdd(ctx, snapshotUsersKey, state.UserID).Err(); err != nil {
		return fmt.Errorf("add snapshot user: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, userID string) error {
	key := snapshotKeyPrefix + userID
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	if err := s.redisClient.SRem(ctx, snapshotUsersKey, userID).Err(); err != nil {
		return fmt.Errorf("remove snapshot user: %w", err)
	}
	return nil
}

// Restore loads all persisted sessions. Timers that were running when
// the snapshot was taken are converted to paused ones, with the time
// elapsed up to the snapshot preserved as the stored duration. The
// wall clock moved on while we were down, counting that gap as
// training time would be wrong.
func (s *RedisSnapshotStore) Restore(ctx context.Context) (map[string]*SessionState, error) {
	cmd := s.redisClient.SMembers(ctx, snapshotUsersKey)
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("get snapshot users: %w", err)
	}

	sessions := make(map[string]*SessionState)
	for _, userID := range cmd.Val() {
		key := snapshotKeyPrefix + userID
		stateJson, err := s.redisClient.Get(ctx, key).Result()
		if err != nil {
			log.Errorf("restore session snapshot for [%s]: %s", userID, err)
			continue
		}

		var state SessionState
		if err := json.Unmarshal([]byte(stateJson), &state); err != nil {
			log.Errorf("restore session snapshot for [%s], unmarshal: %s", userID, err)
			continue
		}

		pauseStaleTimers(&state)
		sessions[userID] = &state
	}

	return sessions, nil
}

func pauseStaleTimers(state *SessionState) {
	if state.SetTimer.Running {
		state.SetTimer.Duration = elapsedSeconds(state.UpdatedAt, state.SetTimer.StartedAt)
		state.SetTimer.Running = false
	}
	if state.RestTimer.Running {
		state.RestTimer.Duration = elapsedSeconds(state.UpdatedAt, state.RestTimer.StartedAt)
		state.RestTimer.Running = false
	}
}

func elapsedSeconds(nowMilli, startedAtMilli int64) int {
	elapsed := int((nowMilli - startedAtMilli) / 1000)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
