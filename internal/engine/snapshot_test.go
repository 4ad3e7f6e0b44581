package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/2beens/liftmates/internal/workouts"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSnapshotStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisSnapshotStore(db)

	state := &SessionState{
		UserID:        "a",
		Plan:          &workouts.Plan{ID: "w-1", UserID: "a", Title: "Test Day"},
		CompletedSets: 1,
		TotalSets:     5,
		UpdatedAt:     1710324000000,
	}
	stateJson, err := json.Marshal(state)
	require.NoError(t, err)

	mock.ExpectSet(snapshotKeyPrefix+"a", stateJson, 0).SetVal("OK")
	mock.ExpectSAdd(snapshotUsersKey, "a").SetVal(1)

	require.NoError(t, store.Save(context.Background(), state))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSnapshotStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisSnapshotStore(db)

	mock.ExpectDel(snapshotKeyPrefix + "a").SetVal(1)
	mock.ExpectSRem(snapshotUsersKey, "a").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSnapshotStore_Restore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisSnapshotStore(db)

	// a was mid-set when the snapshot was taken, 9s into it
	stateA := &SessionState{
		UserID:    "a",
		Plan:      &workouts.Plan{ID: "w-1", UserID: "a", Title: "Test Day"},
		UpdatedAt: 1710324009000,
		SetTimer: SetTimer{
			Running:    true,
			StartedAt:  1710324000000,
			ExerciseID: "ex-1",
			SetIndex:   2,
		},
	}
	// b was resting, 30s in
	stateB := &SessionState{
		UserID:    "b",
		Plan:      &workouts.Plan{ID: "w-2", UserID: "b", Title: "Other Day"},
		UpdatedAt: 1710324030000,
		RestTimer: RestTimer{
			Running:   true,
			StartedAt: 1710324000000,
		},
	}
	stateAJson, err := json.Marshal(stateA)
	require.NoError(t, err)
	stateBJson, err := json.Marshal(stateB)
	require.NoError(t, err)

	mock.ExpectSMembers(snapshotUsersKey).SetVal([]string{"a", "b"})
	mock.ExpectGet(snapshotKeyPrefix + "a").SetVal(string(stateAJson))
	mock.ExpectGet(snapshotKeyPrefix + "b").SetVal(string(stateBJson))

	sessions, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// running timers come back paused with the elapsed time preserved
	restoredA := sessions["a"]
	require.NotNil(t, restoredA)
	assert.False(t, restoredA.SetTimer.Running)
	assert.Equal(t, 9, restoredA.SetTimer.Duration)
	assert.Equal(t, "ex-1", restoredA.SetTimer.ExerciseID)
	assert.Equal(t, 2, restoredA.SetTimer.SetIndex)

	restoredB := sessions["b"]
	require.NotNil(t, restoredB)
	assert.False(t, restoredB.RestTimer.Running)
	assert.Equal(t, 30, restoredB.RestTimer.Duration)
}

func TestRedisSnapshotStore_Restore_SkipsBrokenSnapshots(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisSnapshotStore(db)

	state := &SessionState{
		UserID: "b",
		Plan:   &workouts.Plan{ID: "w-2", UserID: "b", Title: "Other Day"},
	}
	stateJson, err := json.Marshal(state)
	require.NoError(t, err)

	mock.ExpectSMembers(snapshotUsersKey).SetVal([]string{"a", "b"})
	mock.ExpectGet(snapshotKeyPrefix + "a").SetVal("not json at all")
	mock.ExpectGet(snapshotKeyPrefix + "b").SetVal(string(stateJson))

	sessions, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotNil(t, sessions["b"])
}
