package workouts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workoutsServiceMock struct {
	plan       *Plan
	planErr    error
	loggedSets []SetLog
	logSetErr  error
	history    []SessionSummary
	historyErr error
}

func (m *workoutsServiceMock) TodayPlan(_ context.Context, userID string) (*Plan, error) {
	if m.planErr != nil {
		return nil, m.planErr
	}
	return m.plan, nil
}

func (m *workoutsServiceMock) LogSet(_ context.Context, set SetLog) error {
	if m.logSetErr != nil {
		return m.logSetErr
	}
	m.loggedSets = append(m.loggedSets, set)
	return nil
}

func (m *workoutsServiceMock) History(_ context.Context, userID string, limit int) ([]SessionSummary, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func testRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/workouts/{userId}/today", handler.HandleToday).Methods("GET")
	r.HandleFunc("/workouts/sets", handler.HandleLogSet).Methods("POST")
	r.HandleFunc("/workouts/{userId}/history", handler.HandleHistory).Methods("GET")
	return r
}

func TestHandler_HandleToday(t *testing.T) {
	serviceMock := &workoutsServiceMock{
		plan: DefaultPlan("a", "2024-03-13"),
	}
	router := testRouter(NewHandler(serviceMock))

	req, err := http.NewRequest("GET", "/workouts/a/today", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var plan Plan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	assert.Equal(t, "workout-a-001", plan.ID)
	assert.Len(t, plan.Exercises, 5)
}

func TestHandler_HandleToday_ServiceError(t *testing.T) {
	serviceMock := &workoutsServiceMock{
		planErr: errors.New("boom"),
	}
	router := testRouter(NewHandler(serviceMock))

	req, err := http.NewRequest("GET", "/workouts/a/today", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_HandleLogSet(t *testing.T) {
	serviceMock := &workoutsServiceMock{}
	router := testRouter(NewHandler(serviceMock))

	set := SetLog{
		UserID:          "b",
		ExerciseID:      "ex-2",
		ExerciseName:    "Romanian Deadlifts",
		SetNumber:       2,
		DurationSeconds: 42,
		WorkoutDate:     "2024-03-13",
	}
	setJson, err := json.Marshal(set)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/workouts/sets", bytes.NewReader(setJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, serviceMock.loggedSets, 1)
	assert.Equal(t, set, serviceMock.loggedSets[0])
}

func TestHandler_HandleLogSet_InvalidContentType(t *testing.T) {
	serviceMock := &workoutsServiceMock{}
	router := testRouter(NewHandler(serviceMock))

	req, err := http.NewRequest("POST", "/workouts/sets", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, serviceMock.loggedSets)
}

func TestHandler_HandleHistory(t *testing.T) {
	serviceMock := &workoutsServiceMock{
		history: []SessionSummary{
			{UserID: "a", WorkoutDate: "2024-03-11", Duration: "25:10"},
			{UserID: "a", WorkoutDate: "2024-03-01", Duration: "31:02"},
		},
	}
	router := testRouter(NewHandler(serviceMock))

	req, err := http.NewRequest("GET", "/workouts/a/history?limit=5", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var sessions []SessionSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sessions))
	assert.Len(t, sessions, 2)

	// invalid limit
	req, err = http.NewRequest("GET", "/workouts/a/history?limit=nope", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
