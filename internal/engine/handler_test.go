package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/liftmates/internal/workouts"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerTestEnv struct {
	env        *engineTestEnv
	planLoader *MockPlanLoader
	router     *mux.Router
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	env := newTestEngine(t)
	planLoader := NewMockPlanLoader(ctrl)
	handler := NewHandler(env.engine, planLoader)

	r := mux.NewRouter()
	r.HandleFunc("/session/start", handler.HandleStart).Methods("POST")
	r.HandleFunc("/session/set/start", handler.HandleStartSet).Methods("POST")
	r.HandleFunc("/session/set/end", handler.HandleEndSet).Methods("POST")
	r.HandleFunc("/session/pause", handler.HandlePause).Methods("POST")
	r.HandleFunc("/session/resume", handler.HandleResume).Methods("POST")
	r.HandleFunc("/session/complete", handler.HandleComplete).Methods("POST")
	r.HandleFunc("/session/cancel", handler.HandleCancel).Methods("POST")
	r.HandleFunc("/session/{userId}", handler.HandleGet).Methods("GET")
	r.HandleFunc("/session/{userId}/progress", handler.HandleProgress).Methods("GET")
	r.HandleFunc("/session/{userId}/timer", handler.HandleTimer).Methods("GET")

	return &handlerTestEnv{
		env:        env,
		planLoader: planLoader,
		router:     r,
	}
}

func (h *handlerTestEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	bodyJson, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", path, bytes.NewReader(bodyJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func (h *handlerTestEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_FullSessionFlow(t *testing.T) {
	h := newHandlerTestEnv(t)
	h.planLoader.EXPECT().
		TodayPlan(gomock.Any(), "a").
		Return(testPlan("a"), nil)

	// start
	rr := h.postJSON(t, "/session/start", map[string]string{"userId": "a"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var startResp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &startResp))
	assert.Equal(t, StatusActive, startResp.Status)
	require.NotNil(t, startResp.Session)
	assert.Equal(t, 5, startResp.Session.TotalSets)

	// start a set
	rr = h.postJSON(t, "/session/set/start", startSetRequest{
		UserID: "a", ExerciseID: "ex-1", SetIndex: 0,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	h.env.clock.Advance(12 * time.Second)

	// end the set
	rr = h.postJSON(t, "/session/set/end", map[string]string{"userId": "a"})
	require.Equal(t, http.StatusOK, rr.Code)

	var endResp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &endResp))
	require.NotNil(t, endResp.Session)
	assert.Equal(t, 1, endResp.Session.CompletedSets)
	assert.Equal(t, 12, endResp.Session.TotalWorkoutTime)
	assert.True(t, endResp.Session.RestTimer.Running)

	// progress
	rr = h.get(t, "/session/a/progress")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"userId":"a","progress":20}`, rr.Body.String())

	// timer shows resting
	rr = h.get(t, "/session/a/timer")
	require.Equal(t, http.StatusOK, rr.Code)
	var timerResp struct {
		Display   string    `json:"display"`
		Mode      TimerMode `json:"mode"`
		TotalTime string    `json:"totalTime"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &timerResp))
	assert.Equal(t, TimerModeRest, timerResp.Mode)
	assert.Equal(t, "00:12", timerResp.TotalTime)

	// complete
	rr = h.postJSON(t, "/session/complete", map[string]string{"userId": "a"})
	require.Equal(t, http.StatusOK, rr.Code)

	var summary Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, "00:12", summary.Duration)
	assert.Equal(t, 20, summary.Progress)

	// session is gone now
	rr = h.get(t, "/session/a")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_PauseResume(t *testing.T) {
	h := newHandlerTestEnv(t)
	h.planLoader.EXPECT().
		TodayPlan(gomock.Any(), "b").
		Return(testPlan("b"), nil)

	rr := h.postJSON(t, "/session/start", map[string]string{"userId": "b"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = h.postJSON(t, "/session/set/start", startSetRequest{
		UserID: "b", ExerciseID: "ex-2", SetIndex: 1,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	h.env.clock.Advance(7 * time.Second)

	rr = h.postJSON(t, "/session/pause", map[string]string{"userId": "b"})
	require.Equal(t, http.StatusOK, rr.Code)

	var pauseResp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pauseResp))
	assert.Equal(t, StatusPaused, pauseResp.Status)
	require.NotNil(t, pauseResp.Session)
	assert.False(t, pauseResp.Session.SetTimer.Running)
	assert.Equal(t, 7, pauseResp.Session.SetTimer.Duration)

	rr = h.postJSON(t, "/session/resume", map[string]string{"userId": "b"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resumeResp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resumeResp))
	assert.Equal(t, StatusActive, resumeResp.Status)
	require.NotNil(t, resumeResp.Session)
	assert.True(t, resumeResp.Session.SetTimer.Running)
}

func TestHandler_Start_PlanLoadFails(t *testing.T) {
	h := newHandlerTestEnv(t)
	h.planLoader.EXPECT().
		TodayPlan(gomock.Any(), "a").
		Return(nil, errors.New("sheet gone"))

	rr := h.postJSON(t, "/session/start", map[string]string{"userId": "a"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_Start_EmptyPlan(t *testing.T) {
	h := newHandlerTestEnv(t)
	h.planLoader.EXPECT().
		TodayPlan(gomock.Any(), "a").
		Return(&workouts.Plan{ID: "w-empty", UserID: "a", Title: "Empty Day"}, nil)

	rr := h.postJSON(t, "/session/start", map[string]string{"userId": "a"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_NoSession(t *testing.T) {
	h := newHandlerTestEnv(t)

	testCases := []struct {
		path string
		body any
	}{
		{"/session/set/start", startSetRequest{UserID: "a", ExerciseID: "ex-1"}},
		{"/session/pause", map[string]string{"userId": "a"}},
		{"/session/resume", map[string]string{"userId": "a"}},
		{"/session/complete", map[string]string{"userId": "a"}},
		{"/session/cancel", map[string]string{"userId": "a"}},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rr := h.postJSON(t, tc.path, tc.body)
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}

	rr := h.get(t, "/session/a")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// progress and timer are graceful without a session
	rr = h.get(t, "/session/a/progress")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"userId":"a","progress":0}`, rr.Body.String())

	rr = h.get(t, "/session/a/timer")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), string(TimerModeReady))
}

func TestHandler_BadRequests(t *testing.T) {
	h := newHandlerTestEnv(t)

	// missing content type
	req, err := http.NewRequest("POST", "/session/start", bytes.NewReader([]byte(`{"userId":"a"}`)))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// missing user id
	rr = h.postJSON(t, "/session/start", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// negative set index
	rr = h.postJSON(t, "/session/set/start", startSetRequest{
		UserID: "a", ExerciseID: "ex-1", SetIndex: -1,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// broken json
	req, err = http.NewRequest("POST", "/session/pause", bytes.NewReader([]byte("{nope")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_EndSetTwice(t *testing.T) {
	h := newHandlerTestEnv(t)
	h.planLoader.EXPECT().
		TodayPlan(gomock.Any(), "a").
		Return(testPlan("a"), nil)

	rr := h.postJSON(t, "/session/start", map[string]string{"userId": "a"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = h.postJSON(t, "/session/set/start", startSetRequest{
		UserID: "a", ExerciseID: "ex-1", SetIndex: 0,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	h.env.clock.Advance(5 * time.Second)

	for i := 0; i < 2; i++ {
		rr = h.postJSON(t, "/session/set/end", map[string]string{"userId": "a"})
		require.Equal(t, http.StatusOK, rr.Code, fmt.Sprintf("end set call %d", i+1))
	}

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	// the double tap recorded the set only once
	assert.Equal(t, 1, resp.Session.CompletedSets)
	assert.Equal(t, 5, resp.Session.TotalWorkoutTime)
}
