package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/liftmates/internal/telemetry/tracing"
	"github.com/2beens/liftmates/internal/workouts"
	"github.com/2beens/liftmates/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=engine

// PlanLoader provides the plan to train with when a session starts.
type PlanLoader interface {
	TodayPlan(ctx context.Context, userID string) (*workouts.Plan, error)
}

type Handler struct {
	engine     *Engine
	planLoader PlanLoader
}

func NewHandler(engine *Engine, planLoader PlanLoader) *Handler {
	return &Handler{
		engine:     engine,
		planLoader: planLoader,
	}
}

type sessionResponse struct {
	Status  Status        `json:"status"`
	Session *SessionState `json:"session,omitempty"`
}

type startSetRequest struct {
	UserID     string `json:"userId"`
	ExerciseID string `json:"exerciseId"`
	SetIndex   int    `json:"setIndex"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.start")
	defer span.End()

	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	plan, err := h.planLoader.TodayPlan(ctx, req.UserID)
	if err != nil {
		log.Errorf("start workout for [%s], load plan: %s", req.UserID, err)
		http.Error(w, "start workout failed", http.StatusInternalServerError)
		return
	}

	state, err := h.engine.StartWorkout(ctx, req.UserID, plan)
	if err != nil {
		if errors.Is(err, ErrEmptyPlan) {
			http.Error(w, "workout plan has no exercises", http.StatusBadRequest)
			return
		}
		log.Errorf("start workout for [%s]: %s", req.UserID, err)
		http.Error(w, "start workout failed", http.StatusInternalServerError)
		return
	}

	h.writeSessionResponse(w, state, http.StatusCreated)
}

func (h *Handler) HandleStartSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.start")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req startSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("start set, unmarshal json params: %s", err)
		http.Error(w, "start set failed", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ExerciseID == "" || req.SetIndex < 0 {
		http.Error(w, "invalid set params", http.StatusBadRequest)
		return
	}

	if err := h.engine.StartSet(ctx, req.UserID, req.ExerciseID, req.SetIndex); err != nil {
		h.writeEngineError(w, "start set", req.UserID, err)
		return
	}

	h.writeUserSession(w, req.UserID)
}

func (h *Handler) HandleEndSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.set.end")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	// exerciseId and setIndex are optional, the running timer's own
	// identity is used when they are left out
	var req startSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("end set, unmarshal json params: %s", err)
		http.Error(w, "end set failed", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return
	}

	if _, err := h.engine.EndSet(ctx, req.UserID, req.ExerciseID, req.SetIndex); err != nil {
		h.writeEngineError(w, "end set", req.UserID, err)
		return
	}

	h.writeUserSession(w, req.UserID)
}

func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.pause")
	defer span.End()

	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	if err := h.engine.Pause(ctx, req.UserID); err != nil {
		h.writeEngineError(w, "pause workout", req.UserID, err)
		return
	}

	h.writeUserSession(w, req.UserID)
}

func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.resume")
	defer span.End()

	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	if err := h.engine.Resume(ctx, req.UserID); err != nil {
		h.writeEngineError(w, "resume workout", req.UserID, err)
		return
	}

	h.writeUserSession(w, req.UserID)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.complete")
	defer span.End()

	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.engine.Complete(ctx, req.UserID)
	if err != nil {
		h.writeEngineError(w, "complete workout", req.UserID, err)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal workout summary: %s", err)
		http.Error(w, "complete workout failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, summaryJson)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.cancel")
	defer span.End()

	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	if err := h.engine.Cancel(ctx, req.UserID); err != nil {
		h.writeEngineError(w, "cancel workout", req.UserID, err)
		return
	}

	pkg.WriteTextResponseOK(w, "cancelled")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.get")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	state, ok := h.engine.Session(userID)
	if !ok {
		http.Error(w, "no active workout session", http.StatusNotFound)
		return
	}

	h.writeSessionResponse(w, state, http.StatusOK)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.progress")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	resp := struct {
		UserID   string `json:"userId"`
		Progress int    `json:"progress"`
	}{
		UserID:   userID,
		Progress: h.engine.Progress(userID),
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal progress response: %s", err)
		http.Error(w, "get progress failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) HandleTimer(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.timer")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	display, mode := h.engine.TimerInfo(userID)
	resp := struct {
		UserID    string    `json:"userId"`
		Display   string    `json:"display"`
		Mode      TimerMode `json:"mode"`
		TotalTime string    `json:"totalTime"`
	}{
		UserID:    userID,
		Display:   display,
		Mode:      mode,
		TotalTime: h.engine.TotalTime(userID),
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal timer response: %s", err)
		http.Error(w, "get timer failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) decodeUserRequest(w http.ResponseWriter, r *http.Request) (userRequest, bool) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return userRequest{}, false
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("session request, unmarshal json params: %s", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return userRequest{}, false
	}
	if req.UserID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return userRequest{}, false
	}
	return req, true
}

func (h *Handler) writeUserSession(w http.ResponseWriter, userID string) {
	state, ok := h.engine.Session(userID)
	if !ok {
		http.Error(w, "no active workout session", http.StatusNotFound)
		return
	}
	h.writeSessionResponse(w, state, http.StatusOK)
}

func (h *Handler) writeSessionResponse(w http.ResponseWriter, state *SessionState, statusCode int) {
	resp := sessionResponse{
		Status:  h.engine.Status(),
		Session: state,
	}
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal session response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, action, userID string, err error) {
	if errors.Is(err, ErrNoActiveSession) {
		http.Error(w, "no active workout session", http.StatusNotFound)
		return
	}
	log.Errorf("%s for [%s]: %s", action, userID, err)
	http.Error(w, action+" failed", http.StatusInternalServerError)
}
