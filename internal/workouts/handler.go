package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/2beens/liftmates/internal/telemetry/tracing"
	"github.com/2beens/liftmates/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type workoutsService interface {
	TodayPlan(ctx context.Context, userID string) (*Plan, error)
	LogSet(ctx context.Context, set SetLog) error
	History(ctx context.Context, userID string, limit int) ([]SessionSummary, error)
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.today")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return
	}

	plan, err := h.service.TodayPlan(ctx, userID)
	if err != nil {
		log.Errorf("get today plan for [%s]: %s", userID, err)
		http.Error(w, "get today workout failed", http.StatusInternalServerError)
		return
	}

	planJson, err := json.Marshal(plan)
	if err != nil {
		log.Errorf("marshal today plan: %s", err)
		http.Error(w, "get today workout failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, planJson)
}

func (h *Handler) HandleLogSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.logset")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var set SetLog
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		log.Errorf("log set, unmarshal json params: %s", err)
		http.Error(w, "log set failed", http.StatusBadRequest)
		return
	}

	if err := h.service.LogSet(ctx, set); err != nil {
		log.Errorf("log set: %s", err)
		http.Error(w, "log set failed", http.StatusInternalServerError)
		return
	}

	setJson, err := json.Marshal(set)
	if err != nil {
		log.Errorf("marshal logged set: %s", err)
		http.Error(w, "log set failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, setJson, http.StatusCreated)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return
	}

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := h.service.History(ctx, userID, limit)
	if err != nil {
		log.Errorf("get workout history for [%s]: %s", userID, err)
		http.Error(w, "get workout history failed", http.StatusInternalServerError)
		return
	}

	sessionsJson, err := json.Marshal(sessions)
	if err != nil {
		log.Errorf("marshal workout history: %s", err)
		http.Error(w, "get workout history failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, sessionsJson)
}
