package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/liftmates/internal/telemetry/tracing"
	"github.com/2beens/liftmates/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type profileService interface {
	Users(ctx context.Context) ([]Profile, error)
	User(ctx context.Context, userID string) (*Profile, error)
	UpdateUser(ctx context.Context, userID string, updates map[string]string) error
	WeeklyStatus(ctx context.Context, userID string) (WeeklyStatus, error)
	SetDayStatus(ctx context.Context, userID, day string, status DayStatus) error
	Reschedule(ctx context.Context, userID, fromDay, toDay string) error
}

type Handler struct {
	service profileService
	store   *Store
}

func NewHandler(service profileService, store *Store) *Handler {
	return &Handler{
		service: service,
		store:   store,
	}
}

func (h *Handler) HandleGetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	profiles, err := h.service.Users(ctx)
	if err != nil {
		log.Errorf("get users: %s", err)
		http.Error(w, "get users failed", http.StatusInternalServerError)
		return
	}

	profilesJson, err := json.Marshal(profiles)
	if err != nil {
		log.Errorf("marshal users: %s", err)
		http.Error(w, "get users failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profilesJson)
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.getOne")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	profile, err := h.service.User(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user [%s]: %s", userID, err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.state")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	state := h.store.State(userID)

	stateJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("marshal user state: %s", err)
		http.Error(w, "get user state failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, stateJson)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID := mux.Vars(r)["userId"]
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		log.Errorf("update user, unmarshal json params: %s", err)
		http.Error(w, "update user failed", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateUser(ctx, userID, updates); err != nil {
		log.Errorf("update user [%s]: %s", userID, err)
		http.Error(w, "update user failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "updated")
}

func (h *Handler) HandleGetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.week")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	week, err := h.service.WeeklyStatus(ctx, userID)
	if err != nil {
		log.Errorf("get weekly status for [%s]: %s", userID, err)
		http.Error(w, "get weekly status failed", http.StatusInternalServerError)
		return
	}

	weekJson, err := json.Marshal(week)
	if err != nil {
		log.Errorf("marshal weekly status: %s", err)
		http.Error(w, "get weekly status failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, weekJson)
}

func (h *Handler) HandleSetDayStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.setday")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	userID := vars["userId"]
	day := vars["day"]
	if !validWeekday(day) {
		http.Error(w, "invalid weekday", http.StatusBadRequest)
		return
	}

	var req struct {
		Status DayStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("set day status, unmarshal json params: %s", err)
		http.Error(w, "set day status failed", http.StatusBadRequest)
		return
	}
	if !req.Status.IsValid() {
		http.Error(w, "invalid day status", http.StatusBadRequest)
		return
	}

	if err := h.service.SetDayStatus(ctx, userID, day, req.Status); err != nil {
		log.Errorf("set day status for [%s] %s=%s: %s", userID, day, req.Status, err)
		http.Error(w, "set day status failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "updated")
}

func (h *Handler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.reschedule")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID := mux.Vars(r)["userId"]
	var req struct {
		FromDay string `json:"fromDay"`
		ToDay   string `json:"toDay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("reschedule, unmarshal json params: %s", err)
		http.Error(w, "reschedule failed", http.StatusBadRequest)
		return
	}
	if !validWeekday(req.FromDay) || !validWeekday(req.ToDay) {
		http.Error(w, "invalid weekday", http.StatusBadRequest)
		return
	}

	if err := h.service.Reschedule(ctx, userID, req.FromDay, req.ToDay); err != nil {
		log.Errorf("reschedule for [%s] %s->%s: %s", userID, req.FromDay, req.ToDay, err)
		http.Error(w, "reschedule failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "rescheduled")
}
