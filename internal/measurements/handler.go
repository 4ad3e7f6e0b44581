package measurements

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

type measurementsService interface {
	Add(ctx context.Context, m Measurement) (Measurement, error)
	List(ctx context.Context, userID string, limit int) ([]Measurement, error)
	UserProgress(ctx context.Context, userID string) (*Progress, error)
}

type Handler struct {
	service measurementsService
}

func NewHandler(service measurementsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var m Measurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		log.Errorf("add measurement, unmarshal json params: %s", err)
		http.Error(w, "add measurement failed", http.StatusBadRequest)
		return
	}
	if m.UserID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return
	}

	added, err := h.service.Add(ctx, m)
	if err != nil {
		log.Errorf("add measurement for [%s]: %s", m.UserID, err)
		http.Error(w, "add measurement failed", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal added measurement: %s", err)
		http.Error(w, "add measurement failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.list")
	defer span.End()

	userID := mux.Vars(r)["userId"]

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	measurements, err := h.service.List(ctx, userID, limit)
	if err != nil {
		log.Errorf("list measurements for [%s]: %s", userID, err)
		http.Error(w, "list measurements failed", http.StatusInternalServerError)
		return
	}

	measurementsJson, err := json.Marshal(measurements)
	if err != nil {
		log.Errorf("marshal measurements: %s", err)
		http.Error(w, "list measurements failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, measurementsJson)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.progress")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	progress, err := h.service.UserProgress(ctx, userID)
	if err != nil {
		log.Errorf("get progress for [%s]: %s", userID, err)
		http.Error(w, "get progress failed", http.StatusInternalServerError)
		return
	}
	if progress == nil {
		http.Error(w, "no measurements yet", http.StatusNotFound)
		return
	}

	progressJson, err := json.Marshal(progress)
	if err != nil {
		log.Errorf("marshal progress: %s", err)
		http.Error(w, "get progress failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, progressJson)
}
