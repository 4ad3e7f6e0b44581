package coach

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/liftmates/internal/telemetry/tracing"
	"github.com/2beens/liftmates/pkg"

	log "github.com/sirupsen/logrus"
)

type coachClient interface {
	WeeklyRoutine(ctx context.Context, user UserData, history []HistoryEntry) (*WeeklyRoutine, error)
	SessionFeedback(ctx context.Context, user UserData, session SessionData) (*Feedback, error)
}

type Handler struct {
	client coachClient
}

func NewHandler(client coachClient) *Handler {
	return &Handler{
		client: client,
	}
}

type routineRequest struct {
	UserData       UserData       `json:"userData"`
	WorkoutHistory []HistoryEntry `json:"workoutHistory"`
}

type feedbackRequest struct {
	UserData    UserData    `json:"userData"`
	SessionData SessionData `json:"sessionData"`
}

func (h *Handler) HandleRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.coach.routine")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var request routineRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Errorf("generate routine, unmarshal json params: %s", err)
		http.Error(w, "generate routine failed", http.StatusBadRequest)
		return
	}
	if request.UserData.UserID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return
	}

	routine, err := h.client.WeeklyRoutine(ctx, request.UserData, request.WorkoutHistory)
	if err != nil {
		log.Errorf("generate routine for [%s]: %s", request.UserData.UserID, err)
		http.Error(w, "generate routine failed", http.StatusInternalServerError)
		return
	}

	routineJson, err := json.Marshal(routine)
	if err != nil {
		log.Errorf("marshal routine: %s", err)
		http.Error(w, "generate routine failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, routineJson)
}

func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.coach.feedback")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var request feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Errorf("session feedback, unmarshal json params: %s", err)
		http.Error(w, "session feedback failed", http.StatusBadRequest)
		return
	}
	if request.UserData.UserID == "" {
		http.Error(w, "user id missing", http.StatusBadRequest)
		return
	}

	feedback, err := h.client.SessionFeedback(ctx, request.UserData, request.SessionData)
	if err != nil {
		log.Errorf("session feedback for [%s]: %s", request.UserData.UserID, err)
		http.Error(w, "session feedback failed", http.StatusInternalServerError)
		return
	}

	feedbackJson, err := json.Marshal(feedback)
	if err != nil {
		log.Errorf("marshal feedback: %s", err)
		http.Error(w, "session feedback failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, feedbackJson)
}
