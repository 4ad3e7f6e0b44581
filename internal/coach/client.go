package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/liftmates/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	actionGenerateRoutine = "generateWeeklyRoutine"
	actionProvideFeedback = "provideFeedback"

	oneDay             = 24 * 60 * 60
	routineCacheExpire = oneDay * 7 // routines are regenerated weekly
)

type Client struct {
	cache       *freecache.Cache
	coachApiUrl string
	httpClient  *http.Client
	nowFunc     func() time.Time
}

func NewClient(coachApiUrl string, httpClient *http.Client) *Client {
	megabyte := 1024 * 1024
	return &Client{
		cache:       freecache.NewCache(megabyte),
		coachApiUrl: coachApiUrl,
		httpClient:  httpClient,
		nowFunc:     time.Now,
	}
}

type apiRequest struct {
	Action         string         `json:"action"`
	UserData       UserData       `json:"userData"`
	WorkoutHistory []HistoryEntry `json:"workoutHistory,omitempty"`
	SessionData    *SessionData   `json:"sessionData,omitempty"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Routine     WeeklyRoutine `json:"routine"`
		Feedback    Feedback      `json:"feedback"`
		GeneratedAt string        `json:"generatedAt"`
		ProvidedAt  string        `json:"providedAt"`
		Model       string        `json:"model"`
	} `json:"data"`
}

// WeeklyRoutine asks the coach endpoint for a fresh weekly plan. The last
// successful routine is cached per user; on any failure the caller gets the
// cached plan or the built-in fallback, never an error.
func (c *Client) WeeklyRoutine(ctx context.Context, user UserData, history []HistoryEntry) (*WeeklyRoutine, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachClient.weeklyRoutine")
	defer span.End()

	routine, err := c.requestRoutine(ctx, user, history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("generate weekly routine for [%s]: %s", user.UserID, err)

		if cached := c.cachedRoutine(user.UserID); cached != nil {
			return cached, nil
		}
		return FallbackRoutine(user, c.nowFunc()), nil
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("routine generated for: %s", user.UserID))
	c.cacheRoutine(user.UserID, routine)
	return routine, nil
}

func (c *Client) requestRoutine(ctx context.Context, user UserData, history []HistoryEntry) (*WeeklyRoutine, error) {
	// only the recent workouts matter for progression
	if len(history) > 10 {
		history = history[:10]
	}

	resp, err := c.post(ctx, apiRequest{
		Action:         actionGenerateRoutine,
		UserData:       user,
		WorkoutHistory: history,
	})
	if err != nil {
		return nil, err
	}

	routine := resp.Data.Routine
	routine.GeneratedAt = resp.Data.GeneratedAt
	routine.Model = resp.Data.Model
	if len(routine.WeeklyPlan) == 0 {
		return nil, fmt.Errorf("coach api returned an empty weekly plan")
	}
	return &routine, nil
}

// SessionFeedback asks the coach endpoint to rate a finished workout. Falls
// back to a rating derived from the completion percentage when the endpoint
// is unreachable.
func (c *Client) SessionFeedback(ctx context.Context, user UserData, session SessionData) (*Feedback, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coachClient.sessionFeedback")
	defer span.End()

	resp, err := c.post(ctx, apiRequest{
		Action:      actionProvideFeedback,
		UserData:    user,
		SessionData: &session,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("get session feedback for [%s]: %s", user.UserID, err)
		return FallbackFeedback(session, c.nowFunc()), nil
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("feedback provided for: %s", user.UserID))
	feedback := resp.Data.Feedback
	feedback.ProvidedAt = resp.Data.ProvidedAt
	return &feedback, nil
}

func (c *Client) post(ctx context.Context, request apiRequest) (*apiResponse, error) {
	reqBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal coach api request: %w", err)
	}

	log.Debugf("calling coach api [%s]: %s", request.Action, c.coachApiUrl)

	req, err := http.NewRequestWithContext(ctx, "POST", c.coachApiUrl, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read coach api response bytes: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coach api status %d: %s", resp.StatusCode, respBytes)
	}

	apiResp := &apiResponse{}
	if err := json.Unmarshal(respBytes, apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal coach api response bytes: %w", err)
	}
	if !apiResp.Success {
		return nil, fmt.Errorf("coach api error: %s", apiResp.Error)
	}
	return apiResp, nil
}

func (c *Client) cachedRoutine(userID string) *WeeklyRoutine {
	cacheKey := fmt.Sprintf("routine::%s", userID)
	routineBytes, err := c.cache.Get([]byte(cacheKey))
	if err != nil {
		log.Debugf("cached routine for [%s] not found: %s", userID, err)
		return nil
	}

	routine := &WeeklyRoutine{}
	if err := json.Unmarshal(routineBytes, routine); err != nil {
		log.Errorf("unmarshal cached routine for [%s]: %s", userID, err)
		return nil
	}

	log.Tracef("using cached routine for [%s]", userID)
	routine.Model = "cached"
	return routine
}

func (c *Client) cacheRoutine(userID string, routine *WeeklyRoutine) {
	routineBytes, err := json.Marshal(routine)
	if err != nil {
		log.Errorf("marshal routine for cache [%s]: %s", userID, err)
		return
	}

	cacheKey := fmt.Sprintf("routine::%s", userID)
	if err := c.cache.Set([]byte(cacheKey), routineBytes, routineCacheExpire); err != nil {
		log.Errorf("write routine cache for [%s]: %s", userID, err)
	}
}
