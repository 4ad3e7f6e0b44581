package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/liftmates/internal/auth"
	"github.com/2beens/liftmates/internal/coach"
	"github.com/2beens/liftmates/internal/config"
	"github.com/2beens/liftmates/internal/engine"
	"github.com/2beens/liftmates/internal/measurements"
	"github.com/2beens/liftmates/internal/middleware"
	"github.com/2beens/liftmates/internal/profile"
	"github.com/2beens/liftmates/internal/sheets"
	"github.com/2beens/liftmates/internal/telemetry/metrics"
	"github.com/2beens/liftmates/internal/telemetry/tracing"
	"github.com/2beens/liftmates/internal/workouts"
	"github.com/2beens/liftmates/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config              *config.Config
	workoutsService     *workouts.Service
	profileService      *profile.Service
	profileStore        *profile.Store
	measurementsService *measurements.Service
	coachClient         *coach.Client
	workoutEngine       *engine.Engine

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	UserAPasswordHash       string
	UserBPasswordHash       string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.Setup(params.HoneycombTracingEnabled, "liftmates-backend", rdb)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService([]auth.User{
		{ID: "a", PasswordHash: params.UserAPasswordHash},
		{ID: "b", PasswordHash: params.UserBPasswordHash},
	}, auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	sheetsClient, err := sheets.NewClient(ctx, params.Config.SpreadsheetID, params.Config.SheetsCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("new sheets client: %w", err)
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Minute, // routine generation can take a while
	}

	workoutsService := workouts.NewService(sheetsClient)
	profileService := profile.NewService(sheetsClient)
	profileStore := profile.NewStore(profileService, workoutsService, metricsManager)

	workoutEngine := engine.New(engine.Params{
		Notifier:   profileStore,
		Snapshots:  engine.NewRedisSnapshotStore(rdb),
		Metrics:    metricsManager,
		GraceDelay: time.Duration(params.Config.SessionGraceDelaySeconds) * time.Second,
	})
	if err := workoutEngine.RestoreSessions(ctx); err != nil {
		log.Errorf("failed to restore workout sessions: %s", err)
	}

	return &Server{
		config:              params.Config,
		versionInfo:         params.VersionInfo,
		workoutsService:     workoutsService,
		profileService:      profileService,
		profileStore:        profileStore,
		measurementsService: measurements.NewService(sheetsClient),
		coachClient:         coach.NewClient(params.Config.CoachAPIURL, tracedHttpClient),
		workoutEngine:       workoutEngine,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
	}).Methods("GET", "POST", "OPTIONS").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "ok")
	}).Methods("GET").Name("health")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	authHandler := auth.NewHandler(s.authService)
	loginSubrouter := r.PathPrefix("/a").Subrouter()
	loginSubrouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.HandleFunc("/logout", authHandler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")
	// rate limit the /login and /logout endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(reqRateLimiter, "login", s.config.LoginRateLimitAllowedPerMin, s.metricsManager))
	loginSubrouter.Use(middleware.Cors())

	sessionHandler := engine.NewHandler(s.workoutEngine, s.workoutsService)
	r.HandleFunc("/session/start", sessionHandler.HandleStart).Methods("POST", "OPTIONS").Name("session-start")
	r.HandleFunc("/session/set/start", sessionHandler.HandleStartSet).Methods("POST", "OPTIONS").Name("set-start")
	r.HandleFunc("/session/set/end", sessionHandler.HandleEndSet).Methods("POST", "OPTIONS").Name("set-end")
	r.HandleFunc("/session/pause", sessionHandler.HandlePause).Methods("POST", "OPTIONS").Name("session-pause")
	r.HandleFunc("/session/resume", sessionHandler.HandleResume).Methods("POST", "OPTIONS").Name("session-resume")
	r.HandleFunc("/session/complete", sessionHandler.HandleComplete).Methods("POST", "OPTIONS").Name("session-complete")
	r.HandleFunc("/session/cancel", sessionHandler.HandleCancel).Methods("POST", "OPTIONS").Name("session-cancel")
	r.HandleFunc("/session/{userId}", sessionHandler.HandleGet).Methods("GET", "OPTIONS").Name("session-get")
	r.HandleFunc("/session/{userId}/progress", sessionHandler.HandleProgress).Methods("GET", "OPTIONS").Name("session-progress")
	r.HandleFunc("/session/{userId}/timer", sessionHandler.HandleTimer).Methods("GET", "OPTIONS").Name("session-timer")

	workoutsHandler := workouts.NewHandler(s.workoutsService)
	r.HandleFunc("/workouts/sets", workoutsHandler.HandleLogSet).Methods("POST", "OPTIONS").Name("log-set")
	r.HandleFunc("/workouts/{userId}/today", workoutsHandler.HandleToday).Methods("GET", "OPTIONS").Name("today-workout")
	r.HandleFunc("/workouts/{userId}/history", workoutsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("workout-history")

	profileHandler := profile.NewHandler(s.profileService, s.profileStore)
	r.HandleFunc("/users", profileHandler.HandleGetUsers).Methods("GET", "OPTIONS").Name("list-users")
	r.HandleFunc("/users/{userId}", profileHandler.HandleGetUser).Methods("GET", "OPTIONS").Name("get-user")
	r.HandleFunc("/users/{userId}", profileHandler.HandleUpdateUser).Methods("PUT", "OPTIONS").Name("update-user")
	r.HandleFunc("/users/{userId}/state", profileHandler.HandleGetState).Methods("GET", "OPTIONS").Name("user-state")
	r.HandleFunc("/users/{userId}/week", profileHandler.HandleGetWeek).Methods("GET", "OPTIONS").Name("user-week")
	r.HandleFunc("/users/{userId}/week/reschedule", profileHandler.HandleReschedule).Methods("POST", "OPTIONS").Name("reschedule-day")
	r.HandleFunc("/users/{userId}/week/{day}", profileHandler.HandleSetDayStatus).Methods("PUT", "OPTIONS").Name("set-day-status")

	measurementsHandler := measurements.NewHandler(s.measurementsService)
	r.HandleFunc("/measurements", measurementsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("add-measurement")
	r.HandleFunc("/measurements/{userId}", measurementsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-measurements")
	r.HandleFunc("/measurements/{userId}/progress", measurementsHandler.HandleProgress).Methods("GET", "OPTIONS").Name("measurements-progress")

	coachHandler := coach.NewHandler(s.coachClient)
	coachSubrouter := r.PathPrefix("/coach").Subrouter()
	coachSubrouter.HandleFunc("/routine", coachHandler.HandleRoutine).Methods("POST", "OPTIONS").Name("coach-routine")
	coachSubrouter.HandleFunc("/feedback", coachHandler.HandleFeedback).Methods("POST", "OPTIONS").Name("coach-feedback")
	// routine generation is expensive, keep the coach on a tight limit
	coachSubrouter.Use(middleware.RateLimit(reqRateLimiter, "coach", s.config.CoachRateLimitPerMin, s.metricsManager))

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.workoutEngine.Close()
	log.Trace("workout engine closed ...")

	// let in-flight lifecycle syncs reach the spreadsheet, then give
	// anything still pending from earlier failures one last try
	s.profileStore.WaitForSync()
	syncCtx, syncCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer syncCancel()
	s.profileStore.SyncPending(syncCtx)
	log.Trace("profile store synced ...")

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}
