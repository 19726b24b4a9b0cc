// Package api exposes the TaskFlow services over HTTP/JSON. All /api routes
// require a bearer access token whose subject is the user id.
package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/logging"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/viewcache"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

type Bootstrapper interface {
	EnsureProfileAndTutorialTasks(ctx context.Context, userID string, email *string, revalidate bool) error
}

type Tutorials interface {
	Progress(ctx context.Context, userID string) (*models.TutorialProgress, error)
	Restart(ctx context.Context, userID string, revalidate bool) error
}

type Tasks interface {
	AddTaskDirect(ctx context.Context, userID string, input models.TaskInput, revalidate bool) (*models.Task, error)
	Stats(ctx context.Context, userID string) (*models.TaskStats, error)
}

type Preferences interface {
	Get(ctx context.Context, userID string) (*models.Preferences, error)
	Update(ctx context.Context, userID string, prefs models.Preferences, revalidate bool) error
}

type Avatars interface {
	UploadURL(ctx context.Context, userID string) (key string, url string, err error)
	DownloadURL(ctx context.Context, userID string) (string, error)
}

// Services groups the operations served by the API. Avatars may be nil, in
// which case the avatar routes are not mounted.
type Services struct {
	Profiles    Bootstrapper
	Tutorial    Tutorials
	Tasks       Tasks
	Preferences Preferences
	Avatars     Avatars
}

type Server struct {
	address     string
	logger      logging.Logger
	jwtSecret   []byte
	corsOrigins []string
	services    Services
	views       *viewcache.Cache
	metrics     http.Handler
}

// NewServer builds the HTTP server. views and metricsHandler may be nil.
func NewServer(address string, l logging.Logger, secretKey string, corsOrigins []string, svc Services, views *viewcache.Cache, metricsHandler http.Handler) *Server {
	return &Server{
		address:     address,
		logger:      l.With("module", "http_server"),
		jwtSecret:   []byte(secretKey),
		corsOrigins: corsOrigins,
		services:    svc,
		views:       views,
		metrics:     metricsHandler,
	}
}

// Router returns the fully wired handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"status": "ok"}})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.accessTokenMiddleware)

		r.Post("/bootstrap", s.bootstrap)
		r.Get("/tutorial/progress", s.cached(tutorialProgressPath, s.tutorialProgress))
		r.Post("/tutorial/restart", s.restartTutorial)
		r.Post("/tasks", s.addTask)
		r.Get("/tasks/stats", s.cached(taskStatsPath, s.taskStats))
		r.Get("/preferences", s.cached(preferencesPath, s.getPreferences))
		r.Put("/preferences", s.updatePreferences)

		if s.services.Avatars != nil {
			r.Post("/profile/avatar", s.avatarUploadURL)
			r.Get("/profile/avatar", s.avatarDownloadURL)
		}
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	if sl, ok := s.logger.(interface{ StdLogger() *log.Logger }); ok {
		srv.ErrorLog = sl.StdLogger()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done

	return nil
}
