// Package server initializes and runs the TaskFlow server. It opens the
// database (and MongoDB when preferences live there), applies migrations,
// wires the services and serves the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/logging"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/api"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/config"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/metrics"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/notify"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/preferences"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/repomanager"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/services"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/viewcache"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	mongo       *mongo.Client
	repomanager repomanager.RepositoryManager
	views       *viewcache.Cache
	metrics     *metrics.PrometheusRecorder

	tasks       *services.TaskService
	tutorial    *services.TutorialService
	profiles    *services.ProfileService
	preferences *services.PreferenceService
	avatars     *services.AvatarService
}

// Option adjusts how NewApp builds the application.
type Option func(*appOptions)

type appOptions struct {
	logOutput io.Writer
}

// WithLogOutput sends log records to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.logOutput = w
	}
}

// NewApp opens the stores named by c and wires the services over them.
// Nothing is migrated yet; call Migrate or Run.
func NewApp(ctx context.Context, c *config.Config, opts ...Option) (*App, error) {

	o := appOptions{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := logging.New(c.LogBackend, c.LogLevel, o.logOutput)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	var (
		rmOpts      []repomanager.Option
		mongoClient *mongo.Client
	)
	if c.PreferencesBackend == config.PreferencesMongo {
		mongoClient, err = mongo.Connect(options.Client().ApplyURI(c.MongoURI))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mongo connect error: %w", err)
		}
		if err := mongoClient.Ping(ctx, nil); err != nil {
			_ = mongoClient.Disconnect(ctx)
			_ = db.Close()
			return nil, fmt.Errorf("mongo ping error: %w", err)
		}
		coll := mongoClient.Database(c.MongoDatabase).Collection(preferences.CollectionName)
		rmOpts = append(rmOpts, repomanager.WithMongoPreferences(coll))
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db, rmOpts...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	app, err := newApp(c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.mongo = mongoClient
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		metrics:     metrics.NewPrometheusRecorder(),
	}

	deps := services.Deps{
		Logger:  logger.With("module", "services"),
		Metrics: app.metrics,
	}
	if c.ViewCacheSize > 0 {
		views, err := viewcache.New(c.ViewCacheSize)
		if err != nil {
			return nil, fmt.Errorf("view cache init error: %w", err)
		}
		app.views = views
		deps.Views = views
	}

	notifier := notify.New(c.ResendAPIKey, c.EmailFrom, logger)

	app.tasks = services.NewTaskService(db, rm, deps)
	app.tutorial = services.NewTutorialService(db, rm, app.tasks, deps)
	app.profiles = services.NewProfileService(db, rm, app.tutorial, notifier, c.TransactionalBootstrap, deps)
	app.preferences = services.NewPreferenceService(db, rm, deps)
	if c.S3Bucket != "" {
		app.avatars = services.NewAvatarService(db, rm, c, deps)
	}

	return app, nil
}

func (app *App) Logger() logging.Logger                   { return app.logger }
func (app *App) Tasks() *services.TaskService             { return app.tasks }
func (app *App) Tutorial() *services.TutorialService      { return app.tutorial }
func (app *App) Profiles() *services.ProfileService       { return app.profiles }
func (app *App) Preferences() *services.PreferenceService { return app.preferences }

// Avatars is nil when no bucket is configured.
func (app *App) Avatars() *services.AvatarService { return app.avatars }

// Migrate applies pending schema migrations.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (app *App) httpServer() *api.Server {
	svc := api.Services{
		Profiles:    app.profiles,
		Tutorial:    app.tutorial,
		Tasks:       app.tasks,
		Preferences: app.preferences,
	}
	if app.avatars != nil {
		svc.Avatars = app.avatars
	}
	return api.NewServer(app.config.EndpointAddrHTTP, app.logger, app.config.SecretKey,
		app.config.CORSOrigins, svc, app.views, app.metrics.Handler())
}

func (app *App) watchSignals(ctx context.Context, cancelFunc context.CancelFunc) error {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	select {
	case s := <-sigs:
		app.logger.Info(ctx, "Signal received", "signal", s.String())
		cancelFunc()
	case <-ctx.Done():
	}
	return nil
}

// Run migrates the schema and serves HTTP until ctx is cancelled or a
// termination signal arrives, then releases every store.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.Migrate(ctx); err != nil {
		return errors.Join(err, app.Close(context.WithoutCancel(ctx)))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.watchSignals(gctx, cancelFunc)
	})

	g.Go(func() error {
		return app.httpServer().Run(gctx)
	})

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")

	return errors.Join(err, app.Close(context.WithoutCancel(ctx)))
}

// Close releases the database and MongoDB connections and flushes the logger.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.mongo != nil {
		errs = append(errs, app.mongo.Disconnect(ctx))
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if z, ok := app.logger.(*logging.ZapLogger); ok {
		// stdout cannot be fsynced on most platforms
		_ = z.Sync()
	}
	return errors.Join(errs...)
}
