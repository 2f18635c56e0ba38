package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/infrastructure"
	customMiddleware "retailpulse/internal/middleware"
	"retailpulse/internal/services"
	handlers "retailpulse/internal/transport/http"
	ws "retailpulse/internal/websocket"
)

var (
	// Version is overridden at link time with -X retailpulse/internal/app.Version=...
	Version = config.AppVersion
	// BuildTime is set at link time
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	Analysis     *services.AnalysisService
	Selection    *services.SelectionService
	Viewer       *services.ViewerService
	Health       *services.HealthService
	WebSocketHub *ws.Hub

	Router *chi.Mux
	Server *http.Server
}

// New wires every component from cfg. Nothing is started: Analyze runs the
// pipeline once, Serve runs it and starts the viewer.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	paths := cfg.ResolvePaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}
	if err := a.initializeServices(); err != nil {
		return nil, err
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) initializeServices() error {
	analysis, err := services.NewAnalysisService(a.Config, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create analysis service: %w", err)
	}
	a.Analysis = analysis
	a.Selection = services.NewSelectionService(a.Logger)
	a.Viewer = services.NewViewerService(a.Analysis, a.Logger)
	a.WebSocketHub = ws.NewHub(a.Metrics, a.Logger)
	a.Health = services.NewHealthService(Version, BuildTime, a.Paths.OutputDir, a.Analysis, a.WebSocketHub, a.Logger)

	// Selection observers run under the selection lock, so the feed sees
	// changes in the order they were made.
	a.Selection.Observe(func(sel services.Selection) {
		a.WebSocketHub.Broadcast(ws.TypeSelectionChanged, sel)
	})
	a.Analysis.Subscribe(func(snap *services.Snapshot) {
		a.WebSocketHub.BroadcastWithTrace(ws.TypeSnapshotPublished, snap, snap.RunID.String())
	})
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	// Order: RequestID, RealIP, then everything else. The websocket route
	// stays outside the group so nothing wraps the hijacked connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.Security.AllowedOrigins, a.Logger))
	r.Mount("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, errorHandler).Routes())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		page := handlers.NewPageHandler(config.AppName, a.Viewer, a.Selection, a.Logger)
		r.Get("/", page.ServeSelector)

		validator := customMiddleware.NewValidator(config.MaxRequestBodySize, a.Logger)
		health := handlers.NewHealthHandler(a.Health, a.Logger)

		api := handlers.NewViewerHandler(a.Viewer, a.Logger, errorHandler).Routes()
		api.Mount("/selection", handlers.NewSelectionHandler(a.Selection, validator, a.Logger, errorHandler).Routes())
		api.Mount("/health", health.Routes())
		api.Get("/version", health.Version)
		r.Mount("/api", api)
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Analyze runs the pipeline once and returns the published snapshot.
func (a *Application) Analyze(ctx context.Context) (*services.Snapshot, error) {
	return a.Analysis.Run(ctx, services.TriggerManual)
}

// Listen binds the configured port. Port 0 picks a free port.
func (a *Application) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return ln, nil
}

// Serve runs the pipeline, then serves the viewer on ln until ctx is
// cancelled. With watching enabled, a failed first run is logged and the
// viewer waits for corrected input instead of exiting.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if _, err := a.Analysis.Run(ctx, services.TriggerStartup); err != nil {
		if !a.Config.Analytics.Watch {
			ln.Close()
			return err
		}
		a.Logger.WarnContext(ctx, "initial analysis failed, waiting for input changes",
			slog.String("error", err.Error()))
	}

	a.WebSocketHub.Start()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.InfoContext(ctx, "viewer listening",
			slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if a.Config.Analytics.Watch {
		g.Go(func() error {
			if err := a.Analysis.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("input watcher stopped: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown stops the server, the feed and the telemetry providers.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	a.WebSocketHub.Stop()
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown error: %w", err))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}
