// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"formauth-server/internal/api/handler"
	"formauth-server/internal/api/middleware"
	"formauth-server/internal/config"
	"formauth-server/internal/domain/auth"
	"formauth-server/internal/repository"
)

type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *chi.Mux
	auth   *handler.AuthHandler
	ws     *handler.WebSocketHandler

	checks  map[string]func(context.Context) error
	closers []func()
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return dbpool, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

// New wires the stores, the auth service and the routes. The registry is
// postgres when DATABASE_URL is set, else sqlite when SQLITE_PATH is set,
// else in memory. Preferences live in redis when REDIS_ADDR is set.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		log:    log,
		router: chi.NewRouter(),
		checks: make(map[string]func(context.Context) error),
	}

	registry, err := s.initRegistry(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	var prefs auth.PreferenceStore
	if cfg.RedisAddr != "" {
		redisClient := initRedis(cfg)
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
		s.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		prefs = auth.NewPreferenceStore(redisClient, cfg.RememberMeTTL)
		log.Info("remember-me store ready", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		prefs = auth.NewMemoryPreferenceStore()
		log.Info("remember-me store ready", "backend", "memory")
	}

	backend := auth.NewSimulatedBackend(log,
		auth.WithDelay(cfg.BackendDelay),
		auth.WithSuccessRates(cfg.LoginSuccessRate, cfg.SignupSuccessRate),
	)
	validate := auth.NewValidator(validator.New())
	authService := auth.NewAuthService(registry, prefs, backend,
		auth.NewPlaceholderEncoder(cfg.HashDelay, nil), validate, log,
		auth.Options{FollowUpDelay: cfg.FollowUpDelay, LoginPath: cfg.LoginPath})

	s.auth = handler.NewAuthHandler(authService, log)
	s.ws = handler.NewWebSocketHandler(authService, cfg.SuccessRevert, log)
	s.setupRoutes()
	return s, nil
}

func (s *Server) initRegistry(ctx context.Context) (auth.EmailRegistry, error) {
	switch {
	case s.cfg.DatabaseURL != "":
		db, err := initDB(ctx, s.cfg)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.checks["postgres"] = db.Ping
		reg := repository.NewPostgresRegistry(db)
		if err := reg.Migrate(ctx, repository.SeedEmails...); err != nil {
			return nil, err
		}
		s.log.Info("registry ready", "backend", "postgres")
		return reg, nil
	case s.cfg.SQLitePath != "":
		reg, err := repository.OpenSQLiteRegistry(s.cfg.SQLitePath, repository.SeedEmails...)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = reg.Close() })
		s.checks["sqlite"] = reg.Ping
		s.log.Info("registry ready", "backend", "sqlite", "path", s.cfg.SQLitePath)
		return reg, nil
	default:
		s.log.Info("registry ready", "backend", "memory")
		return repository.NewMemoryRegistry(repository.SeedEmails...), nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ServerAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests and live sessions for up to the configured shutdown
// timeout. Request contexts derive from ctx so pending backend calls and
// websocket sessions are aborted on shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := s.ws.Wait(shutdownCtx); err != nil {
		return fmt.Errorf("drain live sessions: %w", err)
	}
	return <-errCh
}

// Close releases the stores opened by New.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func (s *Server) setupRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.ClientID)
	s.router.Use(middleware.Logger(s.log))
	s.router.Use(chimw.Recoverer)

	s.router.Get("/healthz", s.health)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/login", s.auth.Login)
		r.Post("/signup", s.auth.SignUp)
		r.Get("/login/preference", s.auth.Preference)
		r.Post("/password/forgot", s.auth.ForgotPassword)
		r.Get("/forms/{form}/state", s.auth.FormState)
	})
	s.router.Get("/ws/{form}", s.ws.HandleConnection)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	code := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	handler.WriteJSON(w, r, map[string]interface{}{"status": http.StatusText(code), "checks": status}, code)
}
