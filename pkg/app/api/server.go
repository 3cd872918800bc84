// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/infinitybotlist/eureka/zapchi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	"github.com/goonhub/goonhub/pkg/activity"
	activityservice "github.com/goonhub/goonhub/pkg/activity/service"
	"github.com/goonhub/goonhub/pkg/ai"
	apphttp "github.com/goonhub/goonhub/pkg/app/http"
	chatservice "github.com/goonhub/goonhub/pkg/chat/service"
	"github.com/goonhub/goonhub/pkg/config"
	creatorservice "github.com/goonhub/goonhub/pkg/creator/service"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/migrations/apidb"
	"github.com/goonhub/goonhub/pkg/pgutil"
	mghelper "github.com/goonhub/goonhub/pkg/pgutil/migrations"
	postservice "github.com/goonhub/goonhub/pkg/post/service"
	"github.com/goonhub/goonhub/pkg/ratelimit"
	"github.com/goonhub/goonhub/pkg/solana"
	"github.com/goonhub/goonhub/pkg/store"
	"github.com/goonhub/goonhub/pkg/store/memory"
	"github.com/goonhub/goonhub/pkg/store/pg"
	streamservice "github.com/goonhub/goonhub/pkg/stream/service"
	tipservice "github.com/goonhub/goonhub/pkg/tip/service"
	tokenservice "github.com/goonhub/goonhub/pkg/token/service"
	userservice "github.com/goonhub/goonhub/pkg/user/service"
	walletservice "github.com/goonhub/goonhub/pkg/wallet/service"
)

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.APIServerConfig
}

// NewServer initializes new api server.
func NewServer(cfg *config.APIServerConfig) *Server {
	return &Server{cfg: cfg}
}

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Store     store.Store
	Bus       events.Bus
	Limiter   ratelimit.Limiter
	Chain     walletservice.Chain
	Responder ai.Responder
	Verifier  solana.PaymentVerifier
	Mints     solana.MintSource
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	defer zap.ReplaceGlobals(logger)()

	logger.Info("Starting GoonHub API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
	)

	st, err := s.openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if cfg.Storage.SeedDemoData {
		n, err := store.Seed(ctx, st)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("Demo data seeded", zap.Int("creators_created", n))
	}

	bus, closeBus, err := s.newBus(st, logger)
	if err != nil {
		return err
	}
	defer closeBus()

	limiter, closeLimiter := s.newLimiter(ctx, logger)
	defer closeLimiter()

	chain, err := solana.NewClient(ctx, &cfg.Solana, logger)
	if err != nil {
		return err
	}
	defer chain.Close()

	router := NewRouter(cfg, Deps{
		Store:     st,
		Bus:       bus,
		Limiter:   limiter,
		Chain:     chain,
		Responder: ai.NewResponder(&cfg.AI, logger),
		Verifier:  solana.NewUnverifiedPayments(logger),
		Mints:     solana.VanityPool{},
	}, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) openStore(ctx context.Context, logger *zap.Logger) (store.Store, error) {
	if s.cfg.Storage.Backend != config.BackendPostgres {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	db, err := pgutil.ConnectDB(&s.cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if s.cfg.Database.AutoMigrate {
		group, err := mghelper.Migrate(ctx, db, apidb.Migrations)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Database migrated", zap.String("group", group.String()))
	}
	return pg.NewStore(db), nil
}

// newBus builds the event dispatcher with the activity notifier and, when
// NATS is configured, the broadcaster.
func (s *Server) newBus(st store.Store, logger *zap.Logger) (events.Bus, func(), error) {
	dispatcher := events.NewDispatcher(logger, activity.NewNotifier(st, s.cfg.Activity.MaxFanout, logger))
	if s.cfg.NATS.URL == "" {
		return dispatcher, func() {}, nil
	}

	nc, err := events.ConnectNATS(&s.cfg.NATS, logger)
	if err != nil {
		return nil, nil, err
	}
	publisher := events.NewNATSPublisher(nc, s.cfg.NATS.SubjectPrefix)
	dispatcher.Subscribe(publisher)

	return dispatcher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to drain NATS connection", zap.Error(err))
		}
	}, nil
}

// newLimiter prefers Redis when configured. An unreachable Redis at start
// degrades to the in-process limiter instead of failing boot.
func (s *Server) newLimiter(ctx context.Context, logger *zap.Logger) (ratelimit.Limiter, func()) {
	rl := s.cfg.RateLimit
	if !rl.Enabled {
		logger.Info("Rate limiting disabled")
		return ratelimit.Unlimited{}, func() {}
	}

	local := ratelimit.NewLocal(rl.RequestsPerMinute, rl.Burst)
	if s.cfg.Redis.URL == "" {
		return local, func() {}
	}

	client, err := ratelimit.ConnectRedis(ctx, s.cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process rate limiter", zap.Error(err))
		return local, func() {}
	}
	return ratelimit.NewRedis(client, rl.RequestsPerMinute, rl.Burst, local, logger), func() { _ = client.Close() }
}

// NewRouter builds the full HTTP surface over deps.
func NewRouter(cfg *config.APIServerConfig, deps Deps, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(zapchi.Logger(logger, "api"))
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	limit := func(route string) func(http.Handler) http.Handler {
		return ratelimit.Middleware(deps.Limiter, route, logger)
	}

	userservice.RegisterRoutes(r, userservice.NewLog(userservice.NewService(deps.Store, deps.Bus, logger), logger), logger)
	creatorservice.RegisterRoutes(r, creatorservice.NewService(deps.Store, logger), logger)
	postservice.RegisterRoutes(r, postservice.NewLog(postservice.NewService(deps.Store, deps.Verifier, deps.Bus, logger), logger), logger)
	tokenservice.RegisterRoutes(r, tokenservice.NewService(deps.Store, deps.Mints, deps.Bus, logger), limit("token_launch"), logger)
	tipservice.RegisterRoutes(r, tipservice.NewService(deps.Store, deps.Verifier, deps.Bus, logger), logger)
	chatservice.RegisterRoutes(r, chatservice.NewLog(chatservice.NewService(deps.Store, deps.Responder, deps.Verifier, logger), logger), limit("chat_send"), logger)
	activityservice.RegisterRoutes(r, activityservice.NewService(deps.Store, cfg.Activity, logger), logger)
	streamservice.RegisterRoutes(r, streamservice.NewService(deps.Store, deps.Bus, logger), logger)
	walletservice.RegisterRoutes(r, walletservice.NewService(deps.Chain, logger), logger)

	return r
}
