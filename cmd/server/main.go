// opsgate serves the admin console authentication API: token issue, refresh,
// revocation, cached session state, and login audit logs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	adminStore "opsgate/internal/admin/store"
	authService "opsgate/internal/auth/service"
	"opsgate/internal/auth/store/revocation"
	"opsgate/internal/auth/store/session"
	"opsgate/internal/auth/workers/cleanup"
	jwttoken "opsgate/internal/jwt_token"
	"opsgate/internal/lockout"
	loginlogService "opsgate/internal/loginlog/service"
	loginlogStore "opsgate/internal/loginlog/store"
	"opsgate/internal/platform/config"
	"opsgate/internal/platform/database"
	"opsgate/internal/platform/health"
	"opsgate/internal/platform/logger"
	"opsgate/internal/platform/metrics"
	platformRedis "opsgate/internal/platform/redis"
	"opsgate/internal/platform/tracer"
	"opsgate/internal/seeder"
	httptransport "opsgate/internal/transport/http"
	"opsgate/migrations"
)

func main() {
	// Missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing opsgate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	pool, err := database.New(database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		migrateErr := pool.Migrate(migrateCtx, migrations.FS)
		cancel()
		if migrateErr != nil {
			log.Error("migrations failed", "error", migrateErr)
			os.Exit(1)
		}
	}

	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	m := metrics.New()

	// Store selection: Postgres for durable data, Redis for TTL-bound
	// state, in-memory for single-node development.
	var (
		admins    authService.AdminStore
		logs      loginlogStore.Store
		sessions  session.Cache
		blacklist revocation.Blacklist
		lockStore lockout.Store
	)
	if pool != nil {
		admins = adminStore.NewPostgres(pool.DB())
		logs = loginlogStore.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, using in-memory admin and login log stores")
		mem := adminStore.NewMemory()
		if err := seeder.New(mem, log).SeedAll(context.Background()); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		admins = mem
		logs = loginlogStore.NewMemory()
	}
	if redisClient != nil {
		sessions = session.NewRedis(redisClient.Client)
		blacklist = revocation.NewRedis(redisClient.Client)
		lockStore = lockout.NewRedis(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, using in-memory session, blacklist, and lockout stores")
		sessions = session.NewMemory()
		blacklist = revocation.NewMemory()
		lockStore = lockout.NewMemory()
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.Issuer, cfg.Audience, cfg.TokenTTL)

	lockouts, err := lockout.New(lockStore, cfg.Lockout, lockout.WithMetrics(m))
	if err != nil {
		log.Error("lockout init failed", "error", err)
		os.Exit(1)
	}

	logSvc := loginlogService.NewService(logs, loginlogService.WithLogger(log))

	auth := authService.NewService(admins, sessions, blacklist, tokens,
		authService.WithLogger(log),
		authService.WithMetrics(m),
		authService.WithTracer(tracer.NewOTel()),
		authService.WithLoginLogs(logSvc),
		authService.WithLockout(lockouts),
		authService.WithSessionCacheTTL(cfg.SessionCacheTTL),
		authService.WithRefreshGrace(cfg.RefreshGrace),
	)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:             auth,
		LoginLogs:        logSvc,
		TokenValidator:   tokens,
		Revocation:       blacklist,
		Health:           healthHandler,
		Metrics:          m,
		MaintenanceToken: cfg.MaintenanceToken,
		Logger:           log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitor, err := cleanup.New(blacklist, sessions,
		cleanup.WithInterval(cfg.CleanupInterval),
		cleanup.WithLogger(log),
		cleanup.WithMetrics(m),
	)
	if err != nil {
		log.Error("cleanup init failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		err := janitor.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if redisClient != nil {
		g.Go(func() error {
			err := redisClient.StatsLoop(gctx, 15*time.Second)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
