package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	"github.com/dropDatabas3/linkjohn/internal/cache"
	"github.com/dropDatabas3/linkjohn/internal/config"
	oauthctl "github.com/dropDatabas3/linkjohn/internal/http/controllers/oauth"
	"github.com/dropDatabas3/linkjohn/internal/http/router"
	oauthsvc "github.com/dropDatabas3/linkjohn/internal/http/services/oauth"
	"github.com/dropDatabas3/linkjohn/internal/metrics"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/oauth/google"
	"github.com/dropDatabas3/linkjohn/internal/oauth/kakao"
	"github.com/dropDatabas3/linkjohn/internal/observability/logger"
	"github.com/dropDatabas3/linkjohn/internal/rate"
	"github.com/dropDatabas3/linkjohn/internal/security/token"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
	"github.com/dropDatabas3/linkjohn/internal/store/memory"
	"github.com/dropDatabas3/linkjohn/internal/store/pg"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*configPath)
		},
	}
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
	})
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	var repo core.Repository
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		repo = store
	default:
		repo = memory.New()
	}
	defer repo.Close()

	// Cache
	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cacheClient.Close()

	refresh := token.NewRefreshStore(cacheClient, cfg.RefreshTTL())

	// Providers
	resolver := auth.NewResolver()
	clients := make(map[core.ProviderType]oauth.Client)
	if p := cfg.Providers.Kakao; p.Enabled() {
		c := kakao.New(p.ClientID, p.ClientSecret, p.RedirectURI)
		clients[core.ProviderKakao] = c
		resolver.Register(auth.NewOIDCProvider(c, repo), c.Issuers()...)
	}
	if p := cfg.Providers.Google; p.Enabled() {
		c := google.New(p.ClientID, p.ClientSecret, p.RedirectURI)
		clients[core.ProviderGoogle] = c
		resolver.Register(auth.NewOIDCProvider(c, repo), c.Issuers()...)
	}
	for pt := range clients {
		log.Info("oauth provider enabled", logger.Provider(pt.String()))
	}

	// Métricas
	if err := metrics.RegisterAuth(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	metricsHandler, err := metrics.RegisterHTTP(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	svc := oauthsvc.NewService(oauthsvc.Deps{
		Repo:     repo,
		Refresh:  refresh,
		Resolver: resolver,
	})

	// Rate limiting
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if rc := cache.Raw(cacheClient); rc != nil {
			limiter = rate.NewRedisLimiter(rc, "rl:login:", cfg.Rate.Login.Limit, cfg.RateLoginWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.RateLoginWindow())
		}
	}

	handler := router.New(router.Deps{
		OAuth:    oauthctl.NewController(oauthctl.Deps{Service: svc, Clients: clients}),
		Resolver: resolver,
		Limiter:  limiter,
		Repo:     repo,
		Cache:    cacheClient,
		Metrics:  metricsHandler,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
