package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zoundz/internal/config"
	"zoundz/internal/frames"
	"zoundz/internal/http-server/handlers/api/ping"
	"zoundz/internal/http-server/handlers/drop"
	"zoundz/internal/http-server/handlers/frame"
	gqlhandler "zoundz/internal/http-server/handlers/graphql"
	mockhandler "zoundz/internal/http-server/handlers/mock"
	mwLogger "zoundz/internal/http-server/middleware/logger"
	"zoundz/internal/lib/logger/sl"
	"zoundz/internal/metrics"
	"zoundz/internal/mirror"
	"zoundz/internal/provider/graphql"
	"zoundz/internal/provider/mock"
	"zoundz/internal/storage/postgres"
	"zoundz/internal/validation/neynar"
)

const (
	shutdownTimeout = 10 * time.Second
	pingTimeout     = 5 * time.Second
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "zoundz",
	Short: "zoundz serves Farcaster frames for music NFT auctions",
	Long:  "zoundz serves Farcaster frames for music NFT auctions and the bid endpoints the web client uses",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy every auction from the subgraph into the postgres mirror",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		if err := config.ValidateSync(cfg); err != nil {
			return err
		}
		return runSync(c.Context(), cfg)
	},
}

func main() {
	rootCmd.AddCommand(syncCmd)

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.ConfigureCLI(v, config.EnvPrefix, config.Flags, rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func run(cfg config.Config) error {
	log := setupLogger(cfg.LogDebug)
	log.Info("starting zoundz", slog.String("provider", cfg.ProviderKind), slog.Int64("chain_id", cfg.ChainId))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}

	gateway := graphql.New(
		graphql.Endpoint(cfg.GraphGatewayURL, cfg.GraphAPIKey, cfg.GraphSubgraphId),
		cfg.GraphAPIKey,
		graphql.WithHTTPClient(upstream),
		graphql.WithMetrics(m),
	)

	store, err := mock.New()
	if err != nil {
		return fmt.Errorf("loading mock auctions: %w", err)
	}

	var provider frames.AuctionProvider
	switch cfg.ProviderKind {
	case config.ProviderGraphQL:
		provider = gateway
	case config.ProviderPostgres:
		storage, err := openMirror(cfg)
		if err != nil {
			return err
		}
		defer storage.Close()
		provider = storage
	default:
		provider = store
	}

	validator := neynar.New(cfg.NeynarValidateURL, cfg.NeynarAPIKey,
		neynar.WithHTTPClient(upstream),
		neynar.WithMetrics(m),
	)

	docs := frames.NewDocuments(frames.NewLinks(cfg.PublicURL), cfg.DefaultImage)
	responder := frames.NewResponder(log, validator, provider, docs, frames.WithMetrics(m))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)

	router.Route("/frame/{id}", func(r chi.Router) {
		r.Post("/bid", frame.NewBid(log, responder))
		r.Post("/confirm", frame.NewConfirm(log, responder))
	})
	router.Get("/drop/{id}", drop.NewPage(log, provider, docs, cfg.DefaultImage))
	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.New(log, cfg.ProviderKind))
		r.Get("/drops/{id}/bid-tx", drop.NewBidTx(log, provider, drop.BidTxConfig{
			AuctionHouse: cfg.AuctionHouse,
			ChainId:      cfg.ChainId,
		}))
		r.Post("/graphql", gqlhandler.NewProxy(log, gateway))
		r.Options("/graphql", gqlhandler.NewOptions())
		r.Post("/mock/auctions", mockhandler.NewAuctions(log, store))
	})

	srv := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("starting metrics server", slog.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-done:
	case runErr = <-errCh:
		log.Error("server failed", sl.Err(runErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", sl.Err(err))
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Error("failed to stop metrics server", sl.Err(err))
	}

	log.Info("server stopped")
	return runErr
}

func openMirror(cfg config.Config) (*postgres.Storage, error) {
	storage, err := postgres.New(cfg.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := storage.Ping(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return storage, nil
}

func runSync(ctx context.Context, cfg config.Config) error {
	log := setupLogger(cfg.LogDebug)

	storage, err := openMirror(cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	source := graphql.New(
		graphql.Endpoint(cfg.GraphGatewayURL, cfg.GraphAPIKey, cfg.GraphSubgraphId),
		cfg.GraphAPIKey,
		graphql.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	saved, err := mirror.New(log, source, storage, int(cfg.SyncPageSize)).Run(ctx)
	if err != nil {
		return fmt.Errorf("syncing mirror after %d auctions: %w", saved, err)
	}
	return nil
}
