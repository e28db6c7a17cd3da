package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/crowdsourcing/surveyadmin/config"
	"github.com/crowdsourcing/surveyadmin/internal/adminui"
	"github.com/crowdsourcing/surveyadmin/internal/auth"
	"github.com/crowdsourcing/surveyadmin/internal/bootstrap"
	"github.com/crowdsourcing/surveyadmin/internal/fieldnames"
	"github.com/crowdsourcing/surveyadmin/internal/logging"
	cronjob "github.com/crowdsourcing/surveyadmin/internal/surveys/cron"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/repository"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the survey API, suggestion endpoints and admin proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if _, err := logging.Init(cfg.App.LogLevel, cfg.App.Environment); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.L()
	bootstrap.SetGinMode(cfg.App.Environment)

	db, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}

	var snapshots service.SnapshotStore
	if rdb != nil {
		defer rdb.Close()
		snapshots = repository.NewSnapshotCache(rdb, cfg.Survey.CacheTTL)
	}
	surveys := service.NewSurveyService(repository.NewSurveyRepository(db), snapshots)

	if snapshots != nil && cfg.Survey.CacheSchedule != "" {
		scheduler := cronjob.NewScheduler(cfg.Survey.CacheSchedule, surveys)
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// without a remote survey API the loader reads the one served here,
	// passing the staff gate with this service's own key
	apiBase, apiKey := cfg.Admin.SurveyAPIBaseURL, cfg.Admin.SurveyAPIKey
	if apiBase == "" {
		apiBase, apiKey = "http://"+loopback(ln.Addr()), cfg.Auth.APIKey
	}

	store := fieldnames.NewStore()
	loader := fieldnames.NewLoader(apiBase, store,
		fieldnames.WithHeader("X-API-Key", apiKey),
		fieldnames.WithRateLimit(cfg.Admin.LoaderRate, 2),
	)

	deps := bootstrap.RouterDeps{
		ServiceName: "surveyadmin",
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		DB:          db,
		Redis:       rdb,
		Surveys:     surveys,
		Staff:       auth.StaffOptions{APIKey: cfg.Auth.APIKey, Users: cfg.Auth.StaffUsers},
		Store:       store,
		Metrics:     loader,
	}

	if cfg.Admin.UpstreamURL != "" {
		upstream, err := url.Parse(cfg.Admin.UpstreamURL)
		if err != nil {
			return fmt.Errorf("parse ADMIN_UPSTREAM_URL: %w", err)
		}
		rw := adminui.NewRewriter(adminui.RewriterConfig{
			HelpIconSrc:  cfg.Admin.HelpIconSrc,
			TagSourceURL: bootstrap.TagSourceURL,
			Scripts:      cfg.Admin.Scripts,
		})
		deps.AdminProxy = adminui.NewProxy(upstream, rw)
	}

	srv := &http.Server{
		Handler:           bootstrap.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", ln.Addr().String()))
		serveErr <- srv.Serve(ln)
	}()

	go func() {
		if err := <-loader.Start(ctx); err != nil {
			log.Warn("field-name suggestions unavailable", zap.Error(err))
		}
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loopback turns a wildcard listen address into one the loader can dial
func loopback(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return addr.String()
	}
	return fmt.Sprintf("127.0.0.1:%d", tcp.Port)
}
