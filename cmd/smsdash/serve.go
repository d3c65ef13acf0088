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

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/LeventeLantos/sms-dashboard/internal/api"
	"github.com/LeventeLantos/sms-dashboard/internal/cache"
	"github.com/LeventeLantos/sms-dashboard/internal/client"
	"github.com/LeventeLantos/sms-dashboard/internal/config"
	"github.com/LeventeLantos/sms-dashboard/internal/repo"
	"github.com/LeventeLantos/sms-dashboard/internal/service"
	"github.com/LeventeLantos/sms-dashboard/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAll()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	sessionCache, closeCache, err := newSessionCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	sessions, err := session.NewManager([]byte(cfg.Session.SecretKey), cfg.Session.TTL)
	if err != nil {
		return err
	}

	twilio := client.NewTwilioClient(cfg.Twilio.BaseURL, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.Timeout)
	dash := service.NewDashboard(
		service.NewSender(twilio, cfg.Twilio.PhoneNumber),
		repo.NewFileLogRepo(cfg.LogFile),
		sessionCache,
		cfg.Admin.Password,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           loggingMiddleware(api.Router(api.NewHandler(dash, sessions))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("sms dashboard starting",
			"addr", cfg.Server.Address,
			"log_file", cfg.LogFile,
			"redis", cfg.Redis.Enabled,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSessionCache(ctx context.Context, cfg *config.Config) (cache.SessionCache, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemorySessionCache(cfg.Session.TTL), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return cache.NewRedisSessionCache(rdb, cfg.Session.TTL), func() { _ = rdb.Close() }, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
