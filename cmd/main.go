package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/app"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/config"
	"github.com/cheerclub/billing-api/internal/gateway"
	"github.com/cheerclub/billing-api/internal/logging"
	"github.com/cheerclub/billing-api/internal/utils/db"
	"github.com/cheerclub/billing-api/internal/webpay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	database, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if err := app.Migrate(database); err != nil {
		return err
	}

	keys, err := auth.LoadKeys(cfg.Auth)
	if err != nil {
		return err
	}
	var verifiers []auth.Verifier
	if cfg.Auth.JWKSURL != "" {
		remote, err := auth.NewRemoteVerifier(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer, cfg.Auth.Audience)
		if err != nil {
			return err
		}
		verifiers = append(verifiers, remote)
	}

	var locker webpay.Locker = webpay.NewMemoryLocker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		locker = webpay.NewRedisLocker(rdb)
		logger.Info("confirm locks shared through redis", zap.String("addr", cfg.RedisAddr))
	}

	a := app.New(app.Deps{
		DB:        database,
		Log:       logger,
		Keys:      keys,
		Gateway:   gateway.NewWebpay(cfg.Gateway),
		Locker:    locker,
		Verifiers: verifiers,
		Webpay: webpay.Options{
			FrontendURL:       cfg.Frontend,
			AcceptMissingCode: cfg.Gateway.AcceptMissingCode,
		},
	})
	if cfg.Gateway.AcceptMissingCode {
		logger.Warn("gateway responses without response_code are accepted")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(logging.Middleware(logger)(a.Router())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("billing api listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
