// @title        Inspection API
// @version      1.0
// @description  Multi-tenant property inspection API.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
//
// @securityDefinitions.apikey  SessionAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/api"
	"github.com/vistoria/inspection-api/internal/api/handler"
	"github.com/vistoria/inspection-api/internal/core/service"
	"github.com/vistoria/inspection-api/internal/infrastructure/config"
	mongodb "github.com/vistoria/inspection-api/internal/infrastructure/db/mongo"
	redisdb "github.com/vistoria/inspection-api/internal/infrastructure/db/redis"
	"github.com/vistoria/inspection-api/internal/infrastructure/queue"
	"github.com/vistoria/inspection-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "inspection-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	started := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "inspection-api",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		Timeout:     cfg.Mongo.Timeout,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		AppName:     "inspection-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	store, err := mongodb.NewStore(db)
	if err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Services ---
	authSvc := service.NewAuthService(store.Users, store.Companies, cfg.JWTSecret, cfg.JWTTTL, logger.Component("auth"))
	clientAuthSvc := service.NewClientAuthService(store.Clients, redisdb.NewSessionStore(rdb), cfg.Session.TTL, logger.Component("client_auth"))
	companySvc := service.NewCompanyService(store.Companies, logger.Component("companies"))
	userSvc := service.NewUserService(store.Users, logger.Component("users"))
	propertySvc := service.NewPropertyService(store.Properties, logger.Component("properties"))
	inspectionSvc := service.NewInspectionService(store.Inspections, store.Properties, store.Users, logger.Component("inspections"))
	uploadSvc := service.NewUploadService(store.Uploads, store.Objects, service.UploadLimits{
		MaxFiles:    cfg.Upload.MaxFiles,
		MaxFileSize: cfg.Upload.MaxFileSize,
	}, logger.Component("uploads"))
	contestSvc := service.NewContestService(store.Contests, store.Inspections, logger.Component("contests"))
	dashboardSvc := service.NewDashboardService(store.Properties, store.Inspections, store.Contests, store.Users, store.Uploads, logger.Component("dashboard"))
	syncSvc := service.NewSyncService(store.Sync, redisdb.NewSyncClaimer(rdb), inspectionSvc, propertySvc, cfg.Sync.MaxAttempts, logger.Component("sync"))

	// --- Background sync workers ---
	workerCtx, stopWorkers := context.WithCancel(ctx)
	dispatcher := queue.NewDispatcher(cfg.Sync.Workers, cfg.Sync.MaxAttempts, syncSvc, logger.Component("dispatcher"))
	syncSvc.SetQueue(dispatcher)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()
	if n, err := syncSvc.Recover(ctx); err != nil {
		log.Warn().Err(err).Msg("recover unfinished sync operations")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("re-queued unfinished sync operations")
	}

	health := handler.NewHealthHandler(started,
		[]string{"JWT_SECRET", "MONGO_URI", "REDIS_ADDR"},
		handler.Probe{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
		handler.Probe{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	e := api.NewRouter(cfg, api.Dependencies{
		Auth:        authSvc,
		ClientAuth:  clientAuthSvc,
		Sessions:    clientAuthSvc,
		Tenants:     companySvc,
		Companies:   companySvc,
		Users:       userSvc,
		Properties:  propertySvc,
		Inspections: inspectionSvc,
		Uploads:     uploadSvc,
		Contests:    contestSvc,
		Sync:        syncSvc,
		Dashboard:   dashboardSvc,
		Health:      health,
	}, logger.Component("http"))

	return serve(ctx, e, cfg.Port, log)
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, e http.Handler, port string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("stopped")
	return nil
}
