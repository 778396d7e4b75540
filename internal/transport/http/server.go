package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postdeck/internal/ayrshare"
	"postdeck/internal/cache"
	"postdeck/internal/config"
	"postdeck/internal/database"
	"postdeck/internal/handler"
	"postdeck/internal/notify"
	"postdeck/internal/queue"
	"postdeck/internal/redis"
	"postdeck/internal/repository"
	"postdeck/internal/service"
	"postdeck/internal/worker"
)

// Run wires the whole server: config, database, Redis, services, background
// workers, and the HTTP router. Blocks until SIGINT/SIGTERM.
func Run() error {
	ctx := context.Background()

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Connect to Postgres and apply the schema
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.CreateTables(ctx, db); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	// 3. Connect to Redis
	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("create redis client: %w", err)
	}
	defer rdb.Close()

	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// 4. Caches and queue
	calendarCache := cache.NewCalendarCache(rdb.Client)
	analyticsCache := cache.NewAnalyticsCache(rdb.Client)
	publisher := queue.NewPublisher(rdb.Client)
	consumer := queue.NewConsumer(rdb.Client)

	// 5. Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	// 6. External clients
	ayrshareClient := ayrshare.NewClient(cfg.AyrshareAPIKey, cfg.AyrshareBaseURL)

	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.SlackBotToken != "" && cfg.SlackReviewChannel != "" {
		slackNotifier, err := notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackReviewChannel)
		if err != nil {
			return fmt.Errorf("slack notifier: %w", err)
		}
		notifier = slackNotifier
	}

	// 7. Services
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	draftService := service.NewDraftService(draftRepo)
	approvalService := service.NewApprovalService(draftRepo, reviewRepo, userRepo, publisher)
	scheduleService := service.NewScheduleService(draftRepo, calendarCache, publisher)
	inboxService := service.NewInboxService(inboxRepo, ayrshareClient)
	analyticsService := service.NewAnalyticsService(draftRepo, analyticsCache, ayrshareClient)
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("media service: %w", err)
	}

	// 8. Background workers and dispatcher
	workerHandler := worker.NewHandler(draftRepo, userRepo, calendarCache, ayrshareClient, notifier)
	workerHandler.SetInboxSyncer(inboxService)

	manager := worker.NewManager(consumer, workerHandler, worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer manager.Stop()

	dispatcher := worker.NewDispatcher(draftRepo, userRepo, publisher,
		time.Duration(cfg.DispatchIntervalSec)*time.Second,
		time.Duration(cfg.InboxSyncIntervalSec)*time.Second)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// 9. HTTP router
	router := NewRouter(RouterConfig{
		AuthHandler:       handler.NewAuthHandler(userService, authService),
		DraftHandler:      handler.NewDraftHandler(draftService),
		EngagementHandler: handler.NewEngagementHandler(draftService),
		ApprovalHandler:   handler.NewApprovalHandler(approvalService, userService),
		ScheduleHandler:   handler.NewScheduleHandler(scheduleService),
		InboxHandler:      handler.NewInboxHandler(inboxService),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analyticsService),
		MediaHandler:      handler.NewMediaHandler(mediaService, userService),
		JWTSecret:         cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
