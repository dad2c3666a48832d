package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nafany/config"
	"nafany/cron"
	"nafany/database"
	chatRepo "nafany/database/repository/chat"
	feedbackRepo "nafany/database/repository/feedback"
	providerRepo "nafany/database/repository/provider"
	userRepo "nafany/database/repository/user"
	"nafany/handlers"
	"nafany/routes"
	"nafany/services/admin"
	"nafany/services/booking"
	"nafany/services/chat"
	"nafany/services/feedback"
	"nafany/services/notification"
	"nafany/services/provider"
	"nafany/services/user"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type repositories struct {
	providers providerRepo.ProviderRepository
	users     userRepo.UserRepository
	feedback  feedbackRepo.FeedbackRepository
	chats     chatRepo.ChatRepository
}

func openRepositories(ctx context.Context, cfg config.Config, health map[string]utils.Pinger) (*repositories, error) {
	if cfg.DatabaseDriver == "memory" {
		utils.GetLogger().Warn("Using in-memory store; data is lost on restart")
		return &repositories{
			providers: providerRepo.NewMemoryProviderRepo(),
			users:     userRepo.NewMemoryUserRepo(),
			feedback:  feedbackRepo.NewMemoryFeedbackRepo(),
			chats:     chatRepo.NewMemoryChatRepo(),
		}, nil
	}

	db, err := database.InitDB(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}
	health["mongo"] = utils.PingerFunc(func(ctx context.Context) error {
		return database.MongoClient.Ping(ctx, nil)
	})

	providers, err := providerRepo.NewMongoProviderRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	users, err := userRepo.NewMongoUserRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	fb, err := feedbackRepo.NewMongoFeedbackRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	chats, err := chatRepo.NewMongoChatRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	return &repositories{providers: providers, users: users, feedback: fb, chats: chats}, nil
}

func redisPinger(client *redis.Client) utils.Pinger {
	return utils.PingerFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]utils.Pinger{}

	repos, err := openRepositories(ctx, cfg, health)
	if err != nil {
		logger.Fatal("main: failed to open the document store", zap.Error(err))
	}

	// Redis is split across logical databases: cache, revoked sessions and the job queue.
	var (
		rankingCache utils.Cache = utils.NewMemoryCache()
		revoked      utils.Cache = utils.NewMemoryCache()
		broker       chat.Broker = chat.NewLocalBroker()
		queueOpts    *asynq.RedisClientOpt
	)
	if cfg.RedisEnabled {
		cacheClient, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
		if err != nil {
			logger.Fatal("main: redis cache unavailable", zap.Error(err))
		}
		authClient, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisAuthDB)
		if err != nil {
			logger.Fatal("main: redis auth store unavailable", zap.Error(err))
		}
		defer cacheClient.Close()
		defer authClient.Close()

		rankingCache = utils.NewRedisCache(cacheClient)
		revoked = utils.NewRedisCache(authClient)
		broker = chat.NewRedisBroker(cacheClient)
		queueOpts = &asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
		health["redis"] = redisPinger(cacheClient)
	} else {
		logger.Warn("Redis disabled; cache, revocations and chat fan-out are process local")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if config.IsProduction() {
			logger.Fatal("main: JWT_SECRET must be set in production")
		}
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set; using a random secret, sessions end on restart")
	}
	tokens := utils.NewTokenManager(secret, cfg.SessionTTL())
	validator := utils.NewValidator()

	// Notifications go through the asynq queue when both Redis and Firebase are available,
	// are sent inline with Firebase only, and are dropped otherwise.
	var notifier notification.Notifier = notification.NoopNotifier{}
	var worker *asynq.Server
	if cfg.FirebaseCredentialsFile != "" {
		messagingClient, err := utils.NewMessagingClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Error("main: push notifications disabled", zap.Error(err))
		} else {
			dispatcher := notification.NewDispatcher(repos.users, repos.providers, messagingClient)
			notifier = dispatcher
			if queueOpts != nil {
				queueClient := asynq.NewClient(*queueOpts)
				defer queueClient.Close()
				notifier = notification.NewQueueNotifier(queueClient)

				srv, mux := cron.NewNotificationWorker(*queueOpts, dispatcher)
				cron.StartNotificationWorker(srv, mux)
				worker = srv
			}
		}
	}

	// services.
	userService := &user.DefaultUserService{
		Repo:          repos.users,
		Tokens:        tokens,
		Validator:     validator,
		MaxImageBytes: cfg.MaxImageBytes,
	}
	providerService := &provider.DefaultProviderService{
		Repo:          repos.providers,
		Tokens:        tokens,
		Validator:     validator,
		Cache:         rankingCache,
		RankingTTL:    cfg.RankingCacheTTL(),
		PageSize:      cfg.PageSize,
		MaxImageBytes: cfg.MaxImageBytes,
	}
	bookingService := &booking.DefaultBookingService{
		Providers: repos.providers,
		Users:     repos.users,
		Notifier:  notifier,
		Validator: validator,
	}
	feedbackService := &feedback.DefaultFeedbackService{
		Repo:      repos.feedback,
		Validator: validator,
	}
	chatService := &chat.DefaultChatService{
		Repo:      repos.chats,
		Users:     repos.users,
		Providers: repos.providers,
		Broker:    broker,
		Notifier:  notifier,
		Validator: validator,
	}
	adminService := &admin.DefaultAdminService{
		Username:        cfg.AdminUsername,
		Password:        cfg.AdminPassword,
		Tokens:          tokens,
		Users:           repos.users,
		Providers:       repos.providers,
		Feedback:        repos.feedback,
		ProviderService: providerService,
	}

	handlerBundle := &handlers.HandlerBundle{
		Tokens:            tokens,
		Revoked:           revoked,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		Session:           handlers.NewSessionHandler(tokens, revoked),
		Settings:          handlers.NewSettingsHandler(userService, providerService),
		User:              handlers.NewUserHandler(userService),
		Provider:          handlers.NewProviderHandler(providerService),
		Booking:           handlers.NewBookingHandler(bookingService),
		Feedback:          handlers.NewFeedbackHandler(feedbackService),
		Chat:              handlers.NewChatHandler(chatService),
		Admin:             handlers.NewAdminHandler(adminService, userService, providerService),
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(utils.ErrorHandler())
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(ctx, time.Minute, health)
	if ttl := cfg.RankingCacheTTL(); ttl > 0 {
		go cron.StartRankingCron(ctx, ttl, providerService)
	}

	server := routes.NewServer(ctx, ":"+cfg.AppPort, router)
	go func() {
		logger.Info("Server listening", zap.String("port", cfg.AppPort), zap.String("driver", cfg.DatabaseDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("MongoDB disconnect failed", zap.Error(err))
	}
}
