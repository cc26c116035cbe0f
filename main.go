// File: voicetask/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicetask/config"
	"voicetask/cron"
	"voicetask/database"
	profileRepo "voicetask/database/repository/profile"
	recordsRepo "voicetask/database/repository/records"
	workflowRepo "voicetask/database/repository/workflow"
	"voicetask/handlers"
	"voicetask/middleware"
	"voicetask/routes"
	"voicetask/services/booking"
	"voicetask/services/executor"
	ai "voicetask/services/intelligence"
	"voicetask/services/pipeline"
	"voicetask/services/profile"
	"voicetask/services/provider"
	"voicetask/services/scheduler"
	"voicetask/services/speech"
	"voicetask/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// repositories.
	profiles, workflows, records, mongoClient := initRepositories(logger)
	redisClients := map[string]*redis.Client{}

	// services.
	catalog := provider.NewCatalogService(logger.Named("catalog"))
	profileService := &profile.DefaultProfileService{Repo: profiles}
	workflowService := &scheduler.DefaultWorkflowService{
		Workflows: workflows,
		Records:   records,
		Logger:    logger.Named("scheduler"),
	}

	var automation executor.Automation = &executor.SimulatedAutomation{}
	if cfg.ExecutorMode == "browser" {
		automation = executor.NewBrowserAutomation(cfg.ChromeHeadless, logger.Named("browser"))
	}
	taskExecutor := &executor.DefaultExecutor{
		Profiles:   profileService,
		Catalog:    catalog,
		Automation: automation,
		Logger:     logger.Named("executor"),
		Timeout:    cfg.ExecutorTimeout(),
	}

	var store booking.ConversationStore = booking.NewMemoryStore()
	var history ai.HistoryStore = ai.NewMemoryHistoryStore()
	if cfg.SessionStore == "redis" {
		sessionClient := utils.GetSessionCacheClient()
		redisClients["session"] = sessionClient
		store = booking.NewRedisStore(sessionClient)
		history = ai.NewRedisHistoryStore(sessionClient, cfg.SessionTTL())
	}

	var notifier booking.Notifier = booking.NopNotifier{}
	if cfg.CalendarWebhookURL != "" {
		notifier = booking.NewWebhookNotifier(cfg.CalendarWebhookURL)
	}

	orchestrator := &booking.DefaultOrchestrator{
		Store:      store,
		Catalog:    catalog,
		Executor:   taskExecutor,
		Workflows:  workflowService,
		Profiles:   profileService,
		Notifier:   notifier,
		Logger:     logger.Named("orchestrator"),
		SessionTTL: cfg.SessionTTL(),
		PendingTTL: cfg.PendingTTL(),
	}

	sweeper := &booking.Sweeper{Store: store, Interval: cfg.SweepInterval(), Logger: logger.Named("sweeper")}
	if err := sweeper.Start(ctx); err != nil {
		logger.Sugar().Fatalf("main: failed to start conversation sweeper: %v", err)
	}

	classifier, closeClassifier := initClassifier(ctx, catalog, logger)
	defer closeClassifier()

	commandService := &pipeline.DefaultCommandService{
		Classifier:   classifier,
		Orchestrator: orchestrator,
		History:      history,
		Logger:       logger.Named("pipeline"),
	}
	closeSpeech := initSpeech(ctx, commandService, logger)
	defer closeSpeech()

	driver := &scheduler.Driver{
		Workflows: workflowService,
		Executor:  taskExecutor,
		Logger:    logger.Named("driver"),
	}
	stopWorker := initScheduledRuns(ctx, driver, logger)
	defer stopWorker()

	utils.StartHealthMonitor(ctx, redisClients, mongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	commandHandler := handlers.NewCommandHandler(commandService, orchestrator)
	profileHandler := handlers.NewProfileHandler(profileService)
	providerHandler := handlers.NewProviderHandler(catalog)
	workflowHandler := handlers.NewWorkflowHandler(workflowService, driver)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Command endpoints.
		CommandHandler: commandHandler.HandleCommand,
		SessionHandler: commandHandler.GetSessionHandler,

		// Profile endpoints.
		GetProfileHandler:    profileHandler.GetProfileHandler,
		UpdateProfileHandler: profileHandler.UpdateProfileHandler,

		// Provider endpoints.
		SearchProvidersHandler: providerHandler.SearchProvidersHandler,
		GetProviderHandler:     providerHandler.GetProviderHandler,
		CategoriesHandler:      providerHandler.CategoriesHandler,

		// Workflow endpoints.
		ListWorkflowsHandler:      workflowHandler.ListWorkflowsHandler,
		CreateWorkflowHandler:     workflowHandler.CreateWorkflowHandler,
		GetWorkflowHandler:        workflowHandler.GetWorkflowHandler,
		DeleteWorkflowHandler:     workflowHandler.DeleteWorkflowHandler,
		SetWorkflowStatusHandler:  workflowHandler.SetWorkflowStatusHandler,
		RunDueHandler:             workflowHandler.RunDueHandler,
		ReportExecutionHandler:    workflowHandler.ReportExecutionHandler,
		WorkflowExecutionsHandler: workflowHandler.WorkflowExecutionsHandler,
		ListExecutionsHandler:     workflowHandler.ListExecutionsHandler,
		IntervalsHandler:          workflowHandler.IntervalsHandler,

		HealthHandler: handlers.HealthHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func initRepositories(logger *zap.Logger) (profileRepo.ProfileRepository, workflowRepo.WorkflowRepository, recordsRepo.ExecutionRepository, *mongo.Client) {
	if config.AppConfig.StorageDriver == "mongo" {
		database.InitDB()
		logger.Info("main: using mongo storage", zap.String("database", config.AppConfig.DatabaseName))
		return profileRepo.NewMongoProfileRepo(), workflowRepo.NewMongoWorkflowRepo(), recordsRepo.NewMongoRecordRepo(), database.MongoClient
	}

	dir := config.AppConfig.DataDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Sugar().Fatalf("main: failed to create data dir %s: %v", dir, err)
	}
	profiles, err := profileRepo.NewFileProfileRepo(dir)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open profile store: %v", err)
	}
	workflows, err := workflowRepo.NewFileWorkflowRepo(dir)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open workflow store: %v", err)
	}
	records, err := recordsRepo.NewFileRecordRepo(dir)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open execution log: %v", err)
	}
	logger.Info("main: using file storage", zap.String("dir", dir))
	return profiles, workflows, records, nil
}

// initClassifier prefers Gemini and falls back to the keyword classifier when it is
// unconfigured or explicitly disabled.
func initClassifier(ctx context.Context, catalog provider.CatalogService, logger *zap.Logger) (ai.IntentClassifier, func()) {
	keyword := &ai.KeywordClassifier{Categories: catalog.Categories(), Normalize: provider.NormalizeCategory}
	if config.AppConfig.ClassifierMode == "keyword" {
		return keyword, func() {}
	}

	client, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Warn("main: Gemini unavailable, using keyword classifier", zap.Error(err))
		return keyword, func() {}
	}
	classifier := &ai.GeminiClassifier{
		Generator:  client,
		Categories: catalog.Categories(),
		Logger:     logger.Named("classifier"),
	}
	return classifier, func() { client.Close() }
}

// initSpeech attaches Google speech clients when a service account is configured.
func initSpeech(ctx context.Context, svc *pipeline.DefaultCommandService, logger *zap.Logger) func() {
	cfg := config.AppConfig
	if cfg.GoogleServiceAccountFile == "" {
		logger.Info("main: no service account configured, speech input and output disabled")
		return func() {}
	}

	var closers []func() error
	transcriber, err := speech.NewGoogleTranscriber(ctx, cfg.GoogleServiceAccountFile, cfg.SpeechLanguage)
	if err != nil {
		logger.Warn("main: speech-to-text disabled", zap.Error(err))
	} else {
		svc.Transcriber = transcriber
		closers = append(closers, transcriber.Close)
	}
	synthesizer, err := speech.NewGoogleSynthesizer(ctx, cfg.GoogleServiceAccountFile, cfg.SpeechLanguage, cfg.TTSVoice)
	if err != nil {
		logger.Warn("main: text-to-speech disabled", zap.Error(err))
	} else {
		svc.Synthesizer = synthesizer
		closers = append(closers, synthesizer.Close)
	}

	return func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("main: failed to close speech client", zap.Error(err))
			}
		}
	}
}

// initScheduledRuns starts the scheduled-run trigger selected by SCHEDULER_MODE.
func initScheduledRuns(ctx context.Context, driver *scheduler.Driver, logger *zap.Logger) func() {
	spec := config.AppConfig.SchedulerSpec
	switch config.AppConfig.SchedulerMode {
	case "asynq":
		stopWorker, err := cron.InitWorkflowWorker(ctx, driver, spec, logger.Named("worker"))
		if err != nil {
			logger.Sugar().Fatalf("main: failed to start workflow worker: %v", err)
		}
		return stopWorker
	case "local":
		if err := cron.StartLocalScheduler(ctx, driver, spec, logger.Named("worker")); err != nil {
			logger.Sugar().Fatalf("main: failed to start local scheduler: %v", err)
		}
	default:
		logger.Info("main: scheduled runs are triggered over HTTP only")
	}
	return func() {}
}
