package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-api/internal/config"
	"github.com/noah-isme/judge-api/internal/database"
	"github.com/noah-isme/judge-api/internal/handler"
	"github.com/noah-isme/judge-api/internal/middleware"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/repository"
	"github.com/noah-isme/judge-api/internal/router"
	"github.com/noah-isme/judge-api/internal/service"
	"github.com/noah-isme/judge-api/pkg/ai"
	"github.com/noah-isme/judge-api/pkg/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Submission{},
		&models.Question{},
		&models.Answer{},
		&models.Judge{},
		&models.Assignment{},
		&models.Evaluation{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := connectRedis(cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher := connectPublisher(cfg, logger)

	registry := ai.NewModelRegistry(cfg.AllowedModels, cfg.DefaultModel)

	judgeAdapter, err := ai.NewOpenAIJudge(ai.OpenAIConfig{
		APIKey:    cfg.OpenAIAPIKey,
		MaxTokens: cfg.EvalMaxTokens,
		Timeout:   cfg.EvalTimeout,
		Registry:  registry,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to create judge adapter: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, validate, logger)
	judgeService := service.NewJudgeService(judgeRepo, registry, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, judgeRepo, validate, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, redisClient, cfg.SummaryCacheTT, logger)
	runService := service.NewRunService(
		submissionRepo,
		assignmentRepo,
		judgeRepo,
		evaluationRepo,
		judgeAdapter,
		publisher,
		evaluationService,
		logger,
	)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	judgeHandler := handler.NewJudgeHandler(judgeService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	evaluationHandler := handler.NewEvaluationHandler(runService, evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: submissionHandler,
		JudgeHandler:      judgeHandler,
		AssignmentHandler: assignmentHandler,
		EvaluationHandler: evaluationHandler,
		DB:                db,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func connectRedis(cfg config.Config, logger zerolog.Logger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis url not configured, evaluation caching disabled")
		return nil, nil
	}

	return database.ConnectRedis(cfg.RedisURL)
}

func connectPublisher(cfg config.Config, logger zerolog.Logger) *events.Publisher {
	if cfg.NatsURL == "" {
		logger.Warn().Msg("nats url not configured, run events disabled")
		return events.NewPublisher(nil, cfg.RunEventSubj, logger)
	}

	conn, err := database.ConnectNATS(cfg.NatsURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to nats, run events disabled")
		return events.NewPublisher(nil, cfg.RunEventSubj, logger)
	}

	return events.NewPublisher(conn, cfg.RunEventSubj, logger)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
