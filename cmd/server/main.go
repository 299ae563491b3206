package main

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/myblog/configs"
	"github.com/maheshrc27/myblog/internal/api/handlers"
	"github.com/maheshrc27/myblog/internal/api/middleware"
	"github.com/maheshrc27/myblog/internal/database"
	job "github.com/maheshrc27/myblog/internal/jobs"
	"github.com/maheshrc27/myblog/internal/metrics"
	"github.com/maheshrc27/myblog/internal/queue"
	"github.com/maheshrc27/myblog/internal/repository"
	"github.com/maheshrc27/myblog/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	log := zerolog.New(os.Stdout).Level(cfg.LogLevel).With().Timestamp().Logger()

	if envErr != nil {
		log.Warn().Err(envErr).Msg("Failed to load .env file")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer closeDB(log, db)

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("Database is unreachable")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	orderRepo := repository.NewCheckoutOrderRepository(db)

	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		DB:        db,
		Catalog:   service.NewPlanCatalog(),
		Gateway:   service.NewRazorpayService(cfg.Razorpay),
		Orders:    orderRepo,
		Payments:  paymentRepo,
		Subs:      subscriptionRepo,
		Scheduler: queue.NewScheduler(client),
		Metrics:   checkoutMetrics,
		Logger:    log,
		Currency:  cfg.Currency,
		KeyID:     cfg.Razorpay.KeyID,
		OrderTTL:  cfg.OrderTTL,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	authMiddleware := middleware.NewAuthMiddleware(*cfg, log)

	paymentLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return handlers.UserKey(c)
		},
	})
	handlers.RegisterCheckoutRoutes(app, checkoutService, authMiddleware.AuthMiddleware(), paymentLimiter)

	// cron jobs
	expiryJob := job.NewSubscriptionExpiryJob(subscriptionRepo, checkoutMetrics, log)

	c := cron.New()
	if err := c.AddFunc(cfg.SubscriptionSweep, expiryJob.DeactivateExpired); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.SubscriptionSweep).Msg("Invalid subscription sweep schedule")
	}
	c.Start()
	defer c.Stop()

	// queue
	queueW := queue.NewQueue(orderRepo, checkoutMetrics, log)

	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeExpireOrder, queueW.HandleExpireOrderTask)

	log.Info().Msg("Starting the Asynq server...")
	if err := server.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("Could not start Asynq server")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("Server is running")

	gracefulShutdown(log, app, server)
}

func closeDB(log zerolog.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
		return
	}
	log.Info().Msg("Database connection closed")
}

func gracefulShutdown(log zerolog.Logger, app *fiber.App, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Failed to shut down server")
	}
	server.Shutdown()

	log.Info().Msg("Server shutdown complete.")
}
