package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/glorenz/netbot/configs"
	"github.com/glorenz/netbot/internal/agent"
	"github.com/glorenz/netbot/internal/api/handlers"
	"github.com/glorenz/netbot/internal/api/middleware"
	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/cascade"
	"github.com/glorenz/netbot/internal/discovery"
	job "github.com/glorenz/netbot/internal/jobs"
	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/notify"
	"github.com/glorenz/netbot/internal/orchestrator"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/platform/browser"
	"github.com/glorenz/netbot/internal/platform/devto"
	"github.com/glorenz/netbot/internal/platform/instagram"
	"github.com/glorenz/netbot/internal/platform/linkedin"
	"github.com/glorenz/netbot/internal/platform/twitter"
	"github.com/glorenz/netbot/internal/queue"
	"github.com/glorenz/netbot/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}
	if err := repository.InitSchema(ctx, db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	discoveryRepo := repository.NewDiscoveryRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	statsRepo := repository.NewDailyStatsRepository(db)
	eventRepo := repository.NewEventRepository(db)
	llmLogRepo := repository.NewLLMLogRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cascadeRepo := repository.NewCascadeRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	gemini, err := brain.NewGeminiBrain(ctx, cfg.GeminiAPIKey, llmLogRepo)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	var notifier notify.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("Failed to connect to Telegram: %v", err)
		}
		notifier = tg
	} else {
		log.Println("Telegram not configured, notifications disabled")
		notifier = notify.NewNoop()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Browser-backed networks share one Chrome session.
	var session *browser.Session
	if cfg.Twitter.Enabled || cfg.Linkedin.Enabled || cfg.Instagram.Enabled {
		session = browser.NewSession(browser.Config{
			RemoteURL:  cfg.BrowserRemoteURL,
			CookiesDir: cfg.BrowserCookiesDir,
			Headless:   true,
			Secret:     []byte(cfg.SecretKey),
		})
		if err := session.Start(ctx); err != nil {
			log.Fatalf("Failed to start browser session: %v", err)
		}
		defer session.Close()
	}

	var networks []orchestrator.Network
	addNetwork := func(name string, client platform.Client, strat discovery.Strategy) {
		if err := client.Login(ctx); err != nil {
			log.Printf("Login failed for %s, network disabled: %v", name, err)
			client.Stop()
			return
		}
		networks = append(networks, orchestrator.Network{Name: name, Client: client, Discovery: strat})
	}

	if cfg.Twitter.Enabled {
		client := twitter.NewClient(session, cfg.TwitterUsername)
		strat := discovery.NewTwitter(client, discoveryRepo, interactionRepo, cfg.TwitterUsername, cfg.Twitter.VIPs, cfg.Twitter.Hashtags, rng)
		addNetwork("twitter", client, strat)
	}
	if cfg.Linkedin.Enabled {
		client := linkedin.NewClient(session, cfg.LinkedinUsername)
		strat := discovery.NewLinkedin(client, discoveryRepo, interactionRepo, cfg.LinkedinUsername, cfg.Linkedin.Hashtags, rng)
		addNetwork("linkedin", client, strat)
	}
	if cfg.Instagram.Enabled {
		client := instagram.NewClient(session, cfg.IGUsername)
		strat := discovery.NewInstagram(client, discoveryRepo, interactionRepo, cfg.IGUsername, cfg.Instagram.VIPs, cfg.Instagram.Hashtags, rng)
		addNetwork("instagram", client, strat)
	}
	if cfg.Devto.Enabled {
		client := devto.NewClient(cfg.DevtoAPIKey)
		strat := discovery.NewDevto(client, discoveryRepo, interactionRepo, cfg.DevtoUsername, cfg.Devto.VIPs, cfg.Devto.Hashtags, rng)
		addNetwork("devto", client, strat)
	}

	platforms := make([]models.Platform, 0, len(networks))
	for _, n := range networks {
		platforms = append(platforms, n.Client.Platform())
	}

	judge := agent.NewJudge(gemini, cfg.JudgeModel)
	analyzer := agent.NewProfileAnalyzer(gemini, cfg.JudgeModel)
	builder := agent.NewContextBuilder(analyzer, interactionRepo, profileRepo)
	writer := agent.NewGhostwriter(gemini, cfg.GhostwriterModel, cfg.PersonaPath)
	socialAgent := agent.NewSocialAgent(judge, builder, writer, discoveryRepo)

	controller := orchestrator.NewController(networks, socialAgent, discoveryRepo, interactionRepo, statsRepo, eventRepo, orchestrator.Config{
		DailyInteractionLimit: cfg.DailyInteractionLimit,
		MinSleep:              time.Duration(cfg.MinSleepSeconds) * time.Second,
		MaxSleep:              time.Duration(cfg.MaxSleepSeconds) * time.Second,
		DryRun:                cfg.DryRun,
	}, rng)
	reporter := orchestrator.NewReporter(discoveryRepo, llmLogRepo, reportRepo, notifier)

	storage, err := cascade.NewStorage(ctx, cfg.R2)
	if err != nil {
		log.Fatalf("Failed to create R2 storage: %v", err)
	}
	publisher := cascade.NewPublisher(cfg.IGAccessToken, cfg.IGAccountID)
	strategists := cascade.NewStrategists(gemini, cascadeRepo, cfg.PlannerModel)
	copywriter := cascade.NewCopywriter(gemini, cfg.GhostwriterModel)
	renderer := cascade.NewRenderer(gemini, cfg.ImageModel)
	contentCascade := cascade.New(strategists, copywriter, renderer, storage, publisher, notifier, cascadeRepo, cfg.DryRun)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	queueW := queue.NewQueue(controller, reporter, contentCascade, platforms)

	scheduler := job.NewScheduler(client, publisher, rng)
	c := cron.New()
	scheduler.Register(c)
	c.Start()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/login", auth.Login)
	app.Post("/logout", auth.Logout)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	dashboard := handlers.NewDashboardHandler(discoveryRepo, interactionRepo, reportRepo, statsRepo, platforms, cfg.DryRun)
	api.Get("/discoveries", dashboard.ListDiscoveries)
	api.Get("/interactions", dashboard.ListInteractions)
	api.Get("/reports/:date?", dashboard.GetReport)
	api.Get("/status", dashboard.GetStatus)

	brief := handlers.NewBriefHandler(cascadeRepo, contentCascade)
	api.Get("/briefs/:date?", brief.GetBrief)
	api.Post("/briefs/:date/publish", brief.PublishBrief)
	api.Post("/briefs/:date/discard", brief.DiscardBrief)

	control := handlers.NewControlHandler(client)
	api.Post("/run/cycle", control.TriggerCycle)
	api.Post("/run/cascade", control.TriggerCascade)
	api.Post("/run/report", control.TriggerReport)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			// Cycles drive a single shared browser; run tasks one at a
			// time.
			Concurrency: 1,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeEngagementCycle, queueW.HandleEngagementCycleTask)
		mux.HandleFunc(queue.TaskTypeCascadeDaily, queueW.HandleCascadeDailyTask)
		mux.HandleFunc(queue.TaskTypeDailyReport, queueW.HandleDailyReportTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, networks)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, networks []orchestrator.Network) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	for _, n := range networks {
		n.Client.Stop()
	}

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
