package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cerbyl-session-service/internal/app"
	"cerbyl-session-service/internal/config"
	"cerbyl-session-service/internal/domain"
	"cerbyl-session-service/internal/grading"
	"cerbyl-session-service/internal/infra/memory"
	pgloader "cerbyl-session-service/internal/infra/postgres"
	redisinfra "cerbyl-session-service/internal/infra/redis"
	transport "cerbyl-session-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	configTTL := config.TTLDuration(cfg.Session.ConfigTTL, 30*time.Minute)
	var configs app.ConfigRepository
	if redisClient != nil {
		configs = redisinfra.NewConfigStore(redisClient, configTTL)
	} else {
		configs = memory.NewConfigStore()
	}

	var archive app.ResultArchive
	if pool != nil {
		archive = pgloader.NewResultArchive(pool)
	} else {
		archive = memory.NewResultArchive()
	}

	gradingTimeout := config.TTLDuration(cfg.Grading.Timeout, 30*time.Second)
	grader := grading.NewClient(cfg.Grading.URL, cfg.Grading.AnalysisURL, gradingTimeout)

	service := app.NewSessionService(configs, quizRepo, grader, archive)
	wsHandler := transport.NewWSHandler(service)
	setupHandler := transport.NewSetupHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/sessions", setupHandler)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds the quiz bank when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"geography-basics": {
			ID:    "geography-basics",
			Topic: "Geography",
			Questions: []domain.Question{
				{
					ID:          "q1",
					Prompt:      "What is the capital of France?",
					Kind:        domain.KindMultipleChoice,
					Options:     domain.OptionList{"A) London", "B) Paris", "C) Berlin", "D) Madrid"},
					Answer:      "B) Paris",
					Explanation: "Paris has been the capital of France since 987.",
					Topic:       "Geography",
					Difficulty:  "easy",
				},
				{
					ID:      "q2",
					Prompt:  "The Nile is the longest river in the world.",
					Kind:    domain.KindTrueFalse,
					Options: domain.OptionList{"True", "False"},
					Answer:  "true",
					Topic:   "Geography",
				},
			},
		},
	}
}
