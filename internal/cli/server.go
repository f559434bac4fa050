package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diagnosis-quiz-service/internal/app"
	"diagnosis-quiz-service/internal/config"
	"diagnosis-quiz-service/internal/infra/llm"
	"diagnosis-quiz-service/internal/infra/memory"
	"diagnosis-quiz-service/internal/infra/postgres"
	redisinfra "diagnosis-quiz-service/internal/infra/redis"
	"diagnosis-quiz-service/internal/platform/logger"
	transport "diagnosis-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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
	baseURL := cfg.Publish.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	var records app.RecordStore = memory.NewRecordStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		records = postgres.NewRecordStore(pool)
	} else {
		log.Warn("postgres url not configured, quizzes are kept in memory")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	playTTL := config.TTLDuration(cfg.Play.TTL, 24*time.Hour)
	var (
		quizRepo app.QuizRepository
		plays    app.PlayRepository
	)
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, records, quizTTL)
		plays = redisinfra.NewPlayStore(redisClient, playTTL)
	} else {
		quizRepo = memory.NewQuizRepository(records, quizTTL)
		plays = memory.NewPlayStore()
	}

	var content app.ContentProvider
	if cfg.OpenAI.APIKey != "" {
		content = llm.NewContentProvider(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	} else {
		log.Warn("openai api key not configured, quiz generation disabled")
	}

	quizService := app.NewQuizService(records, quizRepo, content, baseURL, log)
	playService := app.NewPlayService(plays, quizRepo)

	mux := http.NewServeMux()
	transport.NewHandler(quizService, playService, log).Register(mux)
	mux.HandleFunc("GET /ws", transport.NewWSHandler(playService, log).ServeWS)

	server := &http.Server{
		Addr:    ":" + finalPort,
		Handler: mux,
		// long enough for a model round trip on /quizzes/generate
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", "port", finalPort, "base_url", baseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
