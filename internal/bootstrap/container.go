package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"finance-rag-be/internal/config"
	"finance-rag-be/internal/controller"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/internal/repository/implementation"
	"finance-rag-be/internal/repository/unitofwork"
	"finance-rag-be/internal/service"
	"finance-rag-be/pkg/clock"
	"finance-rag-be/pkg/database"
	"finance-rag-be/pkg/embedding"
	"finance-rag-be/pkg/events"
	"finance-rag-be/pkg/ingestion"
	"finance-rag-be/pkg/llm"
	"finance-rag-be/pkg/llm/factory"
	"finance-rag-be/pkg/lock"
	pktNats "finance-rag-be/pkg/nats"
	"finance-rag-be/pkg/news"
	"finance-rag-be/pkg/rag/response"
	"finance-rag-be/pkg/rag/search"
	"finance-rag-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QueryController     controller.IQueryController
	IngestionController controller.IIngestionController
	HealthController    controller.IHealthController
	NewsController      controller.INewsController

	// Services (also used directly by the CLIs)
	QueryService     service.IQueryService
	IngestionService service.IIngestionService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Scheduler       *service.IngestionScheduler

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	interactionLogger := logger.NewIsolatedLogger(cfg.App.InteractionLogPath)

	c := &Container{Logger: sysLogger}

	vectorRepo := implementation.NewVectorEntryRepository(db)

	// 2. AI Providers
	var genaiClient *genai.Client
	if cfg.Ai.LLMProvider != "ollama" || cfg.Ai.EmbeddingProvider != "ollama" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Keys.GoogleGemini,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		genaiClient = client
	}

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(genaiClient, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimension)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     cfg.Ai.OllamaBaseURL,
		Temperature: cfg.Ai.Temperature,
		Client:      genaiClient,
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Query Path
	retriever := search.NewRetriever(embeddingProvider, vectorRepo, cfg.Retrieval.CacheTTL, sysLogger)
	generator := response.NewGenerator(retriever, llmProvider, response.Config{
		Timeout: cfg.Ai.Timeout,
		Retry:   retry.DefaultPolicy().WithAttempts(cfg.Ai.MaxRetries + 1),
	}, sysLogger)

	c.QueryService = service.NewQueryService(generator, service.QueryDefaults{
		Model:          cfg.Ai.LLMModel,
		DefaultResults: cfg.Retrieval.DefaultResults,
		MaxResults:     cfg.Retrieval.MaxResults,
	}, sysLogger, interactionLogger)

	// 4. Infrastructure
	// Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS
	var eventPublisher events.Publisher = events.Discard{}
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis
	var locker lock.Locker = lock.Noop{}
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, ingestion lock disabled: %v", err)
		_ = rdb.Close()
	} else {
		locker = lock.NewRedisLocker(rdb, "finance-rag:lock:")
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	cancel()

	// 5. Ingestion Path
	var source news.Source
	if cfg.News.Provider == "rss" {
		source = news.NewRSSClient(cfg.News.RSSURLTemplate, sysLogger)
	} else {
		source = news.NewFinnhubClient(cfg.News.FinnhubBaseURL, cfg.Keys.Finnhub, retry.DefaultPolicy(), sysLogger)
	}

	pipeline := ingestion.NewPipeline(
		source,
		unitofwork.NewDocumentStore(uowFactory),
		vectorRepo,
		embedding.NewRateLimited(embeddingProvider, cfg.Ai.EmbeddingRPS),
		ingestion.NewThrottle(cfg.News.ThrottleCalls, cfg.News.ThrottleCooldown, nil),
		retry.DefaultPolicy(),
		sysLogger,
	)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sp500 := func(ctx context.Context) ([]string, error) {
		return news.FetchSP500Tickers(ctx, httpClient, cfg.News.SP500URL)
	}

	c.IngestionService = service.NewIngestionService(
		pipeline,
		locker,
		pubSub,
		eventPublisher,
		sp500,
		service.IngestionSettings{
			DefaultTickers: cfg.News.DefaultTickers,
			LookbackDays:   cfg.News.LookbackDays,
			Topic:          cfg.News.IngestTopic,
			LockTTL:        cfg.News.LockTTL,
		},
		clock.Now,
		sysLogger,
	)

	c.ConsumerService = service.NewConsumerService(pubSub, cfg.News.IngestTopic, c.IngestionService, sysLogger)
	c.Scheduler = service.NewIngestionScheduler(c.IngestionService, sysLogger)

	// 6. Read-side services
	healthService := service.NewHealthService(5*time.Second, healthProbes(cfg, db, uowFactory, llmProvider)...)
	newsService := service.NewNewsService(uowFactory)

	// 7. Controllers
	c.QueryController = controller.NewQueryController(c.QueryService)
	c.IngestionController = controller.NewIngestionController(c.IngestionService)
	c.HealthController = controller.NewHealthController(healthService)
	c.NewsController = controller.NewNewsController(newsService)

	return c, nil
}

// Close releases broker and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func healthProbes(cfg *config.Config, db *gorm.DB, uowFactory unitofwork.RepositoryFactory, provider llm.LLMProvider) []service.HealthProbe {
	probes := []service.HealthProbe{
		{
			Name: "config",
			Check: func(ctx context.Context) (string, error) {
				if err := cfg.Validate(); err != nil {
					return "", err
				}
				return "valid", nil
			},
		},
		{
			Name: "database",
			Check: func(ctx context.Context) (string, error) {
				if err := database.Ping(ctx, db); err != nil {
					return "", err
				}
				return "reachable", nil
			},
		},
		{
			Name: "llm",
			Check: func(ctx context.Context) (string, error) {
				if provider == nil {
					return "", fmt.Errorf("no LLM provider configured")
				}
				return fmt.Sprintf("configured (%s/%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel), nil
			},
		},
	}
	return append(probes, service.StoreProbes(uowFactory)...)
}
