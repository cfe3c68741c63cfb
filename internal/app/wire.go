package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/Trading-UI-Team/Polymarket-copy-view/internal/blob/s3"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/cache/redis"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/chain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/config"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/notify"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/platform/polymarket"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/server"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/server/handler"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/server/ws"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/service"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/store/postgres"
)

// Dependencies bundles everything the running application needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Bus         domain.CommandBus
	RateLimiter domain.RateLimiter

	Tasks    *service.TaskService
	Commands *service.CommandService

	Notifier *notify.Notifier
	Hub      *ws.Hub
	Server   *server.Server
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis: task registry, command bus, rate limiter ---
	redisClient := redis.New(redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err := redisClient.Connect(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	taskStore := redis.NewTaskStore(redisClient)
	deps.Bus = redis.NewCommandBus(redisClient, logger)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)

	// --- PostgreSQL: mock positions and the trade ledger ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	positionStore := postgres.NewPositionStore(pool)
	tradeStore := postgres.NewTradeStore(pool)

	// --- Polymarket API clients and the chain balance reader ---
	clobClient := polymarket.NewClobClient(cfg.Polymarket.ClobHost)
	dataClient := polymarket.NewDataClient(cfg.Polymarket.DataHost)
	scraper := polymarket.NewProfileScraper()

	balanceReader := chain.NewBalanceReader(cfg.Chain.RPCURL)
	closers = append(closers, balanceReader.Close)

	// --- Services ---
	oracle := service.NewPriceOracle(clobClient, logger)
	valuation := service.NewValuationService(oracle, balanceReader, logger)
	performance := service.NewPerformanceService(taskStore, tradeStore)
	deps.Tasks = service.NewTaskService(taskStore, positionStore, tradeStore, dataClient, valuation, logger)

	// --- S3 trade archiver (optional) ---
	var archiver service.TradeArchiver
	if cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), tradeStore)
	}

	deps.Commands = service.NewCommandService(deps.Bus, taskStore, scraper, archiver, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- HTTP + WebSocket surface ---
	deps.Hub = ws.NewHub(deps.Bus, logger)

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"redis":    redisClient,
			"postgres": pgClient,
		}, logger),
		Tasks:   handler.NewTaskHandler(deps.Tasks, performance, logger),
		Trades:  handler.NewTradeHandler(deps.Tasks, logger),
		Traders: handler.NewTraderHandler(deps.Commands, logger),
	}

	deps.Server = server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKey:      cfg.Server.APIKey,
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow.Duration,
	}, handlers, deps.Hub, deps.RateLimiter, logger)

	return deps, cleanup, nil
}
