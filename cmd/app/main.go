package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/verastro/roombroker/config"
	"github.com/verastro/roombroker/internal/bootstrap"
	"github.com/verastro/roombroker/internal/cache"
	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/kafka"
	"github.com/verastro/roombroker/internal/lock"
	"github.com/verastro/roombroker/internal/logging"
	"github.com/verastro/roombroker/internal/pricing"
	"github.com/verastro/roombroker/internal/processor"
	"github.com/verastro/roombroker/internal/rates"
	"github.com/verastro/roombroker/internal/repository"
	"github.com/verastro/roombroker/internal/service/booking"
	"github.com/verastro/roombroker/internal/service/search"
	"github.com/verastro/roombroker/internal/supplier"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	localTier := cache.NewMemoryTier()
	defer localTier.Close()
	sharedTier := cache.NewRedisTierFromClient(redisClient)
	availabilityCache := cache.NewAvailabilityCache(localTier, sharedTier, cfg.Availability.LocalBackfillTTL(), logger)

	rateSource := rates.NewCachedSource(
		rates.NewStaticSource(cfg.Pricing.Rates),
		sharedTier,
		cfg.Pricing.RateTTL(),
		logger,
	)
	pricingService := pricing.NewService(rateSource, domain.Currency(cfg.Pricing.TargetCurrency))
	markup := pricing.Markup{Percent: cfg.Pricing.MarkupPercent}

	connectors := make(map[domain.Supplier]supplier.Connector, len(cfg.Suppliers))
	for _, sc := range cfg.Suppliers {
		name := domain.Supplier(sc.Name)
		if sc.BaseURL == "" {
			connectors[name] = supplier.NewMemoryConnector(name)
			continue
		}
		connectors[name] = supplier.NewHTTPConnector(name, sc.BaseURL, sc.Timeout())
	}
	manager := supplier.NewManager(connectors)

	searchService := search.NewSearchService(
		manager,
		availabilityCache,
		pricingService,
		markup,
		cfg.Availability.SearchTTL(),
		cfg.Availability.EvaluationTTL(),
		logger,
	)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	responseProcessor := processor.New(bookingRepo, producer, cfg.Kafka.BookingEventsTopic, logger,
		processor.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))
	locker := lock.NewRedisLocker(redisClient, cfg.Lock.Lease(), logger)

	bookingService := booking.NewOrchestrator(
		bookingRepo,
		manager,
		locker,
		responseProcessor,
		producer,
		cfg.Kafka.BookingEventsTopic,
		logger,
	)

	if err := bootstrap.Run(ctx, cfg, searchService, bookingService, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
