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
	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/email"
	"github.com/verastro/roombroker/internal/kafka"
	"github.com/verastro/roombroker/internal/lock"
	"github.com/verastro/roombroker/internal/logging"
	"github.com/verastro/roombroker/internal/processor"
	"github.com/verastro/roombroker/internal/repository"
	"github.com/verastro/roombroker/internal/service/booking"
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

	responses := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.SupplierResponsesTopic, logger)
	defer responses.Close()

	notifications := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer notifications.Close()

	emailSender := email.NewSender(logger)

	go func() {
		err := responses.ConsumeSupplierResponses(ctx, func(ctx context.Context, event kafka.SupplierResponseEvent) error {
			details := &supplier.BookingDetails{
				ReferenceCode:     event.ReferenceCode,
				SupplierReference: event.SupplierReference,
				Supplier:          event.Supplier,
				Status:            event.Status,
				Price:             domain.Price{Amount: event.PriceAmount, Currency: event.PriceCurrency},
				UpdatedAt:         event.ReceivedAt,
			}
			if err := bookingService.IngestResponse(ctx, details, "supplier-worker", "asynchronous supplier response"); err != nil {
				// A broken event must not wedge the partition.
				logger.Error("ingest supplier response",
					zap.String("reference_code", event.ReferenceCode), zap.Error(err))
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("supplier response consumer stopped", zap.Error(err))
		}
	}()

	go func() {
		err := notifications.ConsumeStatusEvents(ctx, emailSender.Send)
		if err != nil && ctx.Err() == nil {
			logger.Error("notification consumer stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("worker shutting down")
}
