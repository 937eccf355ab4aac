package main

import (
	availrepo "guidecal/internal/availability/repository"
	"guidecal/internal/holds/handler"
	"guidecal/internal/holds/repository"
	"guidecal/internal/holds/service"
	"guidecal/internal/holds/validator"
	"guidecal/pkg/app"
	"guidecal/pkg/config"
	"guidecal/pkg/notify"
)

const ServiceName = "holds"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Holds service")
	holdService, bookingRequestService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoutes(
		handler.NewHoldHandler(holdService, cfg.Log),
		handler.NewBookingRequestHandler(bookingRequestService, cfg.Log),
		handler.NewCalendarHandler(holdService, cfg.Log),
	))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.HoldService, service.BookingRequestService) {
	holdValidator := validator.NewHoldValidator(cfg.Log)
	holdRepo := repository.NewMongoHoldRepository(cfg)
	lockRepo := repository.NewHoldLockRepository(cfg)
	requestRepo := repository.NewMongoBookingRequestRepository(cfg)
	slotRepo := availrepo.NewMongoSlotRepository(cfg)
	notifier := initNotifier(cfg)

	holdService := service.NewHoldService(
		holdRepo,
		lockRepo,
		slotRepo,
		holdValidator,
		notifier,
		cfg,
	)
	bookingRequestService := service.NewBookingRequestService(
		requestRepo,
		lockRepo,
		slotRepo,
		holdValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Hold services initialized", "database", cfg.MongoDatabaseName)
	return holdService, bookingRequestService
}

// initNotifier prefers the Kafka pipeline and falls back to log-only delivery
// when no broker is configured or reachable.
func initNotifier(cfg *config.Config) notify.Notifier {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Warn("No Kafka brokers configured, notifications go to the log only")
		return notify.NewLogNotifier(cfg.Log)
	}

	notifier, err := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.NotifyTopic, ServiceName)
	if err != nil {
		cfg.Log.Warn("Kafka notifier unavailable, notifications go to the log only", "error", err)
		return notify.NewLogNotifier(cfg.Log)
	}

	cfg.Log.Info("Kafka notifier initialized", "topic", cfg.NotifyTopic, "brokers", cfg.KafkaBrokers)
	return notifier
}
