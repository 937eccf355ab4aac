package main

import (
	"guidecal/internal/availability/handler"
	"guidecal/internal/availability/repository"
	"guidecal/internal/availability/service"
	"guidecal/internal/availability/validator"
	"guidecal/pkg/app"
	"guidecal/pkg/config"
)

const ServiceName = "slots"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Slots service")
	slotService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewSlotHandler(slotService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.SlotService {
	slotValidator := validator.NewSlotValidator(cfg.Log)
	slotRepo := repository.NewMongoSlotRepository(cfg)
	slotService := service.NewSlotService(
		slotRepo,
		slotValidator,
		cfg,
	)

	cfg.Log.Info("Slot service initialized", "database", cfg.MongoDatabaseName)
	return slotService
}
