package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guidecal/pkg/client"
	"guidecal/pkg/config"

	"github.com/robfig/cron/v3"
)

const ServiceName = "sweeper"

// sweepTimeout bounds one expiry run end to end.
const sweepTimeout = 30 * time.Second

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Sweeper service", "schedule", cfg.SweepSchedule, "holds_service_url", cfg.HoldsServiceURL)

	holdsClient := client.NewHoldsClient(cfg.HoldsServiceURL)

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		sweep(cfg, holdsClient)
	})
	if err != nil {
		cfg.Log.Fatal("Invalid sweep schedule", "schedule", cfg.SweepSchedule, "error", err)
	}

	// One sweep right away so a long cron interval never delays startup
	// catch-up after downtime.
	sweep(cfg, holdsClient)

	scheduler.Start()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown

	cfg.Log.Info("Shutdown signal received", "signal", sig)
	ctx := scheduler.Stop()
	<-ctx.Done()
	cfg.Log.Info("Sweeper stopped gracefully")
}

// sweep triggers both expiry endpoints. Each run is idempotent on the server
// side, so a failed or doubled run is harmless.
func sweep(cfg *config.Config, holdsClient *client.HoldsClient) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	expired, err := holdsClient.ExpireStale(ctx)
	if err != nil {
		cfg.Log.Error("Hold expiry sweep failed", "error", err)
	} else {
		cfg.Log.Info("Hold expiry sweep completed", "expired", len(expired))
	}

	expiredRequests, err := holdsClient.ExpireStaleBookingRequests(ctx)
	if err != nil {
		cfg.Log.Error("Booking request expiry sweep failed", "error", err)
	} else {
		cfg.Log.Info("Booking request expiry sweep completed", "expired", len(expiredRequests))
	}
}
