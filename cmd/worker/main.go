package main

import (
	"context"
	"log"

	"tumaini-be/internal/config"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/pkg/events"
	pktNats "tumaini-be/pkg/nats"
)

// The worker is the CMS-side consumer of the donation event stream: it
// drains events.> into a durable structured log that downstream
// integrations (accounting exports, analytics) tail. Runs separately from
// the API so a slow consumer never backs up reconciliation.
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger("logs/worker.log", cfg.App.Environment == "production")

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Panicf("Unable to connect to NATS: %v", err)
	}
	defer natsSub.Close()

	err = natsSub.Subscribe("events.>", "integrations-worker", func(ctx context.Context, event events.Event) error {
		sysLogger.Info("Worker", "Event received", map[string]interface{}{
			"type":    event.EventType(),
			"payload": event.Payload(),
		})
		return nil
	})
	if err != nil {
		log.Panicf("Failed to subscribe: %v", err)
	}

	log.Println("✅ Integrations worker started, listening to events.>")
	select {}
}
