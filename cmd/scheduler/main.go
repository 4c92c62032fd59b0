package main

import (
	"context"
	"log"
	"time"

	"tumaini-be/internal/config"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/repository/implementation"
	"tumaini-be/internal/service"
	"tumaini-be/pkg/database"
	"tumaini-be/pkg/events"
	pktNats "tumaini-be/pkg/nats"
)

// The scheduler owns WHEN recurring charges are due, never HOW they are
// charged: it emits PLEDGE_CHARGE_DUE events and the charge integration
// calls back into the API once money actually moved.
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger("logs/scheduler.log", cfg.App.Environment == "production")

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Panicf("Unable to connect to NATS: %v", err)
	}

	pledgeRepo := implementation.NewPledgeRepository(gormDB)
	pledgeService := service.NewPledgeService(pledgeRepo, nil, sysLogger)

	log.Println("✅ Pledge scheduler started")

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		runOnce(pledgeService, natsPub, sysLogger)
		<-ticker.C
	}
}

func runOnce(pledges service.IPledgeService, natsPub *pktNats.Publisher, sysLogger logger.ILogger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	due, err := pledges.DueForCharge(ctx, time.Now())
	if err != nil {
		sysLogger.Error("Scheduler", "Failed to list due pledges", map[string]interface{}{"error": err.Error()})
		return
	}

	sysLogger.Info("Scheduler", "Due pledges found", map[string]interface{}{"count": len(due)})

	for _, pledge := range due {
		evt := events.BaseEvent{
			Type: "PLEDGE_CHARGE_DUE",
			Data: map[string]interface{}{
				"pledge_id":        pledge.Id.String(),
				"donor_email":      pledge.DonorEmail,
				"amount":           pledge.Amount,
				"currency":         pledge.Currency,
				"frequency":        string(pledge.Frequency),
				"next_charge_date": pledge.NextChargeDate,
			},
			OccurredAt: time.Now(),
		}
		if err := natsPub.Publish(ctx, evt); err != nil {
			sysLogger.Error("Scheduler", "Failed to publish due event", map[string]interface{}{
				"pledge_id": pledge.Id.String(),
				"error":     err.Error(),
			})
		}
	}
}
