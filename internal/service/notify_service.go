package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/pkg/mailer"
	"tumaini-be/pkg/events"
	pktNats "tumaini-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// FeedBroadcaster pushes real-time updates to connected admin dashboards.
// Implemented by the WebSocket hub.
type FeedBroadcaster interface {
	Broadcast(eventType string, payload map[string]interface{})
}

// INotifyService is the fire-and-forget notification dispatcher. It
// consumes settled outcomes off the in-process bus; none of its failures
// ever reach back into the ledger.
type INotifyService interface {
	Start(ctx context.Context) error
}

type notifyService struct {
	pubSub         *gochannel.GoChannel
	outcomeTopic   string
	lifecycleTopic string
	mailer         mailer.IEmailService
	eventPublisher *pktNats.Publisher
	feed           FeedBroadcaster
	logger         logger.ILogger
}

func NewNotifyService(
	pubSub *gochannel.GoChannel,
	outcomeTopic string,
	lifecycleTopic string,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	feed FeedBroadcaster,
	log logger.ILogger,
) INotifyService {
	return &notifyService{
		pubSub:         pubSub,
		outcomeTopic:   outcomeTopic,
		lifecycleTopic: lifecycleTopic,
		mailer:         emailService,
		eventPublisher: eventPublisher,
		feed:           feed,
		logger:         log,
	}
}

func (s *notifyService) Start(ctx context.Context) error {
	outcomes, err := s.pubSub.Subscribe(ctx, s.outcomeTopic)
	if err != nil {
		return err
	}
	lifecycles, err := s.pubSub.Subscribe(ctx, s.lifecycleTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range outcomes {
			s.processOutcome(ctx, msg)
		}
	}()
	go func() {
		for msg := range lifecycles {
			s.processLifecycle(ctx, msg)
		}
	}()

	s.logger.Info("NotifyService", "Notification dispatcher started", nil)
	return nil
}

// processOutcome always Acks. Retrying a half-delivered notification would
// re-send emails; a lost email is the accepted failure mode.
func (s *notifyService) processOutcome(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.DonationOutcomeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("NotifyService", "Failed to unmarshal outcome message", map[string]interface{}{"error": err.Error()})
		return
	}

	s.logger.Info("NotifyService", "Dispatching donation outcome", map[string]interface{}{
		"reference": payload.Reference,
		"outcome":   payload.Outcome,
	})

	var mailErr error
	switch payload.Outcome {
	case string(entity.DonationStatusCompleted):
		mailErr = s.mailer.SendDonationReceipt(payload.DonorEmail, payload.DonorName, payload.Reference, payload.Amount, payload.Currency)
	case string(entity.DonationStatusFailed):
		mailErr = s.mailer.SendDonationFailed(payload.DonorEmail, payload.DonorName, payload.Reference)
		if alertErr := s.mailer.SendAdminAlert(
			fmt.Sprintf("Donation %s failed", payload.Reference),
			fmt.Sprintf("Donation %s (%d %s, %s rail) settled as failed.", payload.Reference, payload.Amount, payload.Currency, payload.Method),
		); alertErr != nil {
			s.logger.Error("NotifyService", "Failed to send admin alert", map[string]interface{}{
				"reference": payload.Reference,
				"error":     alertErr.Error(),
			})
		}
	case string(entity.DonationStatusRefunded):
		mailErr = s.mailer.SendRefundNotice(payload.DonorEmail, payload.DonorName, payload.Reference, payload.Amount, payload.Currency)
	}
	if mailErr != nil {
		s.logger.Error("NotifyService", "Failed to send donor email", map[string]interface{}{
			"reference": payload.Reference,
			"error":     mailErr.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: fmt.Sprintf("DONATION_%s", payload.Outcome),
			Data: map[string]interface{}{
				"donation_id": payload.DonationId,
				"reference":   payload.Reference,
				"outcome":     payload.Outcome,
				"amount":      payload.Amount,
				"currency":    payload.Currency,
				"method":      payload.Method,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Error("NotifyService", "Failed to publish donation event", map[string]interface{}{
				"reference": payload.Reference,
				"error":     err.Error(),
			})
		}
	}

	if s.feed != nil {
		s.feed.Broadcast("donation."+payload.Outcome, map[string]interface{}{
			"reference": payload.Reference,
			"amount":    payload.Amount,
			"currency":  payload.Currency,
			"method":    payload.Method,
			"outcome":   payload.Outcome,
		})
	}
}

func (s *notifyService) processLifecycle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PledgeLifecycleMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("NotifyService", "Failed to unmarshal lifecycle message", map[string]interface{}{"error": err.Error()})
		return
	}

	s.logger.Info("NotifyService", "Dispatching pledge lifecycle", map[string]interface{}{
		"pledge_id": payload.PledgeId,
		"action":    payload.Action,
	})

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: fmt.Sprintf("PLEDGE_%s", payload.Action),
			Data: map[string]interface{}{
				"pledge_id": payload.PledgeId,
				"action":    payload.Action,
				"amount":    payload.Amount,
				"currency":  payload.Currency,
				"frequency": payload.Frequency,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Error("NotifyService", "Failed to publish pledge event", map[string]interface{}{
				"pledge_id": payload.PledgeId,
				"error":     err.Error(),
			})
		}
	}

	if s.feed != nil {
		s.feed.Broadcast("pledge."+payload.Action, map[string]interface{}{
			"pledge_id": payload.PledgeId,
			"action":    payload.Action,
			"amount":    payload.Amount,
			"currency":  payload.Currency,
			"frequency": payload.Frequency,
		})
	}
}
