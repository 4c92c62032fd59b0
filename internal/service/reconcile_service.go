package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/repository/contract"

	"github.com/google/uuid"
)

var (
	// ErrUnresolvedSignal means no pending donation could be correlated to
	// the signal, including via the bounded fallback window.
	ErrUnresolvedSignal = errors.New("signal does not resolve to any donation")

	// ErrAmbiguousMatch means the fallback matcher found more than one
	// candidate and abstained.
	ErrAmbiguousMatch = errors.New("signal matches multiple pending donations")

	// ErrProviderUnavailable means the authoritative verification query
	// failed and nothing corroborated the signal; the donation stays
	// pending and the provider should redeliver.
	ErrProviderUnavailable = errors.New("provider verification unavailable")
)

// ProviderSignal is a normalized payment notification: a webhook, a
// callback, or a donor returning through a redirect. Any field except
// Gateway may be missing or mangled.
type ProviderSignal struct {
	Gateway       entity.PaymentMethod
	ProviderToken string
	Reference     string
	// Fragment is a possibly-truncated reference, e.g. from a redirect
	// query param a browser or proxy chewed on.
	Fragment string
	// ClaimedOutcome is what the signal says happened: "success",
	// "failure", "pending" or empty. Never trusted on its own.
	ClaimedOutcome string
	// ApprovalCode corroborates a success claim when the verify API is
	// down. Only fields the provider alone could know belong here.
	ApprovalCode string
	Raw          map[string]interface{}
}

type ReconcileResult struct {
	Donation *entity.Donation
	Applied  bool
}

// IReconcileService is the idempotent reconciliation engine: every signal
// funnels through Process, which resolves it to a donation, obtains a
// verified outcome and applies at most one ledger transition.
type IReconcileService interface {
	Process(ctx context.Context, signal *ProviderSignal) (*ReconcileResult, error)
}

type reconcileService struct {
	ledger         ILedgerService
	gateways       gateway.Registry
	publisher      IPublisherService
	logger         logger.ILogger
	fallbackWindow int
	verifyTimeout  time.Duration
}

func NewReconcileService(
	ledger ILedgerService,
	gateways gateway.Registry,
	publisher IPublisherService,
	log logger.ILogger,
	fallbackWindow int,
	verifyTimeout time.Duration,
) IReconcileService {
	return &reconcileService{
		ledger:         ledger,
		gateways:       gateways,
		publisher:      publisher,
		logger:         log,
		fallbackWindow: fallbackWindow,
		verifyTimeout:  verifyTimeout,
	}
}

func (s *reconcileService) Process(ctx context.Context, signal *ProviderSignal) (*ReconcileResult, error) {
	donation, err := s.resolve(ctx, signal)
	if err != nil {
		return nil, err
	}

	// Terminal donations never move again. A redelivery of the same
	// outcome is routine; a conflicting claim is logged loudly but still
	// acknowledged so the provider stops retrying.
	if donation.Status.Terminal() {
		if s.claimConflicts(donation.Status, signal.ClaimedOutcome) {
			s.logger.Error("ReconcileService", "Signal conflicts with settled donation", map[string]interface{}{
				"reference": donation.Reference,
				"status":    string(donation.Status),
				"claimed":   signal.ClaimedOutcome,
			})
		}
		return &ReconcileResult{Donation: donation, Applied: false}, nil
	}

	if signal.ProviderToken != "" && donation.ProviderToken == nil {
		if err := s.ledger.BindProviderToken(ctx, donation.Id, signal.ProviderToken); err != nil {
			return nil, err
		}
		token := signal.ProviderToken
		donation.ProviderToken = &token
	}

	outcome, evidenceKind, raw, err := s.verify(ctx, donation, signal)
	if err != nil {
		return nil, err
	}
	if outcome == "" {
		// Provider says the payment has not settled. Leave pending.
		return &ReconcileResult{Donation: donation, Applied: false}, nil
	}

	target := entity.DonationStatusCompleted
	if outcome == "failure" {
		target = entity.DonationStatusFailed
	}

	evidence := &entity.DonationEvent{
		Id:         uuid.New(),
		DonationId: donation.Id,
		Kind:       evidenceKind,
		Actor:      "system",
		Payload:    raw,
	}

	result, err := s.ledger.Transition(ctx, donation.Id, target, evidence)
	if err != nil {
		// A concurrent delivery may have settled the donation with a
		// different outcome. Acknowledge; the evidence log has both sides.
		if errors.Is(err, contract.ErrInvalidTransition) {
			s.logger.Error("ReconcileService", "Lost transition race to conflicting outcome", map[string]interface{}{
				"reference": donation.Reference,
				"target":    string(target),
			})
			current, findErr := s.ledger.FindById(ctx, donation.Id)
			if findErr == nil && current != nil {
				donation = current
			}
			return &ReconcileResult{Donation: donation, Applied: false}, nil
		}
		return nil, err
	}

	if result.Applied {
		s.publishOutcome(ctx, result.Donation)
	}
	return &ReconcileResult{Donation: result.Donation, Applied: result.Applied}, nil
}

// resolve correlates a signal to exactly one donation: provider token
// first, then exact reference, then the bounded fallback scan. The
// fallback only ever looks at the last fallbackWindow pending donations of
// the signal's rail and abstains on anything but a unique match.
func (s *reconcileService) resolve(ctx context.Context, signal *ProviderSignal) (*entity.Donation, error) {
	if signal.ProviderToken != "" {
		donation, err := s.ledger.FindByProviderToken(ctx, signal.ProviderToken)
		if err != nil {
			return nil, err
		}
		if donation != nil {
			return donation, nil
		}
	}

	if signal.Reference != "" {
		donation, err := s.ledger.FindByReference(ctx, signal.Reference)
		if err != nil {
			return nil, err
		}
		if donation != nil {
			return donation, nil
		}
	}

	fragment := signal.Fragment
	if fragment == "" {
		fragment = signal.Reference
	}
	if fragment == "" {
		return nil, ErrUnresolvedSignal
	}

	pending, err := s.ledger.RecentPending(ctx, signal.Gateway, s.fallbackWindow)
	if err != nil {
		return nil, err
	}

	var match *entity.Donation
	for _, candidate := range pending {
		if strings.Contains(candidate.Reference, fragment) {
			if match != nil {
				return nil, ErrAmbiguousMatch
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, ErrUnresolvedSignal
	}
	s.logger.Info("ReconcileService", "Signal resolved via fallback match", map[string]interface{}{
		"reference": match.Reference,
		"fragment":  fragment,
	})
	return match, nil
}

// verify obtains the authoritative outcome. The provider query wins; a
// callback claim only counts when the query is unavailable AND the signal
// carries corroboration. Returns outcome "" for not-yet-settled.
func (s *reconcileService) verify(ctx context.Context, donation *entity.Donation, signal *ProviderSignal) (outcome, evidenceKind string, raw map[string]interface{}, err error) {
	adapter, ok := s.gateways[donation.Method]
	if !ok {
		return "", "", nil, ErrProviderUnavailable
	}

	correlationId := donation.Reference
	if donation.ProviderToken != nil {
		correlationId = *donation.ProviderToken
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	result, verifyErr := adapter.Verify(verifyCtx, correlationId)
	if verifyErr != nil {
		if signal.ClaimedOutcome == "success" && signal.ApprovalCode != "" {
			s.logger.Warn("ReconcileService", "Verify unavailable, accepting corroborated callback", map[string]interface{}{
				"reference": donation.Reference,
				"error":     verifyErr.Error(),
			})
			raw = map[string]interface{}{
				"approval_code": signal.ApprovalCode,
				"verify_error":  verifyErr.Error(),
			}
			for k, v := range signal.Raw {
				raw[k] = v
			}
			return "success", entity.EventVerifyCallback, raw, nil
		}
		s.logger.Error("ReconcileService", "Provider verification failed", map[string]interface{}{
			"reference": donation.Reference,
			"error":     verifyErr.Error(),
		})
		return "", "", nil, ErrProviderUnavailable
	}

	if result.Pending {
		return "", entity.EventVerifyAPI, nil, nil
	}

	raw = result.Raw
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if result.Explanation != "" {
		raw["explanation"] = result.Explanation
	}
	if result.Success {
		return "success", entity.EventVerifyAPI, raw, nil
	}
	return "failure", entity.EventVerifyAPI, raw, nil
}

func (s *reconcileService) claimConflicts(status entity.DonationStatus, claimed string) bool {
	switch claimed {
	case "success":
		return status == entity.DonationStatusFailed
	case "failure":
		return status == entity.DonationStatusCompleted || status == entity.DonationStatusRefunded
	default:
		return false
	}
}

func (s *reconcileService) publishOutcome(ctx context.Context, donation *entity.Donation) {
	msg := dto.DonationOutcomeMessage{
		DonationId: donation.Id.String(),
		Reference:  donation.Reference,
		Outcome:    string(donation.Status),
		Amount:     donation.Amount,
		Currency:   donation.Currency,
		DonorEmail: donation.DonorEmail,
		DonorName:  donation.DonorName,
		Method:     string(donation.Method),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("ReconcileService", "Failed to marshal outcome message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		// Notification delivery is fire-and-forget: the ledger transition
		// already happened and must not be rolled back for this.
		s.logger.Error("ReconcileService", "Failed to publish donation outcome", map[string]interface{}{
			"reference": donation.Reference,
			"error":     err.Error(),
		})
	}
}
