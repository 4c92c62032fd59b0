package service

import (
	"context"
	"sync"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/pkg/logger"
)

// nopLogger satisfies logger.ILogger for tests without touching disk.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

// capturePublisher records every payload handed to Publish.
type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// stubGateway scripts one rail's provider answers.
type stubGateway struct {
	method         entity.PaymentMethod
	initiateResult *gateway.InitiationResult
	initiateErr    error
	verifyResult   *gateway.VerificationResult
	verifyErr      error

	mu          sync.Mutex
	verifyCalls int
}

func (g *stubGateway) Method() entity.PaymentMethod { return g.method }

func (g *stubGateway) Initiate(ctx context.Context, donation *entity.Donation) (*gateway.InitiationResult, error) {
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	return g.initiateResult, nil
}

func (g *stubGateway) Verify(ctx context.Context, correlationId string) (*gateway.VerificationResult, error) {
	g.mu.Lock()
	g.verifyCalls++
	g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResult, nil
}
