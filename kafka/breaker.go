package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	"github.com/tair/shopgrid/pkg/logger"
)

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"    // Normal operation
	StateOpen     CircuitState = "open"      // Skipping the broker
	StateHalfOpen CircuitState = "half-open" // Probing whether the broker recovered
)

// ErrCircuitOpen is returned while the broker is being skipped
var ErrCircuitOpen = errors.New("kafka circuit breaker is open")

// halfOpenSuccesses closes a half-open circuit
const halfOpenSuccesses = 3

// BreakingPublisher stops calling a failing broker for a cool-down period so
// that product creation is not slowed by producer timeouts.
type BreakingPublisher struct {
	next        command.EventPublisher
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time

	mu              sync.Mutex
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
}

// NewBreakingPublisher opens after maxFailures consecutive failures and
// probes again after cooldown
func NewBreakingPublisher(next command.EventPublisher, maxFailures int, cooldown time.Duration) *BreakingPublisher {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &BreakingPublisher{
		next:            next,
		maxFailures:     maxFailures,
		cooldown:        cooldown,
		now:             time.Now,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// PublishProductCreated forwards the event unless the circuit is open
func (b *BreakingPublisher) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	err := b.next.PublishProductCreated(ctx, product)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure(ctx)
	} else {
		b.onSuccess(ctx)
	}
	return err
}

// State returns the current state
func (b *BreakingPublisher) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *BreakingPublisher) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.lastStateChange) >= b.cooldown {
		b.transition(StateHalfOpen)
		b.successCount = 0
		logger.Logger.Info().Msg("Kafka circuit breaker transitioning to half-open")
	}
	return b.state != StateOpen
}

// onFailure records a failure; callers hold mu
func (b *BreakingPublisher) onFailure(ctx context.Context) {
	b.failures++

	if b.state == StateHalfOpen {
		b.transition(StateOpen)
		logger.Warn(ctx).Msg("Kafka circuit breaker reopened after half-open failure")
	} else if b.failures >= b.maxFailures && b.state == StateClosed {
		b.transition(StateOpen)
		logger.Error(ctx).
			Int("failures", b.failures).
			Int("threshold", b.maxFailures).
			Msg("Kafka circuit breaker opened")
	}
}

// onSuccess records a success; callers hold mu
func (b *BreakingPublisher) onSuccess(ctx context.Context) {
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= halfOpenSuccesses {
			b.transition(StateClosed)
			b.failures = 0
			b.successCount = 0
			logger.Info(ctx).Msg("Kafka circuit breaker closed after successful recovery")
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *BreakingPublisher) transition(to CircuitState) {
	b.state = to
	b.lastStateChange = b.now()
}
