package checkout

import (
	"context"
	"strconv"
	"strings"
	"time"

	xerrors "gearhub-client/internal/pkg/errors"
	"gearhub-client/internal/resources"
	"gearhub-client/internal/session"
	"gearhub-client/internal/storage"

	"go.uber.org/zap"
)

// State is one step of the checkout flow.
type State string

const (
	StateIdle            State = "idle"
	StateCreating        State = "creating"
	StateAwaitingGateway State = "awaiting_gateway"
	StatePolling         State = "polling"
	StateSuccess         State = "success"
	StateFailure         State = "failure"
	StateTimeout         State = "timeout"
)

// Terminal status sets, matched case-insensitively against the
// backend's subscription status strings.
var (
	successStatuses = map[string]struct{}{
		"active":    {},
		"completed": {},
	}
	failureStatuses = map[string]struct{}{
		"failed":    {},
		"cancelled": {},
		"expired":   {},
		"halted":    {},
	}
)

// Gateway hands the server-created subscription to the payment widget.
// The user completes payment out-of-band; the poller only ever learns
// the outcome from the backend.
type Gateway interface {
	OpenCheckout(ctx context.Context, sub resources.Subscription) error
}

// Outcome is the settled result of one checkout run.
type Outcome struct {
	State          State
	SubscriptionID int64
	Status         string
}

// Poller drives one subscription checkout: create the server-side
// intent, open the gateway, then poll status until a terminal value
// or the deadline. Poll errors are logged and retried on the next
// tick; only the deadline fails the flow.
type Poller struct {
	subs     *resources.Subscriptions
	sessions *session.Store
	scratch  *storage.Scratch
	gateway  Gateway
	interval time.Duration
	timeout  time.Duration
	onState  func(State)
	logger   *zap.Logger
}

func New(subs *resources.Subscriptions, sessions *session.Store, scratch *storage.Scratch,
	gateway Gateway, interval, timeout time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		subs:     subs,
		sessions: sessions,
		scratch:  scratch,
		gateway:  gateway,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// OnState registers an observer called on every transition.
func (p *Poller) OnState(fn func(State)) {
	p.onState = fn
}

// Run executes the flow for one plan and blocks until it settles.
func (p *Poller) Run(ctx context.Context, planID int64) (Outcome, error) {
	p.setState(StateCreating)

	sub, err := p.subs.Create(ctx, planID)
	if err != nil {
		p.setState(StateFailure)
		return Outcome{State: StateFailure}, xerrors.Wrap(err, "creating subscription")
	}

	if err := p.scratch.Set(storage.KeyPendingSubscriptionID, strconv.FormatInt(sub.ID, 10)); err != nil {
		p.logger.Warn("persisting pending subscription id failed", zap.Error(err))
	}
	if err := p.scratch.Set(storage.KeyPendingSubscriptionToken, sub.GatewayToken); err != nil {
		p.logger.Warn("persisting pending subscription token failed", zap.Error(err))
	}

	p.setState(StateAwaitingGateway)
	if err := p.gateway.OpenCheckout(ctx, sub); err != nil {
		p.clearPending()
		p.setState(StateFailure)
		return Outcome{State: StateFailure, SubscriptionID: sub.ID}, xerrors.Wrap(err, "opening payment gateway")
	}

	p.setState(StatePolling)
	return p.poll(ctx, sub)
}

func (p *Poller) poll(ctx context.Context, sub resources.Subscription) (Outcome, error) {
	deadline := time.Now().Add(p.timeout)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		// Deadline check runs before each request so a hung final
		// call cannot stretch the window.
		if time.Now().After(deadline) {
			p.clearPending()
			p.setState(StateTimeout)
			return Outcome{State: StateTimeout, SubscriptionID: sub.ID}, xerrors.ErrCheckoutFailed
		}

		select {
		case <-ctx.Done():
			p.clearPending()
			p.setState(StateFailure)
			return Outcome{State: StateFailure, SubscriptionID: sub.ID}, ctx.Err()
		case <-ticker.C:
		}

		status, err := p.subs.Status(ctx, sub.ID)
		if err != nil {
			p.logger.Warn("subscription status poll failed",
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}

		normalized := strings.ToLower(status)
		if _, ok := successStatuses[normalized]; ok {
			p.sessions.SetGatewaySubscription(sub.GatewaySubscriptionID)
			p.clearPending()
			p.setState(StateSuccess)
			return Outcome{State: StateSuccess, SubscriptionID: sub.ID, Status: status}, nil
		}
		if _, ok := failureStatuses[normalized]; ok {
			p.clearPending()
			p.setState(StateFailure)
			return Outcome{State: StateFailure, SubscriptionID: sub.ID, Status: status}, xerrors.ErrCheckoutFailed
		}
	}
}

func (p *Poller) clearPending() {
	if err := p.scratch.Delete(storage.KeyPendingSubscriptionID); err != nil {
		p.logger.Warn("clearing pending subscription id failed", zap.Error(err))
	}
	if err := p.scratch.Delete(storage.KeyPendingSubscriptionToken); err != nil {
		p.logger.Warn("clearing pending subscription token failed", zap.Error(err))
	}
}

func (p *Poller) setState(s State) {
	if p.onState != nil {
		p.onState(s)
	}
}
