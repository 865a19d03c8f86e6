package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/beesafe/broodwatch/internal/config"
	"github.com/beesafe/broodwatch/internal/corridor"
)

// Event states.
const (
	StateUnhealthy = "unhealthy"
	StateRecovered = "recovered"
	StateHealthy   = "healthy"
)

// Event is the payload delivered for one verdict.
type Event struct {
	Source               string    `json:"source"`
	State                string    `json:"state"`
	IsHealthy            bool      `json:"is_healthy"`
	HoursOutsideCorridor float64   `json:"hours_outside_corridor"`
	Recommendation       string    `json:"recommendation"`
	Message              string    `json:"message"`
	At                   time.Time `json:"at"`
}

// Notifier decides which verdicts to deliver and posts them to the configured
// webhooks. A repeated unhealthy verdict for the same source is delivered
// once; the next healthy verdict is delivered as a recovery. The per-source
// state only advances once at least one webhook accepted the post, so a
// failed delivery is retried on the next verdict.
//
// Notifier is safe for concurrent use; Deliver calls are serialised.
type Notifier struct {
	webhooks  []config.WebhookConfig
	onHealthy bool
	client    *http.Client
	now       func() time.Time

	mu        sync.Mutex
	unhealthy map[string]bool // last accepted state per source
}

// New creates a Notifier from the notify configuration.
// A Notifier without webhooks is valid; Deliver becomes a no-op.
func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		webhooks:  cfg.Webhooks,
		onHealthy: cfg.OnHealthy,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
		unhealthy: make(map[string]bool),
	}
}

// Deliver sends v for source to every webhook when it warrants a
// notification and reports whether it did.
func (n *Notifier) Deliver(ctx context.Context, source string, v corridor.Verdict) bool {
	if len(n.webhooks) == 0 {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ev, ok := n.classify(source, v)
	if !ok {
		return false
	}
	if n.deliver(ctx, ev) {
		n.unhealthy[source] = !v.IsHealthy
	}
	return true
}

// classify builds the event for v, if any, from the last accepted state.
// n.mu must be held.
func (n *Notifier) classify(source string, v corridor.Verdict) (Event, bool) {
	wasUnhealthy := n.unhealthy[source]

	var state string
	switch {
	case !v.IsHealthy && wasUnhealthy:
		return Event{}, false
	case !v.IsHealthy:
		state = StateUnhealthy
	case wasUnhealthy:
		state = StateRecovered
	case n.onHealthy:
		state = StateHealthy
	default:
		return Event{}, false
	}

	return Event{
		Source:               source,
		State:                state,
		IsHealthy:            v.IsHealthy,
		HoursOutsideCorridor: v.HoursOutsideCorridor,
		Recommendation:       v.Recommendation,
		Message:              message(source, state, v),
		At:                   n.now().UTC(),
	}, true
}

func message(source, state string, v corridor.Verdict) string {
	switch state {
	case StateUnhealthy:
		return fmt.Sprintf("Brood corridor breached on %s: %g hours outside %g–%g°C. %s",
			source, v.HoursOutsideCorridor, corridor.MinBroodTempC, corridor.MaxBroodTempC, v.Recommendation)
	case StateRecovered:
		return fmt.Sprintf("Brood corridor recovered on %s: %g hours outside %g–%g°C.",
			source, v.HoursOutsideCorridor, corridor.MinBroodTempC, corridor.MaxBroodTempC)
	default:
		return fmt.Sprintf("Brood corridor healthy on %s. %s", source, v.Recommendation)
	}
}
