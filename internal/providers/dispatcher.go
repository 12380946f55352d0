package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ljimenez/chat-service/internal/models"
)

// keyHinter lets a provider name the environment variable that would
// configure it, so the aggregate failure can tell operators what to set.
type keyHinter interface {
	KeyEnv() string
}

// Dispatcher tries providers in a fixed priority order and returns the
// first success. This is a fallback chain, not a retry loop: each provider
// is attempted at most once per request.
type Dispatcher struct {
	providers []Provider
	timeout   time.Duration
	log       *logrus.Logger
}

// NewDispatcher creates a dispatcher over the given priority-ordered providers
func NewDispatcher(providers []Provider, timeout time.Duration, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{providers: providers, timeout: timeout, log: log}
}

// Dispatch forwards the prompt to the first provider that answers.
// Unconfigured providers are skipped; individual failures are logged and
// swallowed. Only the aggregate failure is surfaced.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (*models.ChatResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}

	for _, p := range d.providers {
		if !p.Configured() {
			d.log.Debugf("Provider %s not configured, skipping", p.Name())
			continue
		}

		callCtx, cancel := ctx, func() {}
		if d.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		}
		text, err := p.Generate(callCtx, prompt)
		cancel()
		if err != nil {
			d.log.Warnf("Provider %s failed: %v", p.Name(), err)
			continue
		}

		d.log.Infof("Prompt served by provider %s", p.Name())
		return &models.ChatResult{Response: text, ProviderName: p.Name()}, nil
	}

	return nil, fmt.Errorf("%w%s", ErrAllProvidersUnavailable, d.missingKeysHint())
}

// Probe logs each provider's configuration state. It runs on a schedule so
// operators can see which links of the fallback chain will be skipped.
func (d *Dispatcher) Probe() {
	for _, p := range d.providers {
		if p.Configured() {
			d.log.Infof("Provider %s: configured", p.Name())
		} else {
			d.log.Warnf("Provider %s: not configured", p.Name())
		}
	}
}

func (d *Dispatcher) missingKeysHint() string {
	var missing []string
	for _, p := range d.providers {
		if p.Configured() {
			continue
		}
		if h, ok := p.(keyHinter); ok {
			missing = append(missing, h.KeyEnv())
		} else {
			missing = append(missing, p.Name())
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf(" (configure at least one of: %s)", strings.Join(missing, ", "))
}
