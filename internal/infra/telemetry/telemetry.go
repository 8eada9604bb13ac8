package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thegrihome/realty-platform-iam/internal/infra/config"
)

// Provider holds the domain-level Prometheus collectors. All increment
// methods tolerate a nil provider so handlers never have to guard.
type Provider struct {
	accountsCreated  prometheus.Counter
	logins           *prometheus.CounterVec
	channelsVerified *prometheus.CounterVec
}

// Attach registers the domain collectors and returns a provider handle.
// Collectors already present on the registerer are reused, so repeated
// attachment in tests is safe.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	reg := prometheus.DefaultRegisterer

	accountsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "iam",
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created.",
	})
	if err := registerCounter(reg, &accountsCreated); err != nil {
		return nil, err
	}

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iam",
		Name:      "logins_total",
		Help:      "Total number of login attempts partitioned by strategy and result.",
	}, []string{"strategy", "result"})
	if err := registerCounterVec(reg, &logins); err != nil {
		return nil, err
	}

	channelsVerified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iam",
		Name:      "channels_verified_total",
		Help:      "Total number of contact channels stamped verified, partitioned by channel.",
	}, []string{"channel"})
	if err := registerCounterVec(reg, &channelsVerified); err != nil {
		return nil, err
	}

	return &Provider{
		accountsCreated:  accountsCreated,
		logins:           logins,
		channelsVerified: channelsVerified,
	}, nil
}

func registerCounter(reg prometheus.Registerer, counter *prometheus.Counter) error {
	err := reg.Register(*counter)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
			*counter = existing
			return nil
		}
		return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return fmt.Errorf("register collector: %w", err)
}

func registerCounterVec(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	err := reg.Register(*vec)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
			*vec = existing
			return nil
		}
		return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return fmt.Errorf("register collector: %w", err)
}

// AccountCreated increments the account creation counter.
func (p *Provider) AccountCreated() {
	if p == nil || p.accountsCreated == nil {
		return
	}
	p.accountsCreated.Inc()
}

// LoginAttempt records a login outcome for the given strategy.
func (p *Provider) LoginAttempt(strategy, result string) {
	if p == nil || p.logins == nil {
		return
	}
	p.logins.WithLabelValues(strategy, result).Inc()
}

// ChannelVerified records a verification stamp for the given channel.
func (p *Provider) ChannelVerified(channel string) {
	if p == nil || p.channelsVerified == nil {
		return
	}
	p.channelsVerified.WithLabelValues(channel).Inc()
}
