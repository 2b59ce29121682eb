// Package events publishes orchestration outcomes to an MQTT broker so
// dashboards and instructor tooling can follow sessions live. The
// publisher is optional: with no broker configured every call is a
// no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

type Config struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type Publisher struct {
	cfg    Config
	client paho.Client
	logger *slog.Logger
}

func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "dentai"
	}
	return &Publisher{cfg: cfg, logger: logger}
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p.cfg.BrokerURL != ""
}

func (p *Publisher) Start(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	opts := paho.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.logger.Error("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		p.client.Disconnect(100)
	}()

	return nil
}

func topicOutcome(prefix, caseID string) string {
	return fmt.Sprintf("%s/outcomes/%s", prefix, caseID)
}

// PublishOutcome sends the outcome of one orchestration cycle.
// Publishing is best effort: errors are returned for the caller to
// log, never to abort the cycle.
func (p *Publisher) PublishOutcome(outcome domain.Outcome) error {
	if !p.Enabled() || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	topic := topicOutcome(p.cfg.TopicPrefix, outcome.CaseID)
	if token := p.client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}
