package stream

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/execution-engine/pkg/oms/model"
)

type Config struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	Durable string `yaml:"durable"`
}

// NATSPublisher forwards order events to a JetStream stream so the
// journal worker can persist them out of process.
type NATSPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
}

func NewNATSPublisher(cfg *Config) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	if _, err := js.StreamInfo(cfg.Stream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, err
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{cfg.Subject},
		})
		if err != nil {
			nc.Close()
			return nil, err
		}
	}

	zap.S().Infof("connected to nats %s, stream %s", cfg.URL, cfg.Stream)
	return &NATSPublisher{nc: nc, js: js, subject: cfg.Subject}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, ev *model.OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, data, nats.Context(ctx), nats.MsgId(ev.EventID))
	return err
}

func (p *NATSPublisher) Close() {
	p.nc.Close()
}
