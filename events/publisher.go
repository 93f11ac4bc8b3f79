// Package events publishes domain events on NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectAssetUploaded is published after an asset is stored.
const SubjectAssetUploaded = "assets.uploaded"

// AssetUploaded is the payload of SubjectAssetUploaded.
type AssetUploaded struct {
	Path        string    `json:"path"`
	Folder      string    `json:"folder"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(subject string, v any) error
	Close()
}

// Noop drops every event. It is used when no NATS server is configured.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }
func (Noop) Close() {}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// NATSPublisher encodes events as JSON on a core NATS connection.
type NATSPublisher struct {
	nc conn
}

// Connect dials url and reconnects forever in the background.
func Connect(url string, log *zap.SugaredLogger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("crownmania"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infow("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return p.nc.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.nc.Drain()
}
