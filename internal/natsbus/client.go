package natsbus

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	EventsStream   = "DENTAL_EVENTS"
	EventsSubjects = "dental.events.>"

	JobsStream        = "DENTAL_JOBS"
	JobsSubjects      = "dental.jobs.>"
	ReportJobsSubject = "dental.jobs.reports"
)

// EventSubject is the subject a clinic's domain event of the given kind is published on.
func EventSubject(clinicID, kind string) string {
	return "dental.events." + clinicID + "." + kind
}

type Client struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// Connect establishes the NATS connection and provisions the JetStream streams.
func Connect(url string) (*Client, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name("dentalboard-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(1 * time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("nats connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			slog.Error("nats error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("connected to nats", "url", nc.ConnectedUrl())

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	for _, cfg := range streamConfigs() {
		if err := ensureStream(js, cfg); err != nil {
			nc.Close()
			return nil, fmt.Errorf("ensure infrastructure: %w", err)
		}
	}

	return &Client{nc: nc, js: js}, nil
}

// Close drains and closes the NATS connection.
func (c *Client) Close() error {
	return c.nc.Drain()
}

// JS returns the JetStream context.
func (c *Client) JS() nats.JetStreamContext {
	return c.js
}

// Healthy reports whether the connection is currently up.
func (c *Client) Healthy() bool {
	return c.nc.IsConnected()
}

func streamConfigs() []*nats.StreamConfig {
	return []*nats.StreamConfig{
		{
			Name:       EventsStream,
			Subjects:   []string{EventsSubjects},
			Retention:  nats.LimitsPolicy,
			MaxAge:     7 * 24 * time.Hour,
			MaxBytes:   1 * 1024 * 1024 * 1024, // 1GB
			MaxMsgSize: 256 * 1024,
			Discard:    nats.DiscardOld,
			Storage:    nats.FileStorage,
			Duplicates: 2 * time.Minute,
		},
		{
			Name:       JobsStream,
			Subjects:   []string{JobsSubjects},
			Retention:  nats.WorkQueuePolicy,
			MaxAge:     24 * time.Hour,
			MaxMsgSize: 64 * 1024,
			Discard:    nats.DiscardOld,
			Storage:    nats.FileStorage,
			Duplicates: 10 * time.Minute,
		},
	}
}

func ensureStream(js nats.JetStreamContext, cfg *nats.StreamConfig) error {
	_, err := js.StreamInfo(cfg.Name)
	if errors.Is(err, nats.ErrStreamNotFound) {
		if _, err := js.AddStream(cfg); err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.Name, err)
		}
		slog.Info("created jetstream stream", "stream", cfg.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get stream info %s: %w", cfg.Name, err)
	}
	return nil
}
