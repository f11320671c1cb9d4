package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// MaxDeliver is how many times JetStream hands a message to a consumer
// before giving up on it.
const MaxDeliver = 3

const nakDelay = 5 * time.Second

// Delivery is one message handed to a Handler.
type Delivery struct {
	Subject string
	Data    []byte
	// Attempt starts at 1.
	Attempt uint64
}

// LastAttempt reports whether a failure now exhausts redelivery.
func (d Delivery) LastAttempt() bool {
	return d.Attempt >= MaxDeliver
}

type Handler func(ctx context.Context, d Delivery) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth redelivering.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type ackAction int

const (
	actionAck ackAction = iota
	actionNak
	actionTerm
)

func disposition(err error) ackAction {
	switch {
	case err == nil:
		return actionAck
	case IsPermanent(err):
		return actionTerm
	default:
		return actionNak
	}
}

// fetchSizer grows the pull batch while batches come back full and shrinks it
// while they come back empty.
type fetchSizer struct {
	size, min, max int
	full, empty    int
}

func newFetchSizer(initial, min, max int) *fetchSizer {
	return &fetchSizer{size: initial, min: min, max: max}
}

func (f *fetchSizer) observe(received int) {
	switch {
	case received == 0:
		f.empty++
		f.full = 0
		if f.empty >= 3 && f.size > f.min {
			f.size /= 2
			if f.size < f.min {
				f.size = f.min
			}
			f.empty = 0
		}
	case received == f.size:
		f.full++
		f.empty = 0
		if f.full >= 3 && f.size < f.max {
			f.size *= 2
			if f.size > f.max {
				f.size = f.max
			}
			f.full = 0
		}
	default:
		f.full = 0
		f.empty = 0
	}
}

// Consumer runs a durable JetStream pull subscription and feeds each message
// to a Handler.
type Consumer struct {
	js      nats.JetStreamContext
	name    string
	subject string
	durable string
	ackWait time.Duration
	sizer   *fetchSizer
	handle  Handler
	sub     *nats.Subscription
	done    chan struct{}
}

func NewConsumer(js nats.JetStreamContext, name, subject, durable string, ackWait time.Duration, maxFetch int, handle Handler) *Consumer {
	initial := 8
	if maxFetch < initial {
		initial = maxFetch
	}
	return &Consumer{
		js:      js,
		name:    name,
		subject: subject,
		durable: durable,
		ackWait: ackWait,
		sizer:   newFetchSizer(initial, 1, maxFetch),
		handle:  handle,
		done:    make(chan struct{}),
	}
}

// Start begins consuming in a goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.js.PullSubscribe(
		c.subject,
		c.durable,
		nats.ManualAck(),
		nats.AckWait(c.ackWait),
		nats.MaxDeliver(MaxDeliver),
		nats.MaxAckPending(256),
	)
	if err != nil {
		return err
	}
	c.sub = sub

	go c.consumeLoop(ctx)
	slog.Info("consumer started", "consumer", c.name, "subject", c.subject)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.sub.Fetch(c.sizer.size, nats.MaxWait(5*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrBadSubscription) || errors.Is(err, nats.ErrConnectionClosed) {
				return
			}
			if !errors.Is(err, nats.ErrTimeout) && ctx.Err() == nil {
				slog.Warn("fetch error", "consumer", c.name, "error", err)
			}
			c.sizer.observe(0)
			continue
		}
		c.sizer.observe(len(msgs))

		for _, msg := range msgs {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *nats.Msg) {
	d := Delivery{Subject: msg.Subject, Data: msg.Data, Attempt: 1}
	if meta, err := msg.Metadata(); err == nil {
		d.Attempt = meta.NumDelivered
	}

	err := c.handle(ctx, d)
	switch disposition(err) {
	case actionAck:
		_ = msg.Ack()
	case actionTerm:
		slog.Error("message dropped", "consumer", c.name, "subject", d.Subject, "error", err)
		_ = msg.Term()
	case actionNak:
		slog.Warn("message failed, will retry", "consumer", c.name, "subject", d.Subject, "attempt", d.Attempt, "error", err)
		_ = msg.NakWithDelay(nakDelay)
	}
}

// Stop drains the subscription and waits briefly for the loop to exit. The
// loop only returns once its context is cancelled or the subscription is gone.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	err := c.sub.Drain()
	select {
	case <-c.done:
	case <-time.After(10 * time.Second):
		slog.Warn("consumer did not stop in time", "consumer", c.name)
	}
	return err
}
