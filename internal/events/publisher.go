// Package events publishes domain events and background jobs on JetStream
// using msgpack framing.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/natsbus"
)

const wireVersion = 1

// Publisher is what handlers and schedulers need to emit work.
type Publisher interface {
	Publish(ctx context.Context, ev models.Event) error
	PublishReportJob(ctx context.Context, job models.ReportJob) error
}

// JetStreamPublisher is the subset of nats.JetStreamContext used for publishing.
type JetStreamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

type JetStream struct {
	js  JetStreamPublisher
	now func() time.Time
}

func NewJetStream(js JetStreamPublisher) *JetStream {
	return &JetStream{js: js, now: time.Now}
}

func (p *JetStream) Publish(ctx context.Context, ev models.Event) error {
	if ev.ClinicID == "" || ev.Kind == "" {
		return fmt.Errorf("event needs clinic and kind")
	}
	ev.V = wireVersion
	if ev.TS == 0 {
		ev.TS = p.now().UnixMilli()
	}
	data, err := msgpack.Marshal(&ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := natsbus.EventSubject(ev.ClinicID, ev.Kind)
	if _, err := p.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(uuid.NewString())); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// PublishReportJob enqueues a render job. The report id doubles as the
// dedupe id so a double submit inside the duplicate window is dropped.
func (p *JetStream) PublishReportJob(ctx context.Context, job models.ReportJob) error {
	job.V = wireVersion
	data, err := msgpack.Marshal(&job)
	if err != nil {
		return fmt.Errorf("marshal report job: %w", err)
	}
	msgID := job.ReportID
	if job.RequestID != "" {
		msgID += ":" + job.RequestID
	}
	if _, err := p.js.Publish(natsbus.ReportJobsSubject, data, nats.Context(ctx), nats.MsgId(msgID)); err != nil {
		return fmt.Errorf("publish report job: %w", err)
	}
	return nil
}

// Decode unpacks an event published by Publish.
func Decode(data []byte) (models.Event, error) {
	var ev models.Event
	err := msgpack.Unmarshal(data, &ev)
	return ev, err
}

// DecodeReportJob unpacks a job published by PublishReportJob.
func DecodeReportJob(data []byte) (models.ReportJob, error) {
	var job models.ReportJob
	err := msgpack.Unmarshal(data, &job)
	return job, err
}

// Discard drops everything. Used when NATS is not configured.
type Discard struct{}

func (Discard) Publish(context.Context, models.Event) error              { return nil }
func (Discard) PublishReportJob(context.Context, models.ReportJob) error { return nil }
