package workers

import (
	"context"
	"fmt"
	"log/slog"

	"dentalboard-backend/internal/events"
	"dentalboard-backend/internal/models"
)

type Notifier interface {
	Notify(ctx context.Context, ev models.Event) error
}

type ClinicLookup interface {
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
}

// NotificationWorker forwards domain events to the notifier.
type NotificationWorker struct {
	notifier Notifier
	clinics  ClinicLookup
}

func NewNotificationWorker(notifier Notifier, clinics ClinicLookup) *NotificationWorker {
	return &NotificationWorker{notifier: notifier, clinics: clinics}
}

func (w *NotificationWorker) Handle(ctx context.Context, d Delivery) error {
	ev, err := events.Decode(d.Data)
	if err != nil {
		return Permanent(fmt.Errorf("decode event: %w", err))
	}

	if ev.Attr("clinic_name") == "" && ev.ClinicID != "" {
		if clinic, err := w.clinics.GetClinic(ctx, ev.ClinicID); err == nil {
			if ev.Attrs == nil {
				ev.Attrs = map[string]string{}
			}
			ev.Attrs["clinic_name"] = clinic.Name
		} else {
			slog.Debug("clinic lookup for notification", "clinic_id", ev.ClinicID, "error", err)
		}
	}

	if err := w.notifier.Notify(ctx, ev); err != nil {
		if d.LastAttempt() {
			return Permanent(err)
		}
		return err
	}
	return nil
}
