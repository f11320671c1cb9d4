package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dentalboard-backend/internal/events"
	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/services"
	"dentalboard-backend/internal/storage"
)

type ReportStore interface {
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ClaimReport(ctx context.Context, id string) (bool, error)
	MarkReportReady(ctx context.Context, id, objectKey, url string) error
	MarkReportFailed(ctx context.Context, id, reason string) error
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
	ListMonthlyData(ctx context.Context, clinicID, from, to string) ([]models.MonthlyData, error)
}

type Renderer interface {
	Render(ctx context.Context, data services.ReportData) ([]byte, error)
}

type Commentator interface {
	Commentary(ctx context.Context, in services.CommentaryInput) string
}

// ReportWorker renders report jobs to PDF and stores them.
type ReportWorker struct {
	store       ReportStore
	renderer    Renderer
	commentator Commentator
	objects     services.ObjectStore
	publisher   events.Publisher
	now         func() time.Time
}

func NewReportWorker(store ReportStore, renderer Renderer, commentator Commentator, objects services.ObjectStore, publisher events.Publisher) *ReportWorker {
	return &ReportWorker{
		store:       store,
		renderer:    renderer,
		commentator: commentator,
		objects:     objects,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Handle processes one report job. A failure on the last delivery marks the
// report failed; earlier failures leave it claimable for the retry.
func (w *ReportWorker) Handle(ctx context.Context, d Delivery) error {
	job, err := events.DecodeReportJob(d.Data)
	if err != nil {
		return Permanent(fmt.Errorf("decode report job: %w", err))
	}

	claimed, err := w.store.ClaimReport(ctx, job.ReportID)
	if err != nil {
		return fmt.Errorf("claim report %s: %w", job.ReportID, err)
	}
	if !claimed {
		slog.Info("report already handled", "report_id", job.ReportID)
		return nil
	}

	report, err := w.store.GetReport(ctx, job.ReportID)
	if errors.Is(err, storage.ErrNotFound) {
		return Permanent(err)
	}
	if err != nil {
		return err
	}

	if err := w.generate(ctx, report); err != nil {
		if IsPermanent(err) || d.LastAttempt() {
			if markErr := w.store.MarkReportFailed(ctx, report.ID, err.Error()); markErr != nil {
				slog.Error("mark report failed", "report_id", report.ID, "error", markErr)
			}
			return Permanent(err)
		}
		return err
	}
	return nil
}

func (w *ReportWorker) generate(ctx context.Context, report *models.Report) error {
	from, to, months, err := finance.ReportRange(report.Kind, report.Period)
	if err != nil {
		return Permanent(err)
	}
	clinic, err := w.store.GetClinic(ctx, report.ClinicID)
	if err != nil {
		return fmt.Errorf("load clinic: %w", err)
	}
	rows, err := w.store.ListMonthlyData(ctx, report.ClinicID, from, to)
	if err != nil {
		return fmt.Errorf("load monthly data: %w", err)
	}

	dash := finance.BuildDashboard(rows, months)
	inWindow := make(map[string]bool, len(dash.Series))
	for _, p := range dash.Series {
		inWindow[p.YearMonth] = true
	}
	views := make([]models.MonthlyDataView, 0, len(dash.Series))
	for _, r := range rows {
		if inWindow[r.YearMonth] {
			views = append(views, finance.View(r))
		}
	}

	data := services.ReportData{
		ClinicName:  clinic.Name,
		Kind:        report.Kind,
		Period:      report.Period,
		GeneratedAt: w.now(),
		Dashboard:   dash,
		Rows:        views,
	}
	data.Commentary = w.commentator.Commentary(ctx, services.CommentaryInput{
		ClinicName: clinic.Name,
		Kind:       report.Kind,
		Period:     report.Period,
		Dashboard:  dash,
	})

	pdf, err := w.renderer.Render(ctx, data)
	if err != nil {
		return err
	}

	key := ReportObjectKey(report)
	url, err := w.objects.Put(ctx, key, "application/pdf", pdf)
	if err != nil {
		return err
	}
	if err := w.store.MarkReportReady(ctx, report.ID, key, url); err != nil {
		return fmt.Errorf("mark report ready: %w", err)
	}
	slog.Info("report ready", "report_id", report.ID, "clinic_id", report.ClinicID, "bytes", len(pdf))

	err = w.publisher.Publish(ctx, models.Event{
		Kind:     models.EventReportReady,
		ClinicID: report.ClinicID,
		ActorID:  report.CreatedBy,
		Subject:  report.ID,
		Attrs: map[string]string{
			"clinic_name": clinic.Name,
			"kind":        report.Kind,
			"period":      report.Period,
		},
	})
	if err != nil {
		slog.Warn("publish report ready", "report_id", report.ID, "error", err)
	}
	return nil
}

// ReportObjectKey is where a report's PDF is stored.
func ReportObjectKey(r *models.Report) string {
	return fmt.Sprintf("reports/%s/%s-%s-%s.pdf", r.ClinicID, r.Kind, r.Period, r.ID)
}
