package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"dentalboard-backend/internal/events"
	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
)

// StaleReportAge is how long a report may sit pending or generating before
// the sweep publishes its job again.
const StaleReportAge = time.Hour

type SchedulerStore interface {
	ClinicsMissingMonth(ctx context.Context, yearMonth string) ([]models.Clinic, error)
	StaleReports(ctx context.Context, cutoff time.Time) ([]models.Report, error)
	TouchReport(ctx context.Context, id string) error
}

// Scheduler runs the periodic jobs: the missing-data reminder and the stale
// report sweep.
type Scheduler struct {
	cron      *cron.Cron
	store     SchedulerStore
	publisher events.Publisher
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(store SchedulerStore, publisher events.Publisher, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
		),
		store:     store,
		publisher: publisher,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the jobs on their schedules and starts the cron goroutine.
func (s *Scheduler) Start(reminderSpec, staleSpec string) error {
	if _, err := s.cron.AddFunc(reminderSpec, s.job("monthly data reminder", s.RemindMissingData)); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	if _, err := s.cron.AddFunc(staleSpec, s.job("stale report sweep", s.RequeueStaleReports)); err != nil {
		return fmt.Errorf("schedule stale report sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) job(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	}
}

// RemindMissingData publishes a monthly_data.missing event for every active
// clinic that has no row for the previous month.
func (s *Scheduler) RemindMissingData(ctx context.Context) error {
	yearMonth := finance.PreviousMonth(s.now(), s.loc)
	clinics, err := s.store.ClinicsMissingMonth(ctx, yearMonth)
	if err != nil {
		return fmt.Errorf("clinics missing %s: %w", yearMonth, err)
	}
	for _, c := range clinics {
		err := s.publisher.Publish(ctx, models.Event{
			Kind:     models.EventMonthlyDataMissing,
			ClinicID: c.ID,
			Attrs: map[string]string{
				"clinic_name": c.Name,
				"year_month":  yearMonth,
			},
		})
		if err != nil {
			s.logger.Error("publish missing data reminder", "clinic_id", c.ID, "error", err)
		}
	}
	s.logger.Info("monthly data reminder sent", "year_month", yearMonth, "clinics", len(clinics))
	return nil
}

// RequeueStaleReports publishes the job of every report stuck for longer
// than StaleReportAge.
func (s *Scheduler) RequeueStaleReports(ctx context.Context) error {
	now := s.now()
	reports, err := s.store.StaleReports(ctx, now.Add(-StaleReportAge))
	if err != nil {
		return fmt.Errorf("stale reports: %w", err)
	}
	requeued := 0
	for _, r := range reports {
		err := s.publisher.PublishReportJob(ctx, models.ReportJob{
			ReportID:  r.ID,
			ClinicID:  r.ClinicID,
			RequestID: "requeue-" + strconv.FormatInt(now.Unix(), 10),
		})
		if err != nil {
			s.logger.Error("requeue report", "report_id", r.ID, "error", err)
			continue
		}
		if err := s.store.TouchReport(ctx, r.ID); err != nil {
			s.logger.Warn("touch report", "report_id", r.ID, "error", err)
		}
		requeued++
	}
	if len(reports) > 0 {
		s.logger.Info("stale reports requeued", "count", requeued)
	}
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
