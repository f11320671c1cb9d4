package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dentalboard-backend/internal/models"
)

const reportColumns = `id, clinic_id, kind, period, status, object_key, url, error, created_by, created_at, updated_at`

func (s *Storage) CreateReport(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Status == "" {
		r.Status = models.ReportPending
	}
	query := `
		INSERT INTO reports (id, clinic_id, kind, period, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return s.db.QueryRowxContext(ctx, query, r.ID, r.ClinicID, r.Kind, r.Period, r.Status, r.CreatedBy).
		Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (s *Storage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var r models.Report
	err := s.db.GetContext(ctx, &r, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) ListReports(ctx context.Context, clinicID string) ([]models.Report, error) {
	reports := []models.Report{}
	query := `SELECT ` + reportColumns + ` FROM reports WHERE clinic_id = $1 ORDER BY created_at DESC LIMIT 200`
	if err := s.db.SelectContext(ctx, &reports, query, clinicID); err != nil {
		return nil, err
	}
	return reports, nil
}

// ClaimReport moves a pending (or stale generating) report to generating.
// It reports false when another worker already finished or holds it.
func (s *Storage) ClaimReport(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reports SET status = $1, error = '', updated_at = now()
		WHERE id = $2 AND status IN ($3, $4)
	`, models.ReportGenerating, id, models.ReportPending, models.ReportGenerating)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Storage) MarkReportReady(ctx context.Context, id, objectKey, url string) error {
	return affectedOne(s.db.ExecContext(ctx, `
		UPDATE reports SET status = $1, object_key = $2, url = $3, error = '', updated_at = now()
		WHERE id = $4
	`, models.ReportReady, objectKey, url, id))
}

func (s *Storage) MarkReportFailed(ctx context.Context, id, reason string) error {
	return affectedOne(s.db.ExecContext(ctx, `
		UPDATE reports SET status = $1, error = $2, updated_at = now()
		WHERE id = $3
	`, models.ReportFailed, reason, id))
}

// StaleReports lists reports stuck in pending or generating since before cutoff.
func (s *Storage) StaleReports(ctx context.Context, cutoff time.Time) ([]models.Report, error) {
	reports := []models.Report{}
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE status IN ($1, $2) AND updated_at < $3
		ORDER BY updated_at
		LIMIT 100
	`
	if err := s.db.SelectContext(ctx, &reports, query, models.ReportPending, models.ReportGenerating, cutoff); err != nil {
		return nil, err
	}
	return reports, nil
}

// TouchReport bumps updated_at so the stale sweep does not pick the report
// again right away.
func (s *Storage) TouchReport(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reports SET updated_at = now() WHERE id = $1`, id)
	return err
}
