package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/services"
)

// CreateReport queues a PDF report for rendering
// @Summary Create report
// @Description Creates a pending report and queues the render job. The report becomes ready or failed asynchronously.
// @Tags reports
// @Accept json
// @Produce json
// @Param body body models.CreateReportInput true "Kind (monthly|annual) and period (YYYY-MM or YYYY)"
// @Success 202 {object} models.Report
// @Failure 400 {object} map[string]interface{} "Invalid kind or period"
// @Security BearerAuth
// @Router /reports [post]
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var in models.CreateReportInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if _, _, _, err := finance.ReportRange(in.Kind, in.Period); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	report := models.Report{
		ClinicID:  clinicID(r),
		Kind:      in.Kind,
		Period:    in.Period,
		Status:    models.ReportPending,
		CreatedBy: principal(r).UserID,
	}
	if err := h.store.CreateReport(r.Context(), &report); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}

	job := models.ReportJob{
		ReportID:  report.ID,
		ClinicID:  report.ClinicID,
		RequestID: chimw.GetReqID(r.Context()),
	}
	if err := h.publisher.PublishReportJob(r.Context(), job); err != nil {
		// The stale report sweep queues it again later.
		slog.Warn("queue report job failed", "report_id", report.ID, "error", err)
	}
	respond.JSON(w, http.StatusAccepted, report)
}

// ListReports lists the clinic's reports, newest first
// @Summary List reports
// @Tags reports
// @Produce json
// @Success 200 {object} map[string][]models.Report
// @Security BearerAuth
// @Router /reports [get]
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListReports(r.Context(), clinicID(r))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

// GetReport returns a report's status
// @Summary Get report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} models.Report
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /reports/{id} [get]
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.clinicReport(w, r)
	if !ok {
		return
	}
	respond.OK(w, report)
}

// DownloadReport serves the rendered PDF
// @Summary Download report
// @Description Redirects to the object URL when the store publishes one, otherwise streams the PDF
// @Tags reports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Success 200 {file} file
// @Success 302
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 409 {object} map[string]interface{} "Report not ready"
// @Security BearerAuth
// @Router /reports/{id}/download [get]
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.clinicReport(w, r)
	if !ok {
		return
	}
	if report.Status != models.ReportReady {
		respond.Error(w, http.StatusConflict, "レポートはまだ作成されていません")
		return
	}
	if report.URL != "" {
		http.Redirect(w, r, report.URL, http.StatusFound)
		return
	}
	if h.objects == nil {
		respond.Error(w, http.StatusServiceUnavailable, "object storage unavailable")
		return
	}

	body, err := h.objects.Open(r.Context(), report.ObjectKey)
	if errors.Is(err, services.ErrObjectNotFound) {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		slog.Error("open report object", "report_id", report.ID, "key", report.ObjectKey, "error", err)
		respond.Error(w, http.StatusBadGateway, "failed to read report")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(report.ObjectKey)+`"`)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("stream report", "report_id", report.ID, "error", err)
	}
}

// clinicReport loads the {id} report and hides other clinics' reports.
func (h *Handler) clinicReport(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	report, err := h.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return nil, false
	}
	if report.ClinicID != clinicID(r) {
		respond.Error(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return report, true
}
