package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/respond"
)

const maxDashboardMonths = 36

// Dashboard returns the KPI summary for the current clinic
// @Summary Clinic dashboard
// @Description Latest month, trend series, period totals and MoM/YoY revenue deltas
// @Tags dashboard
// @Produce json
// @Param months query int false "Window in months (default 12, max 36)"
// @Param X-Clinic-ID header string false "Clinic to act on (system admin only)"
// @Success 200 {object} finance.Dashboard
// @Failure 400 {object} map[string]interface{} "Invalid window or no clinic selected"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	months := finance.DefaultDashboardMonths
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxDashboardMonths {
			respond.Error(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = n
	}
	clinic := clinicID(r)

	if h.cache != nil {
		var cached finance.Dashboard
		hit, err := h.cache.GetDashboard(r.Context(), clinic, months, &cached)
		if err != nil {
			slog.Warn("dashboard cache read failed", "clinic_id", clinic, "error", err)
		}
		if hit {
			respond.OK(w, cached)
			return
		}
	}

	// one extra year so the latest month always has its YoY comparison
	current := h.now().In(h.loc).Format("2006-01")
	from, _ := finance.AddMonths(current, -(months + 12))
	rows, err := h.store.ListMonthlyData(r.Context(), clinic, from, "")
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}

	dash := finance.BuildDashboard(rows, months)
	if h.cache != nil {
		if err := h.cache.SetDashboard(r.Context(), clinic, months, dash); err != nil {
			slog.Warn("dashboard cache write failed", "clinic_id", clinic, "error", err)
		}
	}
	respond.OK(w, dash)
}
