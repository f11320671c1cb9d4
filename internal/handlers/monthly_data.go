package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"dentalboard-backend/internal/csvimport"
	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func validateMonthly(m models.MonthlyData) []string {
	var problems []string
	if _, err := finance.ParseMonth(m.YearMonth); err != nil {
		problems = append(problems, "年月はYYYY-MM形式で入力してください")
	}
	amounts := []struct {
		label string
		value int64
	}{
		{"保険診療収入", m.InsuranceRevenue}, {"自費診療収入", m.SelfPayRevenue}, {"物販収入", m.RetailRevenue},
		{"人件費", m.PersonnelCost}, {"材料費", m.MaterialCost}, {"技工料", m.LabCost}, {"家賃", m.RentCost},
		{"設備費", m.EquipmentCost}, {"広告宣伝費", m.AdvertisingCost}, {"その他経費", m.OtherCost},
	}
	for _, a := range amounts {
		if a.value < 0 {
			problems = append(problems, a.label+"は0以上で入力してください")
		}
	}
	if m.NewPatients < 0 || m.ReturningPatients < 0 || m.TotalPatients < 0 {
		problems = append(problems, "患者数は0以上で入力してください")
	}
	if m.TreatmentDays < 0 || m.TreatmentDays > 31 {
		problems = append(problems, "診療日数は0〜31で入力してください")
	}
	return problems
}

// ListMonthlyData lists a clinic's monthly figures
// @Summary List monthly data
// @Description Rows in month order with totals and formatted amounts. Bounds are inclusive YYYY-MM.
// @Tags monthly-data
// @Produce json
// @Param from query string false "First month"
// @Param to query string false "Last month"
// @Success 200 {object} map[string][]models.MonthlyDataView
// @Security BearerAuth
// @Router /monthly-data [get]
func (h *Handler) ListMonthlyData(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	for _, v := range []string{from, to} {
		if v == "" {
			continue
		}
		if _, err := finance.ParseMonth(v); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rows, err := h.store.ListMonthlyData(r.Context(), clinicID(r), from, to)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	views := make([]models.MonthlyDataView, 0, len(rows))
	for _, row := range rows {
		views = append(views, finance.View(row))
	}
	respond.Items(w, views)
}

// GetMonthlyData returns one month
// @Summary Get monthly data
// @Tags monthly-data
// @Produce json
// @Param yearMonth path string true "YYYY-MM"
// @Success 200 {object} models.MonthlyDataView
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /monthly-data/{yearMonth} [get]
func (h *Handler) GetMonthlyData(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.GetMonthlyData(r.Context(), clinicID(r), chi.URLParam(r, "yearMonth"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, finance.View(*row))
}

// CreateMonthlyData records a new month
// @Summary Create monthly data
// @Description Totals are computed server side; a month can only be created once
// @Tags monthly-data
// @Accept json
// @Produce json
// @Param body body models.MonthlyData true "Figures"
// @Success 201 {object} models.MonthlyDataView
// @Failure 409 {object} map[string]interface{} "Month already exists"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /monthly-data [post]
func (h *Handler) CreateMonthlyData(w http.ResponseWriter, r *http.Request) {
	var row models.MonthlyData
	if !decodeJSON(w, r, &row) {
		return
	}
	if problems := validateMonthly(row); len(problems) > 0 {
		validationError(w, problems)
		return
	}
	row.ID = ""
	row.ClinicID = clinicID(r)
	finance.Apply(&row)

	if err := h.store.CreateMonthlyData(r.Context(), &row); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	h.invalidateDashboard(r.Context(), row.ClinicID)
	respond.JSON(w, http.StatusCreated, finance.View(row))
}

// UpdateMonthlyData replaces the figures of a month
// @Summary Update monthly data
// @Tags monthly-data
// @Accept json
// @Produce json
// @Param yearMonth path string true "YYYY-MM"
// @Param body body models.MonthlyData true "Figures"
// @Success 200 {object} models.MonthlyDataView
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /monthly-data/{yearMonth} [put]
func (h *Handler) UpdateMonthlyData(w http.ResponseWriter, r *http.Request) {
	var row models.MonthlyData
	if !decodeJSON(w, r, &row) {
		return
	}
	row.YearMonth = chi.URLParam(r, "yearMonth")
	if problems := validateMonthly(row); len(problems) > 0 {
		validationError(w, problems)
		return
	}
	row.ClinicID = clinicID(r)
	finance.Apply(&row)

	if err := h.store.UpdateMonthlyData(r.Context(), &row); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	h.invalidateDashboard(r.Context(), row.ClinicID)
	respond.OK(w, finance.View(row))
}

// DeleteMonthlyData removes a month
// @Summary Delete monthly data
// @Tags monthly-data
// @Param yearMonth path string true "YYYY-MM"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /monthly-data/{yearMonth} [delete]
func (h *Handler) DeleteMonthlyData(w http.ResponseWriter, r *http.Request) {
	clinic := clinicID(r)
	if err := h.store.DeleteMonthlyData(r.Context(), clinic, chi.URLParam(r, "yearMonth")); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	h.invalidateDashboard(r.Context(), clinic)
	w.WriteHeader(http.StatusNoContent)
}

// ImportMonthlyData bulk loads months from a CSV or XLSX upload
// @Summary Import monthly data
// @Description Every row is validated first; valid rows are upserted in one transaction. Unreadable files or missing columns fail the whole upload.
// @Tags monthly-data
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV (UTF-8 or Shift_JIS) or XLSX"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} map[string]interface{} "Unreadable file"
// @Security BearerAuth
// @Router /monthly-data/import-csv [post]
func (h *Handler) ImportMonthlyData(w http.ResponseWriter, r *http.Request) {
	outcome, ok := h.readUpload(w, r, csvimport.MonthlyData)
	if !ok {
		return
	}
	clinic := clinicID(r)

	rows := csvimport.MonthlyRecords(outcome.Valid)
	for i := range rows {
		finance.Apply(&rows[i])
	}

	result := models.ImportResult{Failed: len(outcome.Invalid), Errors: outcome.Messages()}
	if len(rows) > 0 {
		if err := h.store.BulkUpsertMonthlyData(r.Context(), clinic, rows); err != nil {
			slog.Error("monthly data import failed", "clinic_id", clinic, "rows", len(rows), "error", err)
			result.Failed += len(rows)
			result.Errors = append(result.Errors, "データベースへの登録に失敗しました")
		} else {
			result.Success = len(rows)
			h.invalidateDashboard(r.Context(), clinic)
			h.publish(r, models.Event{
				Kind:     models.EventMonthlyDataImported,
				ClinicID: clinic,
				Attrs:    map[string]string{"rows": strconv.Itoa(len(rows))},
			})
		}
	}
	respond.OK(w, result)
}

// readUpload parses the "file" form field against schema. It writes the 400
// response itself when the file cannot be used at all.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, schema csvimport.Schema) (csvimport.Outcome, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "ファイルを選択してください")
		return csvimport.Outcome{}, false
	}
	defer file.Close()

	records, err := csvimport.ReadFile(header.Filename, file)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return csvimport.Outcome{}, false
	}
	outcome, err := schema.Process(records)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return csvimport.Outcome{}, false
	}
	return outcome, true
}

// ExportMonthlyData downloads the clinic's monthly data as a workbook
// @Summary Export monthly data
// @Description XLSX with the import column headers plus computed totals; the file can be re-imported as is
// @Tags monthly-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "First month"
// @Param to query string false "Last month"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /monthly-data/export [get]
func (h *Handler) ExportMonthlyData(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListMonthlyData(r.Context(), clinicID(r), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}

	f, err := monthlyWorkbook(rows)
	if err != nil {
		slog.Error("build monthly workbook", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="monthly-data.xlsx"`)
	if err := f.Write(w); err != nil {
		slog.Warn("write monthly workbook", "error", err)
	}
}

func monthlyWorkbook(rows []models.MonthlyData) (*excelize.File, error) {
	const sheet = "月次データ"
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]any, 0, len(csvimport.MonthlyData.Fields)+3)
	for _, field := range csvimport.MonthlyData.Fields {
		header = append(header, field.Label)
	}
	header = append(header, "総売上", "総経費", "営業利益")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, m := range rows {
		finance.Apply(&m)
		values := []any{
			m.YearMonth, m.InsuranceRevenue, m.SelfPayRevenue, m.RetailRevenue,
			m.PersonnelCost, m.MaterialCost, m.LabCost, m.RentCost, m.EquipmentCost,
			m.AdvertisingCost, m.OtherCost, m.NewPatients, m.ReturningPatients,
			m.TotalPatients, m.TreatmentDays,
			m.TotalRevenue, m.TotalCost, m.OperatingProfit,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("row %s: %w", m.YearMonth, err)
		}
	}
	return f, nil
}
