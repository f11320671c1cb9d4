package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/storage"
)

// CreateSimulation projects the clinic's figures and saves the scenario
// @Summary Create simulation
// @Description Projects from base_year_month, or the latest recorded month when omitted. Rates are percent per month.
// @Tags simulations
// @Accept json
// @Produce json
// @Param body body models.CreateSimulationInput true "Scenario"
// @Success 201 {object} models.Simulation
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Failure 422 {object} map[string]interface{} "No base month"
// @Security BearerAuth
// @Router /simulations [post]
func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var in models.CreateSimulationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	name := h.sanitize(in.Name)
	if name == "" {
		validationError(w, []string{"シミュレーション名を入力してください"})
		return
	}
	if err := finance.ValidateParams(in.Params); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	clinic := clinicID(r)
	base, ok := h.simulationBase(w, r, clinic, in.Params.BaseYearMonth)
	if !ok {
		return
	}
	result, err := finance.Simulate(*base, in.Params)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Params.BaseYearMonth = base.YearMonth

	sim := models.Simulation{
		ClinicID:  clinic,
		Name:      name,
		Params:    in.Params,
		Result:    &result,
		CreatedBy: principal(r).UserID,
	}
	if err := h.store.CreateSimulation(r.Context(), &sim); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, sim)
}

func (h *Handler) simulationBase(w http.ResponseWriter, r *http.Request, clinic, yearMonth string) (*models.MonthlyData, bool) {
	if yearMonth != "" {
		if _, err := finance.ParseMonth(yearMonth); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		row, err := h.store.GetMonthlyData(r.Context(), clinic, yearMonth)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				validationError(w, []string{yearMonth + "の月次データがありません"})
				return nil, false
			}
			httpErrorFromStorage(w, r, err)
			return nil, false
		}
		return row, true
	}

	rows, err := h.store.ListMonthlyData(r.Context(), clinic, "", "")
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return nil, false
	}
	if len(rows) == 0 {
		validationError(w, []string{"月次データが登録されていません"})
		return nil, false
	}
	return &rows[len(rows)-1], true
}

// ListSimulations lists saved scenarios
// @Summary List simulations
// @Tags simulations
// @Produce json
// @Success 200 {object} map[string][]models.Simulation
// @Security BearerAuth
// @Router /simulations [get]
func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListSimulations(r.Context(), clinicID(r))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

// GetSimulation returns one scenario with its projection
// @Summary Get simulation
// @Tags simulations
// @Produce json
// @Param id path string true "Simulation ID"
// @Success 200 {object} models.Simulation
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /simulations/{id} [get]
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := h.store.GetSimulation(r.Context(), clinicID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, sim)
}

// DeleteSimulation removes a scenario
// @Summary Delete simulation
// @Tags simulations
// @Param id path string true "Simulation ID"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /simulations/{id} [delete]
func (h *Handler) DeleteSimulation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSimulation(r.Context(), clinicID(r), chi.URLParam(r, "id")); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
