package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
)

type staffList struct {
	Items            []models.Staff `json:"items"`
	MonthlyCostTotal int64          `json:"monthly_cost_total"`
}

// ListStaff lists the clinic's staff with the monthly cost of active members
// @Summary List staff
// @Tags staff
// @Produce json
// @Success 200 {object} staffList
// @Security BearerAuth
// @Router /staff [get]
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	clinic := clinicID(r)
	items, err := h.store.ListStaff(r.Context(), clinic)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	total, err := h.store.StaffMonthlyCost(r.Context(), clinic)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, staffList{Items: items, MonthlyCostTotal: total})
}

func (h *Handler) staffFromInput(in models.StaffInput) (models.Staff, []string) {
	member := models.Staff{
		Name:           h.sanitize(in.Name),
		Position:       in.Position,
		EmploymentType: in.EmploymentType,
		MonthlyCost:    in.MonthlyCost,
		HiredOn:        in.HiredOn,
		Notes:          h.sanitize(in.Notes),
		Active:         in.Active == nil || *in.Active,
	}
	var problems []string
	if member.Name == "" {
		problems = append(problems, "氏名を入力してください")
	}
	if !models.StaffPositions[member.Position] {
		problems = append(problems, "職種が不正です")
	}
	if !models.EmploymentTypes[member.EmploymentType] {
		problems = append(problems, "雇用形態が不正です")
	}
	if member.MonthlyCost < 0 {
		problems = append(problems, "月額人件費は0以上で入力してください")
	}
	return member, problems
}

// CreateStaff adds a staff member
// @Summary Create staff member
// @Tags staff
// @Accept json
// @Produce json
// @Param body body models.StaffInput true "Staff member"
// @Success 201 {object} models.Staff
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /staff [post]
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var in models.StaffInput
	if !decodeJSON(w, r, &in) {
		return
	}
	member, problems := h.staffFromInput(in)
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}
	member.ClinicID = clinicID(r)
	if err := h.store.CreateStaff(r.Context(), &member); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, member)
}

// UpdateStaff replaces a staff member's record
// @Summary Update staff member
// @Tags staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param body body models.StaffInput true "Staff member"
// @Success 200 {object} models.Staff
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /staff/{id} [put]
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	var in models.StaffInput
	if !decodeJSON(w, r, &in) {
		return
	}
	member, problems := h.staffFromInput(in)
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}
	member.ID = chi.URLParam(r, "id")
	member.ClinicID = clinicID(r)
	if err := h.store.UpdateStaff(r.Context(), &member); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	updated, err := h.store.GetStaff(r.Context(), member.ClinicID, member.ID)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, updated)
}

// DeleteStaff removes a staff member
// @Summary Delete staff member
// @Tags staff
// @Param id path string true "Staff ID"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /staff/{id} [delete]
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteStaff(r.Context(), clinicID(r), chi.URLParam(r, "id")); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
