package handlers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"dentalboard-backend/internal/access"
	"dentalboard-backend/internal/market"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
)

const minPasswordLength = 8

// GetOwnClinic returns the clinic the caller is working in
// @Summary Get own clinic
// @Tags clinic
// @Produce json
// @Success 200 {object} models.Clinic
// @Security BearerAuth
// @Router /clinic [get]
func (h *Handler) GetOwnClinic(w http.ResponseWriter, r *http.Request) {
	clinic, err := h.store.GetClinic(r.Context(), clinicID(r))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, clinic)
}

// UpdateOwnClinic edits the caller's clinic profile
// @Summary Update own clinic
// @Tags clinic
// @Accept json
// @Produce json
// @Param body body models.ClinicInput true "Clinic profile"
// @Success 200 {object} models.Clinic
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /clinic [put]
func (h *Handler) UpdateOwnClinic(w http.ResponseWriter, r *http.Request) {
	h.saveClinic(w, r, clinicID(r))
}

// ListClinicUsers lists the users of the caller's clinic
// @Summary List clinic users
// @Tags clinic
// @Produce json
// @Success 200 {object} map[string][]models.User
// @Security BearerAuth
// @Router /clinic/users [get]
func (h *Handler) ListClinicUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), clinicID(r))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, users)
}

// ListClinics lists every clinic
// @Summary List clinics
// @Tags admin
// @Produce json
// @Param active query bool false "Only active clinics"
// @Success 200 {object} map[string][]models.Clinic
// @Security BearerAuth
// @Router /admin/clinics [get]
func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.store.ListClinics(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, clinics)
}

// CreateClinic registers a clinic
// @Summary Create clinic
// @Description The address is geocoded when coordinates are omitted. A geocoding miss leaves the clinic without a location.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.ClinicInput true "Clinic"
// @Success 201 {object} models.Clinic
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/clinics [post]
func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	h.saveClinic(w, r, "")
}

// UpdateClinic edits a clinic
// @Summary Update clinic
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Clinic ID"
// @Param body body models.ClinicInput true "Clinic"
// @Success 200 {object} models.Clinic
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/clinics/{id} [put]
func (h *Handler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	h.saveClinic(w, r, chi.URLParam(r, "id"))
}

// saveClinic creates a clinic when id is empty and updates it otherwise.
func (h *Handler) saveClinic(w http.ResponseWriter, r *http.Request, id string) {
	var in models.ClinicInput
	if !decodeJSON(w, r, &in) {
		return
	}
	clinic := models.Clinic{
		ID:         id,
		Name:       h.sanitize(in.Name),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Address:    h.sanitize(in.Address),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Active:     true,
	}

	var problems []string
	if clinic.Name == "" {
		problems = append(problems, "医院名を入力してください")
	}
	if clinic.Email != "" {
		if _, err := mail.ParseAddress(clinic.Email); err != nil {
			problems = append(problems, "メールアドレスの形式が正しくありません")
		}
	}
	if (clinic.Latitude == nil) != (clinic.Longitude == nil) {
		problems = append(problems, "緯度と経度は両方指定してください")
	} else if clinic.HasLocation() && !market.ValidCoordinates(*clinic.Latitude, *clinic.Longitude) {
		problems = append(problems, "緯度経度の値が範囲外です")
	}
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}

	if !clinic.HasLocation() && clinic.Address != "" && h.geocoder != nil {
		lat, lng, err := h.geocoder.Geocode(r.Context(), clinic.Address)
		if err == nil {
			clinic.Latitude, clinic.Longitude = &lat, &lng
		} else {
			slog.Warn("clinic geocoding failed", "address", clinic.Address, "error", err)
		}
	}

	if id == "" {
		if err := h.store.CreateClinic(r.Context(), &clinic); err != nil {
			httpErrorFromStorage(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, clinic)
		return
	}
	if err := h.store.UpdateClinic(r.Context(), &clinic); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, clinic)
}

type activeInput struct {
	Active bool `json:"active"`
}

// SetClinicActive activates or deactivates a clinic
// @Summary Activate or deactivate clinic
// @Tags admin
// @Accept json
// @Param id path string true "Clinic ID"
// @Param body body activeInput true "Active flag"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /admin/clinics/{id}/active [post]
func (h *Handler) SetClinicActive(w http.ResponseWriter, r *http.Request) {
	var in activeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.store.SetClinicActive(r.Context(), chi.URLParam(r, "id"), in.Active); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers lists users, optionally for one clinic
// @Summary List users
// @Tags admin
// @Produce json
// @Param clinic_id query string false "Clinic filter"
// @Success 200 {object} map[string][]models.User
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), r.URL.Query().Get("clinic_id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, users)
}

// userScope checks that clinic roles carry a clinic and the admin role does not.
func userScope(roleName string, clinicID *string) (access.Role, *string, []string) {
	role, ok := access.ParseRole(roleName)
	if !ok {
		return "", nil, []string{"ロールが不正です"}
	}
	if clinicID != nil && strings.TrimSpace(*clinicID) == "" {
		clinicID = nil
	}
	if role.IsClinicRole() && clinicID == nil {
		return "", nil, []string{"医院ユーザーには医院を指定してください"}
	}
	if !role.IsClinicRole() && clinicID != nil {
		return "", nil, []string{"システム管理者に医院は指定できません"}
	}
	return role, clinicID, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CreateUser adds a login
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.CreateUserInput true "User"
// @Success 201 {object} models.User
// @Failure 409 {object} map[string]interface{} "Email already registered"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.CreateUserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := h.sanitize(in.Name)

	var problems []string
	if _, err := mail.ParseAddress(email); err != nil {
		problems = append(problems, "メールアドレスの形式が正しくありません")
	}
	if name == "" {
		problems = append(problems, "氏名を入力してください")
	}
	if len(in.Password) < minPasswordLength {
		problems = append(problems, "パスワードは8文字以上で入力してください")
	}
	role, clinic, scopeProblems := userScope(in.Role, in.ClinicID)
	problems = append(problems, scopeProblems...)
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		slog.Error("hash password", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	user := models.User{
		ClinicID:     clinic,
		Email:        email,
		Name:         name,
		Role:         role.String(),
		PasswordHash: hash,
		Active:       true,
	}
	if err := h.store.CreateUser(r.Context(), &user); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

// UpdateUser edits a login; an empty password keeps the current one
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body models.UpdateUserInput true "User"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UpdateUserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.store.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}

	name := h.sanitize(in.Name)
	var problems []string
	if name == "" {
		problems = append(problems, "氏名を入力してください")
	}
	if in.Password != "" && len(in.Password) < minPasswordLength {
		problems = append(problems, "パスワードは8文字以上で入力してください")
	}
	role, clinic, scopeProblems := userScope(in.Role, in.ClinicID)
	problems = append(problems, scopeProblems...)
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}

	user.Name = name
	user.Role = role.String()
	user.ClinicID = clinic
	if in.Active != nil {
		user.Active = *in.Active
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			slog.Error("hash password", "error", err)
			respond.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		user.PasswordHash = hash
	}
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, user)
}

// DeactivateUser disables a login
// @Summary Deactivate user
// @Tags admin
// @Param id path string true "User ID"
// @Success 204
// @Failure 400 {object} map[string]interface{} "Cannot deactivate yourself"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == principal(r).UserID {
		respond.Error(w, http.StatusBadRequest, "自分自身は無効化できません")
		return
	}
	if err := h.store.SetUserActive(r.Context(), id, false); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
