package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dentalboard-backend/internal/market"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/services"
)

var (
	errNoLocation   = errors.New("所在地が設定されていません。住所または緯度経度を指定してください")
	errGeocoderDown = errors.New("geocoder unavailable")
)

// analysisCenter picks the center in order: explicit coordinates, the given
// address, the clinic's stored coordinates, the clinic's address.
func (h *Handler) analysisCenter(r *http.Request, in models.MarketAnalysisInput) (market.Point, string, error) {
	if in.Latitude != nil && in.Longitude != nil {
		return market.Point{Lat: *in.Latitude, Lng: *in.Longitude}, strings.TrimSpace(in.Address), nil
	}
	if address := strings.TrimSpace(in.Address); address != "" {
		p, err := h.geocode(r, address)
		return p, address, err
	}

	clinic, err := h.store.GetClinic(r.Context(), clinicID(r))
	if err != nil {
		return market.Point{}, "", err
	}
	if clinic.HasLocation() {
		return market.Point{Lat: *clinic.Latitude, Lng: *clinic.Longitude}, clinic.Address, nil
	}
	if clinic.Address != "" {
		p, err := h.geocode(r, clinic.Address)
		return p, clinic.Address, err
	}
	return market.Point{}, "", errNoLocation
}

func (h *Handler) geocode(r *http.Request, address string) (market.Point, error) {
	if h.geocoder == nil {
		return market.Point{}, errNoLocation
	}
	lat, lng, err := h.geocoder.Geocode(r.Context(), address)
	if errors.Is(err, services.ErrAddressNotFound) {
		return market.Point{}, err
	}
	if err != nil {
		return market.Point{}, fmt.Errorf("%w: %w", errGeocoderDown, err)
	}
	return market.Point{Lat: lat, Lng: lng}, nil
}

// locationFailure answers a failed center or address lookup. Anything that
// is not a geocoding problem came from storage.
func locationFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNoLocation):
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrAddressNotFound):
		respond.Error(w, http.StatusUnprocessableEntity, "住所から位置を特定できませんでした")
	case errors.Is(err, errGeocoderDown):
		slog.Warn("geocoding failed", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusBadGateway, "位置情報サービスに接続できませんでした")
	default:
		httpErrorFromStorage(w, r, err)
	}
}

// CreateMarketAnalysis runs and saves a competitor radius analysis
// @Summary Create market analysis
// @Description Center comes from explicit coordinates, a geocoded address or the clinic location. Competitors within the radius are listed nearest first.
// @Tags market-analysis
// @Accept json
// @Produce json
// @Param body body models.MarketAnalysisInput true "Center and radius"
// @Success 201 {object} models.MarketAnalysis
// @Failure 400 {object} map[string]interface{} "Invalid radius or coordinates"
// @Failure 422 {object} map[string]interface{} "Location unknown"
// @Failure 502 {object} map[string]interface{} "Geocoder unavailable"
// @Security BearerAuth
// @Router /market-analysis [post]
func (h *Handler) CreateMarketAnalysis(w http.ResponseWriter, r *http.Request) {
	var in models.MarketAnalysisInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.RadiusKM < 0 || in.RadiusKM > market.MaxRadiusKM {
		respond.Error(w, http.StatusBadRequest, market.ErrInvalidRadius.Error())
		return
	}

	center, address, err := h.analysisCenter(r, in)
	if err != nil {
		locationFailure(w, r, err)
		return
	}
	if !market.ValidCoordinates(center.Lat, center.Lng) {
		respond.Error(w, http.StatusBadRequest, market.ErrInvalidCoordinates.Error())
		return
	}

	radius := in.RadiusKM
	if radius == 0 {
		radius = market.DefaultRadiusKM
	}
	minLat, maxLat, minLng, maxLng := market.BoundingBox(center, radius)
	candidates, err := h.store.CompetitorsInBox(r.Context(), minLat, maxLat, minLng, maxLng)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	summary, err := market.Analyze(center, radius, candidates)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	record := summary.Record(clinicID(r), address, principal(r).UserID)
	if err := h.store.CreateMarketAnalysis(r.Context(), &record); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, record)
}

// ListMarketAnalyses lists saved analyses, newest first
// @Summary List market analyses
// @Tags market-analysis
// @Produce json
// @Success 200 {object} map[string][]models.MarketAnalysis
// @Security BearerAuth
// @Router /market-analysis [get]
func (h *Handler) ListMarketAnalyses(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMarketAnalyses(r.Context(), clinicID(r), 50)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

// GetMarketAnalysis returns one analysis with its competitor list
// @Summary Get market analysis
// @Tags market-analysis
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} models.MarketAnalysis
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /market-analysis/{id} [get]
func (h *Handler) GetMarketAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetMarketAnalysis(r.Context(), clinicID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, a)
}

// ListCompetitors lists every registered competitor
// @Summary List competitors
// @Tags admin
// @Produce json
// @Success 200 {object} map[string][]models.Competitor
// @Security BearerAuth
// @Router /admin/competitors [get]
func (h *Handler) ListCompetitors(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListCompetitors(r.Context())
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

// CreateCompetitor registers a competing clinic
// @Summary Create competitor
// @Description Coordinates are geocoded from the address when omitted
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.CompetitorInput true "Competitor"
// @Success 201 {object} models.Competitor
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/competitors [post]
func (h *Handler) CreateCompetitor(w http.ResponseWriter, r *http.Request) {
	var in models.CompetitorInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c := models.Competitor{
		Name:    h.sanitize(in.Name),
		Address: h.sanitize(in.Address),
		Chairs:  in.Chairs,
		Source:  h.sanitize(in.Source),
	}
	var problems []string
	if c.Name == "" {
		problems = append(problems, "医院名を入力してください")
	}
	if c.Chairs < 0 {
		problems = append(problems, "チェア数は0以上で入力してください")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		problems = append(problems, "緯度と経度は両方指定してください")
	}
	if in.Latitude == nil && in.Longitude == nil && c.Address == "" {
		problems = append(problems, "住所または緯度経度を入力してください")
	}
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}

	if in.Latitude != nil {
		c.Latitude, c.Longitude = *in.Latitude, *in.Longitude
	} else {
		p, err := h.geocode(r, c.Address)
		if err != nil {
			locationFailure(w, r, err)
			return
		}
		c.Latitude, c.Longitude = p.Lat, p.Lng
	}
	if !market.ValidCoordinates(c.Latitude, c.Longitude) {
		respond.Error(w, http.StatusBadRequest, market.ErrInvalidCoordinates.Error())
		return
	}

	if err := h.store.CreateCompetitor(r.Context(), &c); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}

// DeleteCompetitor removes a competitor
// @Summary Delete competitor
// @Tags admin
// @Param id path string true "Competitor ID"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /admin/competitors/{id} [delete]
func (h *Handler) DeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCompetitor(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
