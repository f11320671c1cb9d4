package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"

	"dentalboard-backend/internal/access"
	"dentalboard-backend/internal/auth"
	"dentalboard-backend/internal/events"
	"dentalboard-backend/internal/hub"
	"dentalboard-backend/internal/middleware"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/services"
	"dentalboard-backend/internal/storage"
)

// maxUploadBytes bounds CSV/XLSX uploads.
const maxUploadBytes = 10 << 20

// Store is the persistence the HTTP API needs. *storage.Storage implements it.
type Store interface {
	ListClinics(ctx context.Context, activeOnly bool) ([]models.Clinic, error)
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
	CreateClinic(ctx context.Context, clinic *models.Clinic) error
	UpdateClinic(ctx context.Context, clinic *models.Clinic) error
	SetClinicActive(ctx context.Context, id string, active bool) error

	ListUsers(ctx context.Context, clinicID string) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	SetUserActive(ctx context.Context, id string, active bool) error

	ListMonthlyData(ctx context.Context, clinicID, from, to string) ([]models.MonthlyData, error)
	GetMonthlyData(ctx context.Context, clinicID, yearMonth string) (*models.MonthlyData, error)
	CreateMonthlyData(ctx context.Context, row *models.MonthlyData) error
	UpdateMonthlyData(ctx context.Context, row *models.MonthlyData) error
	DeleteMonthlyData(ctx context.Context, clinicID, yearMonth string) error
	BulkUpsertMonthlyData(ctx context.Context, clinicID string, rows []models.MonthlyData) error

	ListPriceItems(ctx context.Context, activeOnly bool) ([]models.PriceItem, error)
	GetPriceItem(ctx context.Context, id string) (*models.PriceItem, error)
	CreatePriceItem(ctx context.Context, item *models.PriceItem) error
	UpdatePriceItem(ctx context.Context, item *models.PriceItem) error
	DeletePriceItem(ctx context.Context, id string) error
	BulkInsertPriceItems(ctx context.Context, inputs []models.PriceItemInput) error

	CreatePrintOrder(ctx context.Context, order *models.PrintOrder) error
	GetPrintOrder(ctx context.Context, id string) (*models.PrintOrder, error)
	ListPrintOrders(ctx context.Context, clinicID, status string) ([]models.PrintOrder, error)
	UpdatePrintOrderStatus(ctx context.Context, id, from, to string) (*models.PrintOrder, error)

	ListStaff(ctx context.Context, clinicID string) ([]models.Staff, error)
	GetStaff(ctx context.Context, clinicID, id string) (*models.Staff, error)
	CreateStaff(ctx context.Context, member *models.Staff) error
	UpdateStaff(ctx context.Context, member *models.Staff) error
	DeleteStaff(ctx context.Context, clinicID, id string) error
	StaffMonthlyCost(ctx context.Context, clinicID string) (int64, error)

	ListCompetitors(ctx context.Context) ([]models.Competitor, error)
	CompetitorsInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Competitor, error)
	CreateCompetitor(ctx context.Context, c *models.Competitor) error
	DeleteCompetitor(ctx context.Context, id string) error
	CreateMarketAnalysis(ctx context.Context, a *models.MarketAnalysis) error
	ListMarketAnalyses(ctx context.Context, clinicID string, limit int) ([]models.MarketAnalysis, error)
	GetMarketAnalysis(ctx context.Context, clinicID, id string) (*models.MarketAnalysis, error)

	CreateSimulation(ctx context.Context, sim *models.Simulation) error
	ListSimulations(ctx context.Context, clinicID string) ([]models.Simulation, error)
	GetSimulation(ctx context.Context, clinicID, id string) (*models.Simulation, error)
	DeleteSimulation(ctx context.Context, clinicID, id string) error

	CreateReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context, clinicID string) ([]models.Report, error)
}

// DashboardCache memoises dashboards per clinic and window.
type DashboardCache interface {
	GetDashboard(ctx context.Context, clinicID string, months int, dst any) (bool, error)
	SetDashboard(ctx context.Context, clinicID string, months int, v any) error
	InvalidateDashboard(ctx context.Context, clinicID string) error
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

type Deps struct {
	Store     Store
	Cache     DashboardCache
	Publisher events.Publisher
	Geocoder  Geocoder
	Objects   services.ObjectStore
	Location  *time.Location
	// Live is optional; without it the live event endpoint answers 503.
	Live *hub.Hub
	// Origins are the browser origins allowed to open the live feed.
	Origins []string
}

type Handler struct {
	store     Store
	cache     DashboardCache
	publisher events.Publisher
	geocoder  Geocoder
	objects   services.ObjectStore
	live      *hub.Hub
	upgrader  websocket.Upgrader
	loc       *time.Location
	policy    *access.Policy
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func New(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Handler{
		store:     d.Store,
		cache:     d.Cache,
		publisher: publisher,
		geocoder:  d.Geocoder,
		objects:   d.Objects,
		live:      d.Live,
		upgrader:  websocket.Upgrader{CheckOrigin: allowOrigin(d.Origins)},
		loc:       loc,
		policy:    access.DefaultPolicy(),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// RegisterRoutes mounts the JSON API under /api. loginLimit wraps the login
// endpoint only.
func (h *Handler) RegisterRoutes(r chi.Router, authn *auth.Authenticator, authHandler *auth.Handler, loginLimit func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.With(loginLimit).Post("/auth/login", authHandler.Login)
		r.With(authn.Optional).Get("/navigation/resolve", h.ResolveNavigation)
		r.With(auth.QueryToken, authn.Middleware).Get("/events/live", h.LiveEvents)

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/select-clinic", authHandler.SelectClinic)
			r.Get("/menu", h.Menu)
			r.Get("/price-table", h.ListActivePriceItems)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireClinic)
				h.clinicRoutes(r)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.Require(access.AdminOnly...))
				h.adminRoutes(r)
			})
		})
	})
}

func (h *Handler) clinicRoutes(r chi.Router) {
	editors := auth.Require(access.Editors...)
	owners := auth.Require(access.Owners...)

	r.Get("/clinic", h.GetOwnClinic)
	r.With(owners).Put("/clinic", h.UpdateOwnClinic)
	r.With(owners).Get("/clinic/users", h.ListClinicUsers)

	r.Get("/dashboard", h.Dashboard)

	r.Route("/monthly-data", func(r chi.Router) {
		r.Get("/", h.ListMonthlyData)
		r.Get("/export", h.ExportMonthlyData)
		r.Get("/{yearMonth}", h.GetMonthlyData)
		r.With(editors).Post("/", h.CreateMonthlyData)
		r.With(editors).Post("/import-csv", h.ImportMonthlyData)
		r.With(editors).Put("/{yearMonth}", h.UpdateMonthlyData)
		r.With(editors).Delete("/{yearMonth}", h.DeleteMonthlyData)
	})

	r.Route("/market-analysis", func(r chi.Router) {
		r.Get("/", h.ListMarketAnalyses)
		r.Get("/{id}", h.GetMarketAnalysis)
		r.With(editors).Post("/", h.CreateMarketAnalysis)
	})

	r.Route("/simulations", func(r chi.Router) {
		r.Use(editors)
		r.Get("/", h.ListSimulations)
		r.Post("/", h.CreateSimulation)
		r.Get("/{id}", h.GetSimulation)
		r.Delete("/{id}", h.DeleteSimulation)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Get("/{id}", h.GetReport)
		r.Get("/{id}/download", h.DownloadReport)
		r.With(editors).Post("/", h.CreateReport)
	})

	r.Route("/print-orders", func(r chi.Router) {
		r.Use(editors)
		r.Get("/estimate", h.EstimatePrintOrder)
		r.Get("/", h.ListPrintOrders)
		r.Post("/", h.CreatePrintOrder)
		r.Get("/{id}", h.GetPrintOrder)
		r.Post("/{id}/cancel", h.CancelPrintOrder)
	})

	r.Route("/staff", func(r chi.Router) {
		r.Use(owners)
		r.Get("/", h.ListStaff)
		r.Post("/", h.CreateStaff)
		r.Put("/{id}", h.UpdateStaff)
		r.Delete("/{id}", h.DeleteStaff)
	})
}

func (h *Handler) adminRoutes(r chi.Router) {
	r.Get("/clinics", h.ListClinics)
	r.Post("/clinics", h.CreateClinic)
	r.Put("/clinics/{id}", h.UpdateClinic)
	r.Post("/clinics/{id}/active", h.SetClinicActive)

	r.Get("/users", h.ListUsers)
	r.Post("/users", h.CreateUser)
	r.Put("/users/{id}", h.UpdateUser)
	r.Delete("/users/{id}", h.DeactivateUser)

	r.Get("/price-table", h.ListAllPriceItems)
	r.Post("/price-table", h.CreatePriceItem)
	r.Post("/price-table/import-csv", h.ImportPriceTable)
	r.Put("/price-table/{id}", h.UpdatePriceItem)
	r.Delete("/price-table/{id}", h.DeletePriceItem)

	r.Get("/print-orders", h.ListAllPrintOrders)
	r.Post("/print-orders/{id}/status", h.UpdatePrintOrderStatus)

	r.Get("/competitors", h.ListCompetitors)
	r.Post("/competitors", h.CreateCompetitor)
	r.Delete("/competitors/{id}", h.DeleteCompetitor)
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// clinicID is the clinic the request operates on. RequireClinic guarantees
// it is set on clinic routes.
func clinicID(r *http.Request) string {
	return principal(r).Clinic()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// httpErrorFromStorage maps storage sentinels to responses and logs the rest.
func httpErrorFromStorage(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrEmailTaken):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrDuplicateMonth):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrStatusConflict):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrInvalidClinicID):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		respond.Error(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		slog.Error("storage error", "method", r.Method, "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// validationError answers 422 with the list of problems.
func validationError(w http.ResponseWriter, problems []string) {
	respond.ErrorWith(w, http.StatusUnprocessableEntity, strings.Join(problems, "、"), map[string]any{
		"errors": problems,
	})
}

// sanitize strips markup from free text. The result is plain text, so the
// entities the policy escapes are turned back into characters.
func (h *Handler) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(h.sanitizer.Sanitize(s)))
}

// publish emits an event; failures are logged and never fail the request.
func (h *Handler) publish(r *http.Request, ev models.Event) {
	if ev.ActorID == "" {
		ev.ActorID = principal(r).UserID
	}
	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		slog.Warn("publish event failed", "kind", ev.Kind, "clinic_id", ev.ClinicID, "error", err)
	}
}

func (h *Handler) invalidateDashboard(ctx context.Context, clinicID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateDashboard(ctx, clinicID); err != nil {
		slog.Warn("dashboard cache invalidation failed", "clinic_id", clinicID, "error", err)
	}
}
