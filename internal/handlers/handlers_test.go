package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dentalboard-backend/internal/access"
	"dentalboard-backend/internal/auth"
	"dentalboard-backend/internal/hub"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/services"
	"dentalboard-backend/internal/storage"
)

var jst = time.FixedZone("Asia/Tokyo", 9*60*60)

var (
	owner  = auth.Principal{UserID: "u-owner", Role: access.ClinicOwner, ClinicID: "c1"}
	editor = auth.Principal{UserID: "u-editor", Role: access.ClinicEditor, ClinicID: "c1"}
	viewer = auth.Principal{UserID: "u-viewer", Role: access.ClinicViewer, ClinicID: "c1"}
	other  = auth.Principal{UserID: "u-other", Role: access.ClinicOwner, ClinicID: "c2"}
	admin  = auth.Principal{UserID: "u-admin", Role: access.SystemAdmin}
)

type fakeStore struct {
	Store

	seq         int
	clinics     map[string]*models.Clinic
	users       map[string]*models.User
	monthly     map[string]models.MonthlyData
	priceItems  map[string]*models.PriceItem
	orders      map[string]*models.PrintOrder
	reports     map[string]*models.Report
	competitors []models.Competitor
	analyses    []models.MarketAnalysis
	staff       []models.Staff
	priceBatch  []models.PriceItemInput
	bulkErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clinics: map[string]*models.Clinic{
			"c1": {ID: "c1", Name: "さくら歯科", Address: "東京都千代田区丸の内1-1", Active: true},
			"c2": {ID: "c2", Name: "みどり歯科", Active: true},
		},
		users:      map[string]*models.User{},
		monthly:    map[string]models.MonthlyData{},
		priceItems: map[string]*models.PriceItem{},
		orders:     map[string]*models.PrintOrder{},
		reports:    map[string]*models.Report{},
	}
}

func (s *fakeStore) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) TouchLastLogin(context.Context, string, time.Time) error { return nil }

func (s *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storage.ErrEmailTaken
		}
	}
	u.ID = s.id("user")
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) GetClinic(_ context.Context, id string) (*models.Clinic, error) {
	c, ok := s.clinics[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) ListClinics(context.Context, bool) ([]models.Clinic, error) {
	out := []models.Clinic{}
	for _, c := range s.clinics {
		out = append(out, *c)
	}
	return out, nil
}

func monthKey(clinicID, ym string) string { return clinicID + "/" + ym }

func (s *fakeStore) ListMonthlyData(_ context.Context, clinicID, from, to string) ([]models.MonthlyData, error) {
	out := []models.MonthlyData{}
	for _, m := range s.monthly {
		if m.ClinicID != clinicID || (from != "" && m.YearMonth < from) || (to != "" && m.YearMonth > to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].YearMonth < out[j].YearMonth })
	return out, nil
}

func (s *fakeStore) GetMonthlyData(_ context.Context, clinicID, ym string) (*models.MonthlyData, error) {
	m, ok := s.monthly[monthKey(clinicID, ym)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &m, nil
}

func (s *fakeStore) CreateMonthlyData(_ context.Context, row *models.MonthlyData) error {
	if _, ok := s.monthly[monthKey(row.ClinicID, row.YearMonth)]; ok {
		return storage.ErrDuplicateMonth
	}
	row.ID = s.id("md")
	s.monthly[monthKey(row.ClinicID, row.YearMonth)] = *row
	return nil
}

func (s *fakeStore) BulkUpsertMonthlyData(_ context.Context, clinicID string, rows []models.MonthlyData) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	for _, row := range rows {
		row.ClinicID = clinicID
		s.monthly[monthKey(clinicID, row.YearMonth)] = row
	}
	return nil
}

func (s *fakeStore) ListPriceItems(_ context.Context, activeOnly bool) ([]models.PriceItem, error) {
	out := []models.PriceItem{}
	for _, item := range s.priceItems {
		if activeOnly && !item.Active {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *fakeStore) GetPriceItem(_ context.Context, id string) (*models.PriceItem, error) {
	item, ok := s.priceItems[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *fakeStore) BulkInsertPriceItems(_ context.Context, inputs []models.PriceItemInput) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.priceBatch = append(s.priceBatch, inputs...)
	return nil
}

func (s *fakeStore) CreatePrintOrder(_ context.Context, o *models.PrintOrder) error {
	o.ID = s.id("order")
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeStore) GetPrintOrder(_ context.Context, id string) (*models.PrintOrder, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) UpdatePrintOrderStatus(_ context.Context, id, from, to string) (*models.PrintOrder, error) {
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return nil, storage.ErrStatusConflict
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

func (s *fakeStore) CreateReport(_ context.Context, r *models.Report) error {
	r.ID = s.id("report")
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

func (s *fakeStore) GetReport(_ context.Context, id string) (*models.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) CompetitorsInBox(_ context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Competitor, error) {
	out := []models.Competitor{}
	for _, c := range s.competitors {
		if c.Latitude >= minLat && c.Latitude <= maxLat && c.Longitude >= minLng && c.Longitude <= maxLng {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateMarketAnalysis(_ context.Context, a *models.MarketAnalysis) error {
	a.ID = s.id("analysis")
	s.analyses = append(s.analyses, *a)
	return nil
}

func (s *fakeStore) ListStaff(_ context.Context, clinicID string) ([]models.Staff, error) {
	out := []models.Staff{}
	for _, m := range s.staff {
		if m.ClinicID == clinicID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) StaffMonthlyCost(_ context.Context, clinicID string) (int64, error) {
	var total int64
	for _, m := range s.staff {
		if m.ClinicID == clinicID && m.Active {
			total += m.MonthlyCost
		}
	}
	return total, nil
}

type fakeCache struct {
	entries     map[string][]byte
	invalidated []string
}

func (c *fakeCache) key(clinicID string, months int) string { return fmt.Sprintf("%s:%d", clinicID, months) }

func (c *fakeCache) GetDashboard(_ context.Context, clinicID string, months int, dst any) (bool, error) {
	raw, ok := c.entries[c.key(clinicID, months)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetDashboard(_ context.Context, clinicID string, months int, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[c.key(clinicID, months)] = raw
	return nil
}

func (c *fakeCache) InvalidateDashboard(_ context.Context, clinicID string) error {
	c.invalidated = append(c.invalidated, clinicID)
	for k := range c.entries {
		if strings.HasPrefix(k, clinicID+":") {
			delete(c.entries, k)
		}
	}
	return nil
}

type fakePublisher struct {
	events []models.Event
	jobs   []models.ReportJob
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev models.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) PublishReportJob(_ context.Context, job models.ReportJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

type fakeGeocoder struct {
	lat, lng float64
	err      error
	calls    []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (float64, float64, error) {
	g.calls = append(g.calls, address)
	return g.lat, g.lng, g.err
}

type testEnv struct {
	store   *fakeStore
	cache   *fakeCache
	pub     *fakePublisher
	geo     *fakeGeocoder
	objects *services.LocalStore
	live    *hub.Hub
	tokens  *auth.Tokens
	router  chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	objects, err := services.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	e := &testEnv{
		store:   newFakeStore(),
		cache:   &fakeCache{},
		pub:     &fakePublisher{},
		geo:     &fakeGeocoder{lat: 35.681, lng: 139.767},
		objects: objects,
		live:    hub.New(),
		tokens:  tokens,
		router:  chi.NewRouter(),
	}
	t.Cleanup(e.live.Close)
	h := New(Deps{Store: e.store, Cache: e.cache, Publisher: e.pub, Geocoder: e.geo, Objects: objects, Location: jst, Live: e.live})
	h.now = func() time.Time { return time.Date(2024, 4, 25, 10, 0, 0, 0, jst) }

	passthrough := func(next http.Handler) http.Handler { return next }
	h.RegisterRoutes(e.router, auth.NewAuthenticator(tokens, nil), auth.NewHandler(e.store, tokens, nil), passthrough)
	return e
}

func (e *testEnv) do(t *testing.T, req *http.Request, p *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	if p != nil {
		token, _, err := e.tokens.Issue(*p)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRoutePermissions(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		who      *auth.Principal
		method   string
		path     string
		want     int
		redirect string
	}{
		{"anonymous clinic api", nil, http.MethodGet, "/api/dashboard", http.StatusUnauthorized, access.LoginRoute},
		{"anonymous admin api", nil, http.MethodGet, "/api/admin/clinics", http.StatusUnauthorized, access.LoginRoute},
		{"viewer reads dashboard", &viewer, http.MethodGet, "/api/dashboard", http.StatusOK, ""},
		{"viewer cannot write monthly data", &viewer, http.MethodPost, "/api/monthly-data", http.StatusForbidden, access.ClinicHomeRoute},
		{"viewer cannot simulate", &viewer, http.MethodGet, "/api/simulations", http.StatusForbidden, access.ClinicHomeRoute},
		{"editor cannot manage staff", &editor, http.MethodGet, "/api/staff", http.StatusForbidden, access.ClinicHomeRoute},
		{"owner manages staff", &owner, http.MethodGet, "/api/staff", http.StatusOK, ""},
		{"owner is not admin", &owner, http.MethodGet, "/api/admin/clinics", http.StatusForbidden, access.ClinicHomeRoute},
		{"admin lists clinics", &admin, http.MethodGet, "/api/admin/clinics", http.StatusOK, ""},
		{"admin without clinic", &admin, http.MethodGet, "/api/dashboard", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, httptest.NewRequest(tt.method, tt.path, nil), tt.who)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.redirect != "" {
				body := decodeBody(t, rec)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.redirect, body["redirect"])
			}
		})
	}
}

func TestAdminActsOnClinicViaHeader(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/clinic", nil)
	req.Header.Set("X-Clinic-ID", "c2")

	rec := e.do(t, req, &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "みどり歯科", decodeBody(t, rec)["name"])
}

func TestResolveNavigation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/navigation/resolve?path=/clinic/dashboard", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(access.ActionRedirectLogin), decodeBody(t, rec)["action"])

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/navigation/resolve?path=/clinic/staff", nil), &viewer)
	body := decodeBody(t, rec)
	assert.Equal(t, string(access.ActionRedirectDefault), body["action"])
	assert.Equal(t, access.ClinicHomeRoute, body["location"])

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/navigation/resolve", nil), &viewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMenu(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/menu", nil), &viewer)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []access.MenuItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	var paths []string
	for _, item := range body.Items {
		paths = append(paths, item.Path)
	}
	assert.Contains(t, paths, access.ClinicHomeRoute)
	assert.NotContains(t, paths, "/clinic/staff")
	assert.NotContains(t, paths, "/admin/clinics")
}

const monthlyCSV = "年月,保険診療収入,自費診療収入,物販収入,人件費,新患数,再診患者数\n" +
	"2024-03,3000000,2000000,0,1500000,40,360\n" +
	"2024/13,3000000,2000000,0,1500000,40,360\n" +
	"2024/04,3100000,1900000,50000,1500000,35,380\n"

func TestImportMonthlyData(t *testing.T) {
	e := newTestEnv(t)
	e.cache.entries = map[string][]byte{"c1:12": []byte(`{}`)}

	rec := e.do(t, uploadRequest(t, "/api/monthly-data/import-csv", "monthly.csv", []byte(monthlyCSV)), &editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "2行目"), result.Errors[0])

	march := e.store.monthly[monthKey("c1", "2024-03")]
	assert.Equal(t, int64(5000000), march.TotalRevenue)
	assert.Equal(t, 400, march.TotalPatients)
	assert.Contains(t, e.store.monthly, monthKey("c1", "2024-04"))

	assert.Equal(t, []string{"c1"}, e.cache.invalidated)
	assert.Empty(t, e.cache.entries)
	require.Len(t, e.pub.events, 1)
	assert.Equal(t, models.EventMonthlyDataImported, e.pub.events[0].Kind)
	assert.Equal(t, "2", e.pub.events[0].Attr("rows"))
	assert.Equal(t, editor.UserID, e.pub.events[0].ActorID)
}

func TestImportMonthlyData_StorageFailureFailsAllRows(t *testing.T) {
	e := newTestEnv(t)
	e.store.bulkErr = errors.New("connection reset")

	rec := e.do(t, uploadRequest(t, "/api/monthly-data/import-csv", "monthly.csv", []byte(monthlyCSV)), &editor)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 3, result.Failed)
	assert.Contains(t, result.Errors, "データベースへの登録に失敗しました")
	assert.Empty(t, e.pub.events)
}

func TestImportMonthlyData_RejectsUnusableFiles(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, uploadRequest(t, "/api/monthly-data/import-csv", "monthly.csv", []byte("年月,物販収入\n2024-03,0\n")), &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "必須列がありません")

	rec = e.do(t, uploadRequest(t, "/api/monthly-data/import-csv", "monthly.pdf", []byte("x")), &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/monthly-data/import-csv", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = e.do(t, req, &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ファイルを選択してください", decodeBody(t, rec)["error"])
}

func TestExportMonthlyData_ReimportsAsIs(t *testing.T) {
	e := newTestEnv(t)
	e.store.monthly[monthKey("c1", "2024-03")] = models.MonthlyData{
		ClinicID: "c1", YearMonth: "2024-03", InsuranceRevenue: 3000000, SelfPayRevenue: 2000000,
		PersonnelCost: 1500000, NewPatients: 40, ReturningPatients: 360, TreatmentDays: 20,
	}

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/monthly-data/export", nil), &viewer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows("月次データ")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "年月", rows[0][0])
	assert.Equal(t, "営業利益", rows[0][len(rows[0])-1])
	assert.Equal(t, "3500000", rows[1][len(rows[1])-1])
	require.NoError(t, f.Close())

	delete(e.store.monthly, monthKey("c1", "2024-03"))
	rec = e.do(t, uploadRequest(t, "/api/monthly-data/import-csv", "monthly.xlsx", rec.Body.Bytes()), &editor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 20, e.store.monthly[monthKey("c1", "2024-03")].TreatmentDays)
}

func TestCreateMonthlyData(t *testing.T) {
	e := newTestEnv(t)
	row := models.MonthlyData{YearMonth: "2024-03", InsuranceRevenue: 3000000, SelfPayRevenue: 2000000}

	rec := e.do(t, jsonRequest(http.MethodPost, "/api/monthly-data", row), &editor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "5,000,000", body["total_revenue_formatted"])

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/monthly-data", row), &editor)
	assert.Equal(t, http.StatusConflict, rec.Code)

	row.YearMonth = "2024-3"
	row.SelfPayRevenue = -1
	rec = e.do(t, jsonRequest(http.MethodPost, "/api/monthly-data", row), &editor)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decodeBody(t, rec)["errors"], 2)
}

func TestDashboard_UsesCache(t *testing.T) {
	e := newTestEnv(t)
	e.store.monthly[monthKey("c1", "2024-03")] = models.MonthlyData{ClinicID: "c1", YearMonth: "2024-03", InsuranceRevenue: 1000}

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/dashboard?months=6", nil), &viewer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, e.cache.entries, "c1:6")

	delete(e.store.monthly, monthKey("c1", "2024-03"))
	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/dashboard?months=6", nil), &viewer)
	require.Equal(t, http.StatusOK, rec.Code)
	latest, ok := decodeBody(t, rec)["latest"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-03", latest["year_month"])

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/dashboard?months=37", nil), &viewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportPriceTable(t *testing.T) {
	e := newTestEnv(t)
	csv := "商品種類,数量,価格,デザイン料,デザイン料込み,仕様,納期日数\n" +
		"名刺,100,2500,4500,false,,10\n" +
		",100,2500,4500,false,,10\n"

	rec := e.do(t, uploadRequest(t, "/api/admin/price-table/import-csv", "prices.csv", []byte(csv)), &admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "商品種類が空です")

	require.Len(t, e.store.priceBatch, 1)
	assert.Equal(t, models.PriceItemInput{
		ProductType: "名刺", Quantity: 100, Price: 2500, DesignFee: 4500, DeliveryDays: 10,
		Specifications: json.RawMessage("{}"),
	}, e.store.priceBatch[0])
}

func TestImportPriceTable_SanitizesProductType(t *testing.T) {
	e := newTestEnv(t)
	csv := "商品種類,数量,価格,デザイン料,デザイン料込み,仕様,納期日数\n" +
		"<b>名刺</b>,100,2500,4500,false,,10\n" +
		"<script>alert(1)</script>,100,2500,4500,false,,10\n"

	rec := e.do(t, uploadRequest(t, "/api/admin/price-table/import-csv", "prices.csv", []byte(csv)), &admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"2行目: 商品種類が空です"}, result.Errors)

	require.Len(t, e.store.priceBatch, 1)
	assert.Equal(t, "名刺", e.store.priceBatch[0].ProductType)
}

func TestPrintOrderWorkflow(t *testing.T) {
	e := newTestEnv(t)
	e.store.priceItems["p1"] = &models.PriceItem{
		ID: "p1", ProductType: "名刺", Quantity: 100, Price: 2500, DesignFee: 4500, DeliveryDays: 10, Active: true,
	}

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/print-orders/estimate?price_item_id=p1&design=true", nil), &editor)
	require.Equal(t, http.StatusOK, rec.Code)
	var est models.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, int64(7000), est.Total)
	assert.Equal(t, "7,000", est.TotalFormatted)
	assert.Equal(t, "2024-05-05", est.EstimatedDelivery.In(jst).Format("2006-01-02"))

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/print-orders", models.CreatePrintOrderInput{
		PriceItemID: "p1", DesignRequested: true, Notes: "<b>急ぎ</b>",
	}), &editor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order models.PrintOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "急ぎ", order.Notes)
	require.Len(t, e.pub.events, 1)
	assert.Equal(t, models.EventPrintOrderCreated, e.pub.events[0].Kind)
	assert.Equal(t, "7,000", e.pub.events[0].Attr("total"))

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/print-orders/"+order.ID, nil), &other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, httptest.NewRequest(http.MethodPost, "/api/print-orders/"+order.ID+"/cancel", nil), &other)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/admin/print-orders/"+order.ID+"/status", map[string]string{"status": "shipped"}), &admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = e.do(t, jsonRequest(http.MethodPost, "/api/admin/print-orders/"+order.ID+"/status", map[string]string{"status": "accepted"}), &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderAccepted, e.store.orders[order.ID].Status)

	rec = e.do(t, httptest.NewRequest(http.MethodPost, "/api/print-orders/"+order.ID+"/cancel", nil), &editor)
	assert.Equal(t, http.StatusConflict, rec.Code)

	last := e.pub.events[len(e.pub.events)-1]
	assert.Equal(t, models.EventPrintOrderStatus, last.Kind)
	assert.Equal(t, models.OrderPending, last.Attr("from"))
	assert.Equal(t, models.OrderAccepted, last.Attr("status"))
	assert.Equal(t, admin.UserID, last.ActorID)
}

func TestCancelPendingPrintOrder(t *testing.T) {
	e := newTestEnv(t)
	e.store.orders["o1"] = &models.PrintOrder{ID: "o1", ClinicID: "c1", Status: models.OrderPending}

	rec := e.do(t, httptest.NewRequest(http.MethodPost, "/api/print-orders/o1/cancel", nil), &editor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderCancelled, e.store.orders["o1"].Status)
}

func TestCreatePrintOrder_InactiveItem(t *testing.T) {
	e := newTestEnv(t)
	e.store.priceItems["p1"] = &models.PriceItem{ID: "p1", ProductType: "名刺", Active: false}

	rec := e.do(t, jsonRequest(http.MethodPost, "/api/print-orders", models.CreatePrintOrderInput{PriceItemID: "p1"}), &editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = e.do(t, jsonRequest(http.MethodPost, "/api/print-orders", models.CreatePrintOrderInput{PriceItemID: "missing"}), &editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, e.store.orders)
}

func TestCreateMarketAnalysis(t *testing.T) {
	e := newTestEnv(t)
	e.store.competitors = []models.Competitor{
		{ID: "near", Name: "近い歯科", Latitude: 35.6815, Longitude: 139.7675, Chairs: 3},
		{ID: "far", Name: "遠い歯科", Latitude: 35.70, Longitude: 139.80, Chairs: 5},
	}

	rec := e.do(t, jsonRequest(http.MethodPost, "/api/market-analysis", map[string]any{"radius_km": 1}), &editor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got models.MarketAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.CompetitorCount)
	assert.Equal(t, 3, got.TotalChairs)
	assert.Equal(t, "東京都千代田区丸の内1-1", got.Address)
	assert.Equal(t, []string{"東京都千代田区丸の内1-1"}, e.geo.calls)
	require.Len(t, e.store.analyses, 1)
	assert.Equal(t, editor.UserID, e.store.analyses[0].CreatedBy)
}

func TestCreateMarketAnalysis_LocationFailures(t *testing.T) {
	e := newTestEnv(t)

	e.geo.err = services.ErrAddressNotFound
	rec := e.do(t, jsonRequest(http.MethodPost, "/api/market-analysis", map[string]any{"address": "どこか"}), &editor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	e.geo.err = errors.New("dial tcp: timeout")
	rec = e.do(t, jsonRequest(http.MethodPost, "/api/market-analysis", map[string]any{"address": "どこか"}), &editor)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/market-analysis", map[string]any{"radius_km": 51}), &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/market-analysis", map[string]any{}), &other)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, e.store.analyses)
}

func TestCreateReport(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, jsonRequest(http.MethodPost, "/api/reports", models.CreateReportInput{Kind: "monthly", Period: "2024-03"}), &editor)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, models.ReportPending, report.Status)
	require.Len(t, e.pub.jobs, 1)
	assert.Equal(t, report.ID, e.pub.jobs[0].ReportID)
	assert.Equal(t, "c1", e.pub.jobs[0].ClinicID)

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/reports", models.CreateReportInput{Kind: "weekly", Period: "2024-03"}), &editor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadReport(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.objects.Put(context.Background(), "reports/c1/r1.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	e.store.reports["r1"] = &models.Report{ID: "r1", ClinicID: "c1", Status: models.ReportReady, ObjectKey: "reports/c1/r1.pdf"}
	e.store.reports["r2"] = &models.Report{ID: "r2", ClinicID: "c1", Status: models.ReportReady, URL: "https://cdn.example.com/r2.pdf"}
	e.store.reports["r3"] = &models.Report{ID: "r3", ClinicID: "c1", Status: models.ReportGenerating}

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/reports/r1/download", nil), &viewer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/reports/r2/download", nil), &viewer)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://cdn.example.com/r2.pdf", rec.Header().Get("Location"))

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/reports/r3/download", nil), &viewer)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/api/reports/r1", nil), &other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUser(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, jsonRequest(http.MethodPost, "/api/admin/users", map[string]any{
		"email": " Owner@Example.com ", "name": "院長", "password": "correct-horse", "role": "clinic_owner", "clinic_id": "c1",
	}), &admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "owner@example.com", body["email"])
	assert.NotContains(t, body, "password_hash")

	var stored *models.User
	for _, u := range e.store.users {
		stored = u
	}
	require.NotNil(t, stored)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/admin/users", map[string]any{
		"email": "owner@example.com", "name": "別人", "password": "correct-horse", "role": "clinic_owner", "clinic_id": "c1",
	}), &admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/admin/users", map[string]any{
		"email": "editor@example.com", "name": "編集者", "password": "short", "role": "clinic_editor",
	}), &admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decodeBody(t, rec)["errors"], 2)

	rec = e.do(t, jsonRequest(http.MethodPost, "/api/admin/users", map[string]any{
		"email": "root@example.com", "name": "管理者", "password": "correct-horse", "role": "system_admin", "clinic_id": "c1",
	}), &admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListStaff_IncludesMonthlyCost(t *testing.T) {
	e := newTestEnv(t)
	e.store.staff = []models.Staff{
		{ID: "s1", ClinicID: "c1", Name: "歯科医師A", MonthlyCost: 600000, Active: true},
		{ID: "s2", ClinicID: "c1", Name: "衛生士B", MonthlyCost: 300000, Active: false},
		{ID: "s3", ClinicID: "c2", Name: "受付C", MonthlyCost: 200000, Active: true},
	}

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/api/staff", nil), &owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var body staffList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 2)
	assert.Equal(t, int64(600000), body.MonthlyCostTotal)
}

func TestSanitize(t *testing.T) {
	h := New(Deps{})
	assert.Equal(t, "山田 & 佐藤", h.sanitize(" <script>x</script>山田 &amp; <i>佐藤</i> "))
}

func TestLiveEvents(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/live"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _, err := e.tokens.Issue(viewer)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?access_token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return e.live.Count() == 1 }, time.Second, 10*time.Millisecond)

	assert.Zero(t, e.live.Broadcast(models.Event{Kind: models.EventPrintOrderCreated, ClinicID: "c2"}))
	assert.Equal(t, 1, e.live.Broadcast(models.Event{
		Kind:     models.EventPrintOrderStatus,
		ClinicID: "c1",
		Attrs:    map[string]string{"status": "shipped"},
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg hub.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "print_order.status", msg.Kind)
	assert.Equal(t, "shipped", msg.Attrs["status"])
}

func TestLiveEvents_Disabled(t *testing.T) {
	h := New(Deps{Store: newFakeStore()})
	req := httptest.NewRequest(http.MethodGet, "/api/events/live", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), owner))
	rec := httptest.NewRecorder()
	h.LiveEvents(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveEvents_ClinicRoleWithoutClinic(t *testing.T) {
	live := hub.New()
	t.Cleanup(live.Close)
	h := New(Deps{Store: newFakeStore(), Live: live})

	orphan := auth.Principal{UserID: "u-orphan", Role: access.ClinicViewer}
	req := httptest.NewRequest(http.MethodGet, "/api/events/live", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), orphan))
	rec := httptest.NewRecorder()
	h.LiveEvents(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, live.Count())
}
