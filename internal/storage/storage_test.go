package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentalboard-backend/internal/models"
)

func newMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStorage(sqlx.NewDb(db, "postgres")), mock
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE lower(email) = lower($1)")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserByID(t *testing.T) {
	s, mock := newMock(t)
	clinic := "c1"
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "email", "name", "role", "password_hash", "active", "created_at", "last_login_at"}).
			AddRow("u1", clinic, "owner@example.com", "院長", "clinic_owner", "hash", true, now, nil))

	user, err := s.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, user.ClinicID)
	assert.Equal(t, "c1", *user.ClinicID)
	assert.Equal(t, "clinic_owner", user.Role)
	assert.Nil(t, user.LastLoginAt)
}

func TestCreateUser_EmailTaken(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.CreateUser(context.Background(), &models.User{Email: "dup@example.com", Role: "system_admin"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestListUsers_AllClinicsWhenEmpty(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE ($1::uuid IS NULL")).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("u1", "a@example.com"))

	users, err := s.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBulkUpsertMonthlyData_SingleTransaction(t *testing.T) {
	s, mock := newMock(t)

	args := make([]driver.Value, 40)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[1], args[2], args[3] = "clinic-1", "2024-04", int64(999)
	args[21], args[22], args[23] = "clinic-1", "2024-05", int64(200)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_data")).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := s.BulkUpsertMonthlyData(context.Background(), "clinic-1", []models.MonthlyData{
		{YearMonth: "2024-04", InsuranceRevenue: 100},
		{YearMonth: "2024-05", InsuranceRevenue: 200},
		{YearMonth: "2024-04", InsuranceRevenue: 999},
	})
	require.NoError(t, err)
}

func TestBulkUpsertMonthlyData_RollsBackOnError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_data")).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.BulkUpsertMonthlyData(context.Background(), "clinic-1", []models.MonthlyData{{YearMonth: "2024-04"}})
	assert.EqualError(t, err, "boom")
}

func TestBulkUpsertMonthlyData_Empty(t *testing.T) {
	s, _ := newMock(t)
	assert.NoError(t, s.BulkUpsertMonthlyData(context.Background(), "clinic-1", nil))
}

func TestBulkInsertPriceItems(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO price_items")).
		WithArgs(sqlmock.AnyArg(), "名刺", 100, int64(2500), int64(4500), false, []byte("{}"), 10, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.BulkInsertPriceItems(context.Background(), []models.PriceItemInput{{
		ProductType: "名刺", Quantity: 100, Price: 2500, DesignFee: 4500, DeliveryDays: 10,
	}})
	require.NoError(t, err)
}

func TestBulkInsertPriceItems_RollsBack(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO price_items")).WillReturnError(&pq.Error{Code: "23514"})
	mock.ExpectRollback()

	err := s.BulkInsertPriceItems(context.Background(), []models.PriceItemInput{{ProductType: "a"}, {ProductType: "b"}})
	assert.Error(t, err)
}

func TestUpdatePrintOrderStatus_Conflict(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE print_orders SET status = $1")).
		WithArgs(models.OrderCancelled, "o1", models.OrderPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.UpdatePrintOrderStatus(context.Background(), "o1", models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestDeleteStaff_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM staff")).
		WithArgs("c1", "s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteStaff(context.Background(), "c1", "s1"), ErrNotFound)
}

func TestDeletePriceItem_DeactivatesWhenReferenced(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM price_items")).
		WithArgs("p1").
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectExec(regexp.QuoteMeta("UPDATE price_items SET active = FALSE")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.DeletePriceItem(context.Background(), "p1"))
}

func TestClaimReport(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET status = $1")).
		WithArgs(models.ReportGenerating, "r1", models.ReportPending, models.ReportGenerating).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET status = $1")).
		WithArgs(models.ReportGenerating, "r2", models.ReportPending, models.ReportGenerating).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.ClaimReport(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ClaimReport(context.Background(), "r2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMarketAnalysis_DecodesCompetitors(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM market_analyses WHERE clinic_id = $1 AND id = $2")).
		WithArgs("c1", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "competitors"}).
			AddRow("a1", "c1", []byte(`[{"id":"x","name":"駅前歯科","distance_km":0.4}]`)))

	a, err := s.GetMarketAnalysis(context.Background(), "c1", "a1")
	require.NoError(t, err)
	require.Len(t, a.Competitors, 1)
	assert.Equal(t, "駅前歯科", a.Competitors[0].Name)
	assert.InDelta(t, 0.4, a.Competitors[0].DistanceKM, 1e-9)
}

func TestClinicsMissingMonth(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("NOT EXISTS (SELECT 1 FROM monthly_data")).
		WithArgs("2024-03").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).AddRow("c1", "さくら歯科", true))

	clinics, err := s.ClinicsMissingMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.Equal(t, "さくら歯科", clinics[0].Name)
}
