package controllers

import (
	"cashcontrol/database"
	"cashcontrol/middleware"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testKey     = []byte("test-secret")
	selectFence = regexp.QuoteMeta(`SELECT * FROM "pos_cash_fence" WHERE rowid = $1 AND entity = $2`)
)

func newTestRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(testKey))
	NewCashFenceController(&database.Database{DB: gdb}, nil, "https://pos.example.com").RegisterRoutes(api)
	return router, mock
}

func authorized(t *testing.T, req *http.Request, entity int) *http.Request {
	t.Helper()
	token, err := middleware.GenerateToken(testKey, 3, entity, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateCashFenceHandler(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "pos_cash_fence"`)).
		WillReturnRows(sqlmock.NewRows([]string{"rowid"}).AddRow(int64(11)))
	mock.ExpectCommit()

	body := `{"opening":"100.00","posmodule":"POS1","posnumber":"1"}`
	req := authorized(t, httptest.NewRequest("POST", "/api/cash-fences", strings.NewReader(body)), 1)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(11), resp["id"])
	assert.Equal(t, "11", resp["ref"])
	assert.Equal(t, float64(0), resp["status"])

	link, ok := resp["link"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://pos.example.com/cash-fences/11", link["url"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCashFenceHandlerValidation(t *testing.T) {
	router, mock := newTestRouter(t)

	body := `{"opening":"10","posnumber":"1"}`
	req := authorized(t, httptest.NewRequest("POST", "/api/cash-fences", strings.NewReader(body)), 1)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCashFenceHandlerNotFound(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectQuery(selectFence).
		WithArgs(5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"rowid"}))

	req := authorized(t, httptest.NewRequest("GET", "/api/cash-fences/5", nil), 2)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCashFenceHandlerIDOutOfRange(t *testing.T) {
	router, mock := newTestRouter(t)

	for _, path := range []string{"/api/cash-fences/2147483648", "/api/cash-fences/99999999999999999999"} {
		req := authorized(t, httptest.NewRequest("GET", path, nil), 1)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTotalsHandlerConflict(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "pos_cash_fence" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectFence).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"rowid", "entity", "status"}).AddRow(int64(5), int64(1), int64(2)))
	mock.ExpectRollback()

	body := `{"cash":"10","cheque":"0"}`
	req := authorized(t, httptest.NewRequest("PUT", "/api/cash-fences/5/totals", strings.NewReader(body)), 1)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseCashFenceHandler(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "pos_cash_fence" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectFence).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"rowid", "entity", "day_close", "month_close", "year_close", "status"}).
			AddRow(int64(5), int64(1), int64(15), int64(3), int64(2024), int64(2)))
	mock.ExpectCommit()

	req := authorized(t, httptest.NewRequest("POST", "/api/cash-fences/5/close", nil), 1)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["status"])
	assert.Equal(t, float64(2024), resp["yearClose"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCashFenceHandlersRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cash-fences", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetFieldsHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	req := authorized(t, httptest.NewRequest("GET", "/api/cash-fences/fields?visible=1", nil), 1)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var fields []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fields))
	require.NotEmpty(t, fields)
	for _, f := range fields {
		assert.NotEqual(t, "rowid", f["column"])
	}
}
