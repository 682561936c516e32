package main

import (
	"cashcontrol/config"
	"cashcontrol/database"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	return newServer(cfg, &database.Database{DB: gdb}, nil), mock
}

func TestHealthHandler(t *testing.T) {
	engine, mock := newTestServer(t)
	mock.ExpectPing()

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("handler returned unexpected body: %v", rr.Body.String())
	}
}

func TestHealthHandlerDatabaseDown(t *testing.T) {
	engine, mock := newTestServer(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if status := rr.Code; status != http.StatusServiceUnavailable {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusServiceUnavailable)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	engine, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/api/cash-fences", nil))

	if status := rr.Code; status != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine, _ := newTestServer(t)
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/cash-fences", nil))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "cashcontrol_http_requests_total") {
		t.Error("metrics output does not contain request counter")
	}
	if !strings.Contains(rr.Body.String(), `endpoint="/api/cash-fences"`) {
		t.Error("API requests must be counted under the mux route template")
	}
	if strings.Contains(rr.Body.String(), `endpoint="/api/*path"`) {
		t.Error("API requests counted under the catch-all gin route")
	}
}
