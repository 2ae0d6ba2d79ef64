package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJittiPat/Timetable2/internal/service"
)

func TestMetricsHandlerPrometheusAndSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/timetable", http.StatusOK, 10*time.Millisecond)
	h := NewMetricsHandler(metrics, nil, nil)

	router := gin.New()
	router.GET("/metrics", h.Prometheus)
	router.GET("/metrics/summary", h.Summary)
	router.GET("/health", h.Health)

	rec := httptestServe(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))

	rec = httptestServe(router, http.MethodGet, "/metrics/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"requestsTotal":1`)

	rec = httptestServe(router, http.MethodGet, "/health")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	h := NewMetricsHandler(nil, sqlx.NewDb(db, "sqlmock"), nil)

	router := gin.New()
	router.GET("/ready", h.Ready)

	mock.ExpectPing()
	rec := httptestServe(router, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"database":"ok"}}`, rec.Body.String())

	mock.ExpectPing().WillReturnError(errors.New("database is locked"))
	rec = httptestServe(router, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"database is locked"}}`, rec.Body.String())

	require.NoError(t, mock.ExpectationsWereMet())
}
