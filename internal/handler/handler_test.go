package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/models"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *apiError              `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type testRequest struct {
	method string
	target string
	body   io.Reader
	json   bool
	params gin.Params
	claims *models.JWTClaims
}

func newTestContext(req testRequest) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(req.method, req.target, req.body)
	if req.json {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Params = req.params
	if req.claims != nil {
		c.Set(middleware.ContextUserKey, req.claims)
	}
	return c, rec
}

func httptestServe(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}
