package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWithMeta(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, gin.H{"id": 1}, map[string]interface{}{"cache_hit": true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"id":1},"meta":{"cache_hit":true}}`, rec.Body.String())
}

func TestErrorNormalisesUnknownErrors(t *testing.T) {
	c, rec := newContext()
	Error(c, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var env struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, appErrors.ErrInternal.Code, env.Error.Code)
	assert.Len(t, c.Errors, 1)

	c, rec = newContext()
	Error(c, appErrors.Clone(appErrors.ErrNotFound, "schedule output not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, c.Errors)
}

func TestAcceptedAndAttachment(t *testing.T) {
	c, rec := newContext()
	Accepted(c, gin.H{"jobId": "j1"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	c, rec = newContext()
	Attachment(c, "output.csv", "text/csv", []byte("a,b\n"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="output.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
