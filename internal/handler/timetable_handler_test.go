package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/service"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
)

type timetableMock struct {
	format string
}

func (m *timetableMock) Views(context.Context) (*dto.TimetableViews, error) {
	return &dto.TimetableViews{
		Run:      dto.RunSummary{RunID: "run-1", FromCache: true},
		Days:     []string{"Mon"},
		Periods:  []int{1},
		GroupIDs: []string{"G1"},
		Groups:   map[string]dto.Grid{"G1": {"Mon": {1: dto.Cell{SubjectID: "S1"}}}},
	}, nil
}

func (m *timetableMock) Entity(_ context.Context, kind dto.TimetableKind, id string) (*dto.EntityTimetable, error) {
	if id != "G1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "not found")
	}
	return &dto.EntityTimetable{Kind: kind, ID: id, Name: "Grade 1/1"}, nil
}

func (m *timetableMock) RenderEntity(_ context.Context, kind dto.TimetableKind, id, format string) (*service.RenderedFile, error) {
	m.format = format
	return &service.RenderedFile{Name: "timetable-group-G1.csv", ContentType: "text/csv", Body: []byte(",1\nMon,S1\n")}, nil
}

func newTimetableRouter(m *timetableMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(m, m)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/timetable", h.Views)
	router.GET("/timetable/:kind/:id", h.Entity)
	router.GET("/timetable/:kind/:id/export", h.Export)
	return router
}

func TestTimetableHandlerViews(t *testing.T) {
	rec := httptestServe(newTimetableRouter(&timetableMock{}), http.MethodGet, "/timetable")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, string(env.Data), `"groupIds":["G1"]`)
	assert.Equal(t, true, env.Meta["cache_hit"])
}

func TestTimetableHandlerEntity(t *testing.T) {
	router := newTimetableRouter(&timetableMock{})

	rec := httptestServe(router, http.MethodGet, "/timetable/groups/G1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"name":"Grade 1/1"`)

	rec = httptestServe(router, http.MethodGet, "/timetable/groups/G404")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptestServe(router, http.MethodGet, "/timetable/students/G1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestTimetableHandlerExport(t *testing.T) {
	m := &timetableMock{}
	router := newTimetableRouter(m)

	rec := httptestServe(router, http.MethodGet, "/timetable/groups/G1/export?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", m.format)
	assert.Equal(t, ",1\nMon,S1\n", rec.Body.String())
	assert.Equal(t, `attachment; filename="timetable-group-G1.csv"`, rec.Header().Get("Content-Disposition"))

	rec = httptestServe(router, http.MethodGet, "/timetable/rooms/R1/export?format=docx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
