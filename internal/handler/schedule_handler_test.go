package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/service"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
	"github.com/MrJittiPat/Timetable2/pkg/jobs"
)

type scheduleMock struct {
	runs     int
	currents int
	enqueued int
	output   string
	latest   *dto.RunSummary
}

func (m *scheduleMock) Run(context.Context) (*service.Schedule, error) {
	m.runs++
	return &service.Schedule{Run: dto.RunSummary{RunID: "fresh"}}, nil
}

func (m *scheduleMock) Current(context.Context) (*service.Schedule, error) {
	m.currents++
	return &service.Schedule{Run: dto.RunSummary{RunID: "cached", FromCache: true}}, nil
}

func (m *scheduleMock) Enqueue() (string, error) {
	m.enqueued++
	return "job-1", nil
}

func (m *scheduleMock) JobStatus(id string) (jobs.Status, error) {
	if id != "job-1" {
		return jobs.Status{}, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found")
	}
	return jobs.Status{ID: id, Type: service.JobTypeScheduleRun, State: jobs.StateSucceeded}, nil
}

func (m *scheduleMock) LatestRun() (*dto.RunSummary, error) {
	if m.latest == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule has been generated yet")
	}
	return m.latest, nil
}

func (m *scheduleMock) Verify() (*dto.VerifyReport, error) {
	return &dto.VerifyReport{Assignments: 3, Valid: true}, nil
}

func (m *scheduleMock) OpenOutput() (io.ReadCloser, string, error) {
	if m.output == "" {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "schedule output not found")
	}
	return io.NopCloser(strings.NewReader(m.output)), "output.csv", nil
}

type signerMock struct {
	baseURL string
}

func (m *signerMock) DownloadLink(baseURL string) (*dto.DownloadLinkResponse, error) {
	m.baseURL = baseURL
	return &dto.DownloadLinkResponse{URL: baseURL + "/tok", Token: "tok"}, nil
}

func (m *signerMock) OpenSigned(token string) (io.ReadCloser, string, error) {
	if token != "tok" {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	return io.NopCloser(strings.NewReader("group_id\n")), "output.csv", nil
}

func newScheduleHandler(m *scheduleMock) (*ScheduleHandler, *signerMock) {
	signer := &signerMock{}
	return NewScheduleHandler(m, signer, "/api/v1/schedule/files"), signer
}

func TestScheduleHandlerRunModes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := &scheduleMock{}
	h, _ := newScheduleHandler(m)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.POST("/schedule/runs", h.Run)

	cases := []struct {
		target string
		status int
		runID  string
	}{
		{target: "/schedule/runs", status: http.StatusOK, runID: "cached"},
		{target: "/schedule/runs?force=true", status: http.StatusOK, runID: "fresh"},
		{target: "/schedule/runs?async=true", status: http.StatusAccepted},
		{target: "/schedule/runs?async=maybe", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := httptestServe(router, http.MethodPost, tc.target)
			require.Equal(t, tc.status, rec.Code)
			env := decodeEnvelope(t, rec)
			switch {
			case tc.runID != "":
				assert.Contains(t, string(env.Data), `"runId":"`+tc.runID+`"`)
				assert.Equal(t, tc.runID == "cached", env.Meta["cache_hit"])
			case tc.status == http.StatusAccepted:
				assert.JSONEq(t, `{"jobId":"job-1","status":"queued"}`, string(env.Data))
			}
		})
	}

	assert.Equal(t, 1, m.currents)
	assert.Equal(t, 1, m.runs)
	assert.Equal(t, 1, m.enqueued)
}

func TestScheduleHandlerLatestAndJob(t *testing.T) {
	m := &scheduleMock{}
	h, _ := newScheduleHandler(m)

	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/schedule/runs/latest"})
	h.Latest(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	m.latest = &dto.RunSummary{RunID: "run-1"}
	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/runs/latest"})
	h.Latest(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"runId":"run-1"`)

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/jobs/job-1", params: gin.Params{{Key: "id", Value: "job-1"}}})
	h.Job(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"state":"succeeded"`)

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/jobs/x", params: gin.Params{{Key: "id", Value: "x"}}})
	h.Job(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/verify"})
	h.Verify(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"valid":true`)
}

func TestScheduleHandlerDownload(t *testing.T) {
	m := &scheduleMock{}
	h, _ := newScheduleHandler(m)

	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/schedule/download"})
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	m.output = "group_id,timeslot_id,subject_id,teacher_id,room_id\n"
	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/download"})
	h.Download(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, m.output, rec.Body.String())
	assert.Equal(t, `attachment; filename="output.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestScheduleHandlerSignedDownloads(t *testing.T) {
	h, signer := newScheduleHandler(&scheduleMock{})

	c, rec := newTestContext(testRequest{method: http.MethodPost, target: "http://timetable.local/api/v1/schedule/download-link"})
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	h.DownloadLink(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://timetable.local/api/v1/schedule/files", signer.baseURL)

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/files/tok", params: gin.Params{{Key: "token", Value: "tok"}}})
	h.File(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "group_id\n", rec.Body.String())

	c, rec = newTestContext(testRequest{method: http.MethodGet, target: "/schedule/files/bad", params: gin.Params{{Key: "token", Value: "bad"}}})
	h.File(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
