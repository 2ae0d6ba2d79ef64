package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/service"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
	"github.com/MrJittiPat/Timetable2/pkg/jobs"
	"github.com/MrJittiPat/Timetable2/pkg/response"
)

type scheduleRunner interface {
	Run(ctx context.Context) (*service.Schedule, error)
	Current(ctx context.Context) (*service.Schedule, error)
	Enqueue() (string, error)
	JobStatus(id string) (jobs.Status, error)
	LatestRun() (*dto.RunSummary, error)
	Verify() (*dto.VerifyReport, error)
	OpenOutput() (io.ReadCloser, string, error)
}

type downloadSigner interface {
	DownloadLink(baseURL string) (*dto.DownloadLinkResponse, error)
	OpenSigned(token string) (io.ReadCloser, string, error)
}

// ScheduleHandler exposes allocation runs and the exported schedule file.
type ScheduleHandler struct {
	schedules scheduleRunner
	downloads downloadSigner
	filesPath string
}

// NewScheduleHandler constructs the handler. filesPath is the public route prefix of signed downloads.
func NewScheduleHandler(schedules scheduleRunner, downloads downloadSigner, filesPath string) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, downloads: downloads, filesPath: filesPath}
}

// Run godoc
// @Summary Run the allocation engine
// @Description Runs synchronously and returns the run summary. With async=true the run is queued and a job id returned.
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param async query bool false "Queue the run in the background"
// @Param force query bool false "Recompute even when the inputs are unchanged"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/runs [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	var req dto.RunScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run parameters"))
		return
	}

	if req.Async {
		id, err := h.schedules.Enqueue()
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, dto.RunAcceptedResponse{JobID: id, Status: string(jobs.StateQueued)})
		return
	}

	var (
		schedule *service.Schedule
		err      error
	)
	if req.Force {
		schedule, err = h.schedules.Run(c.Request.Context())
	} else {
		schedule, err = h.schedules.Current(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, schedule.Run.FromCache)
	response.JSON(c, http.StatusOK, schedule.Run, middleware.ExtractMeta(c))
}

// Latest godoc
// @Summary Latest run summary
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/runs/latest [get]
func (h *ScheduleHandler) Latest(c *gin.Context) {
	run, err := h.schedules.LatestRun()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}

// Job godoc
// @Summary Background run status
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/jobs/{id} [get]
func (h *ScheduleHandler) Job(c *gin.Context) {
	status, err := h.schedules.JobStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Verify godoc
// @Summary Check the latest schedule for conflicts
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/verify [get]
func (h *ScheduleHandler) Verify(c *gin.Context) {
	report, err := h.schedules.Verify()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Download godoc
// @Summary Download the exported schedule
// @Tags Schedule
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /schedule/download [get]
func (h *ScheduleHandler) Download(c *gin.Context) {
	h.stream(c, h.schedules.OpenOutput)
}

// DownloadLink godoc
// @Summary Issue a signed download link
// @Description The link serves the exported schedule without a bearer token until it expires.
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/download-link [post]
func (h *ScheduleHandler) DownloadLink(c *gin.Context) {
	link, err := h.downloads.DownloadLink(baseURL(c) + h.filesPath)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link)
}

// File godoc
// @Summary Download through a signed link
// @Tags Schedule
// @Produce text/csv
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/files/{token} [get]
func (h *ScheduleHandler) File(c *gin.Context) {
	token := c.Param("token")
	h.stream(c, func() (io.ReadCloser, string, error) {
		return h.downloads.OpenSigned(token)
	})
}

func (h *ScheduleHandler) stream(c *gin.Context, open func() (io.ReadCloser, string, error)) {
	reader, name, err := open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read schedule output"))
		return
	}
	response.Attachment(c, name, "text/csv; charset=utf-8", body)
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
