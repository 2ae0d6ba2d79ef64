package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/service"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
	"github.com/MrJittiPat/Timetable2/pkg/response"
)

type timetableViewer interface {
	Views(ctx context.Context) (*dto.TimetableViews, error)
	Entity(ctx context.Context, kind dto.TimetableKind, id string) (*dto.EntityTimetable, error)
}

type timetableRenderer interface {
	RenderEntity(ctx context.Context, kind dto.TimetableKind, id, format string) (*service.RenderedFile, error)
}

// TimetableHandler serves the weekly grids derived from the current schedule.
type TimetableHandler struct {
	timetables timetableViewer
	exports    timetableRenderer
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(timetables timetableViewer, exports timetableRenderer) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, exports: exports}
}

// Views godoc
// @Summary All timetable views
// @Description Grids by group, teacher and room plus lookup tables. Runs the engine when the inputs changed.
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Views(c *gin.Context) {
	views, err := h.timetables.Views(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, views.Run.FromCache)
	response.JSON(c, http.StatusOK, views, middleware.ExtractMeta(c))
}

// Entity godoc
// @Summary One weekly grid
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param kind path string true "groups, teachers or rooms"
// @Param id path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{kind}/{id} [get]
func (h *TimetableHandler) Entity(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	entity, err := h.timetables.Entity(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entity)
}

// Export godoc
// @Summary Export one weekly grid
// @Tags Timetable
// @Produce application/pdf
// @Produce text/csv
// @Security BearerAuth
// @Param kind path string true "groups, teachers or rooms"
// @Param id path string true "Entity ID"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{kind}/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var query dto.TimetableExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export parameters"))
		return
	}

	file, err := h.exports.RenderEntity(c.Request.Context(), kind, c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Body)
}

func kindParam(c *gin.Context) (dto.TimetableKind, bool) {
	kind := dto.TimetableKind(c.Param("kind"))
	if !kind.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be one of groups, teachers, rooms"))
		return "", false
	}
	return kind, true
}
