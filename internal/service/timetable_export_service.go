package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
	"github.com/MrJittiPat/Timetable2/pkg/export"
	"github.com/MrJittiPat/Timetable2/pkg/storage"
)

// Export formats for entity grids.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

type entityViewer interface {
	Entity(ctx context.Context, kind dto.TimetableKind, id string) (*dto.EntityTimetable, error)
}

type outputOpener interface {
	OpenOutput() (io.ReadCloser, string, error)
	LatestRun() (*dto.RunSummary, error)
}

// RenderedFile is an in-memory export ready to be streamed to a client.
type RenderedFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// TimetableExportService renders entity grids to files and guards raw downloads with signed links.
type TimetableExportService struct {
	timetables entityViewer
	schedules  outputOpener
	signer     *storage.SignedURLSigner
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewTimetableExportService constructs the export service.
func NewTimetableExportService(timetables entityViewer, schedules outputOpener, signer *storage.SignedURLSigner, logger *zap.Logger) *TimetableExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableExportService{
		timetables: timetables,
		schedules:  schedules,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// RenderEntity draws the weekly grid of one entity in the requested format.
func (s *TimetableExportService) RenderEntity(ctx context.Context, kind dto.TimetableKind, id, format string) (*RenderedFile, error) {
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}

	entity, err := s.timetables.Entity(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	grid := EntityGrid(entity)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		body, err = s.csv.RenderGrid(grid)
		contentType = "text/csv"
	default:
		body, err = s.pdf.RenderGrid(grid)
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("timetable render failed", zap.String("kind", string(kind)), zap.String("id", id), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	return &RenderedFile{
		Name:        fmt.Sprintf("timetable-%s-%s.%s", strings.TrimSuffix(string(kind), "s"), fileSafe(id), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// DownloadLink signs a link to the raw output of the latest run.
func (s *TimetableExportService) DownloadLink(baseURL string) (*dto.DownloadLinkResponse, error) {
	run, err := s.schedules.LatestRun()
	if err != nil {
		return nil, err
	}
	if !run.Exported {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule output not found")
	}
	token, expiresAt, err := s.signer.Generate(run.RunID, run.OutputFile)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &dto.DownloadLinkResponse{
		URL:       strings.TrimRight(baseURL, "/") + "/" + token,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// OpenSigned validates a download token and opens the raw output it refers to.
func (s *TimetableExportService) OpenSigned(token string) (io.ReadCloser, string, error) {
	if _, err := s.signer.Parse(token); err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	return s.schedules.OpenOutput()
}

// EntityGrid lays out an entity timetable with days as rows and periods as columns.
// Cell lines name the two other parties of each assignment.
func EntityGrid(entity *dto.EntityTimetable) export.Grid {
	grid := export.Grid{
		Title:   fmt.Sprintf("%s: %s", entityLabel(entity.Kind), entity.Name),
		Rows:    entity.Days,
		Columns: make([]string, len(entity.Periods)),
		Cells:   make([][][]string, len(entity.Days)),
		Shaded:  make(map[int]bool),
	}
	if entity.Advisor != "" {
		grid.Subtitle = "Advisor: " + entity.Advisor
	}
	for c, period := range entity.Periods {
		grid.Columns[c] = strconv.Itoa(period)
		if period == entity.BreakPeriod {
			grid.Shaded[c] = true
		}
	}
	for r, day := range entity.Days {
		grid.Cells[r] = make([][]string, len(entity.Periods))
		for c, period := range entity.Periods {
			cell, ok := entity.Grid[day][period]
			if !ok {
				continue
			}
			grid.Cells[r][c] = cellLines(entity.Kind, cell)
		}
	}
	return grid
}

func cellLines(kind dto.TimetableKind, cell dto.Cell) []string {
	switch kind {
	case dto.KindTeachers:
		return []string{cell.SubjectID, cell.GroupName, cell.RoomName}
	case dto.KindRooms:
		return []string{cell.SubjectID, cell.GroupName, cell.TeacherName}
	default:
		return []string{cell.SubjectID, cell.TeacherName, cell.RoomName}
	}
}

func entityLabel(kind dto.TimetableKind) string {
	switch kind {
	case dto.KindTeachers:
		return "Teacher"
	case dto.KindRooms:
		return "Room"
	default:
		return "Group"
	}
}

func fileSafe(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
