package dto

import (
	"time"

	"github.com/MrJittiPat/Timetable2/internal/models"
	"github.com/MrJittiPat/Timetable2/internal/scheduler"
)

// RunOptions echoes the engine settings a run used.
type RunOptions struct {
	BreakPeriod      int                     `json:"breakPeriod"`
	RegularThreshold int                     `json:"regularThreshold"`
	TeacherPolicy    scheduler.TeacherPolicy `json:"teacherPolicy"`
}

// RunSummary describes one completed allocation run.
type RunSummary struct {
	RunID         string                         `json:"runId"`
	Fingerprint   string                         `json:"fingerprint"`
	Options       RunOptions                     `json:"options"`
	Summary       scheduler.Summary              `json:"summary"`
	Registrations []scheduler.RegistrationResult `json:"registrations,omitempty"`
	OutputFile    string                         `json:"outputFile"`
	Exported      bool                           `json:"exported"`
	ExportError   string                         `json:"exportError,omitempty"`
	DurationMs    int64                          `json:"durationMs"`
	GeneratedAt   time.Time                      `json:"generatedAt"`
	FromCache     bool                           `json:"fromCache"`
}

// ScheduleSnapshot is a run summary together with the assignments it produced.
// It is the unit stored in the schedule cache.
type ScheduleSnapshot struct {
	Summary     RunSummary          `json:"summary"`
	Assignments []models.Assignment `json:"assignments"`
}

// RunScheduleRequest is the query of POST /schedule/runs.
type RunScheduleRequest struct {
	Async bool `form:"async"`
	// Force skips the fingerprint cache.
	Force bool `form:"force"`
}

// RunAcceptedResponse is returned when a run is queued.
type RunAcceptedResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// DownloadLinkResponse carries a signed link to the raw schedule file.
type DownloadLinkResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyReport lists invariant violations found in an assignment sequence.
type VerifyReport struct {
	Assignments int                   `json:"assignments"`
	Violations  []scheduler.Violation `json:"violations"`
	Valid       bool                  `json:"valid"`
}
