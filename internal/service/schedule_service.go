package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/models"
	"github.com/MrJittiPat/Timetable2/internal/repository"
	"github.com/MrJittiPat/Timetable2/internal/scheduler"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
	"github.com/MrJittiPat/Timetable2/pkg/jobs"
)

// JobTypeScheduleRun identifies background allocation runs.
const JobTypeScheduleRun = "schedule.run"

type catalogSource interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Fingerprint(ctx context.Context) (string, error)
}

type scheduleOutput interface {
	Save(assignments []models.Assignment) error
	Exists() bool
	Open() (io.ReadCloser, error)
	Name() string
	Path() string
}

// ScheduleConfig tunes the schedule service.
type ScheduleConfig struct {
	Options  scheduler.Options
	CacheTTL time.Duration
}

// Schedule is a computed timetable together with the inputs it was computed from.
type Schedule struct {
	Run         dto.RunSummary
	Assignments []models.Assignment
	Catalog     *models.Catalog
}

// Snapshot returns the cacheable part of the schedule.
func (s *Schedule) Snapshot() dto.ScheduleSnapshot {
	return dto.ScheduleSnapshot{Summary: s.Run, Assignments: s.Assignments}
}

// ScheduleService orchestrates allocation runs: load inputs, allocate, export, cache.
type ScheduleService struct {
	catalogs catalogSource
	output   scheduleOutput
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	engine   *scheduler.Engine
	cfg      ScheduleConfig
	queue    *jobs.Queue
	now      func() time.Time

	// runMu serializes runs so the output file has a single writer.
	runMu sync.Mutex

	mu     sync.RWMutex
	latest *Schedule
}

// NewScheduleService constructs the service. cache and metrics may be nil.
func NewScheduleService(catalogs catalogSource, output scheduleOutput, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ScheduleConfig) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{
		catalogs: catalogs,
		output:   output,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		engine:   scheduler.NewEngine(cfg.Options),
		cfg:      cfg,
		now:      time.Now,
	}
	svc.queue = jobs.NewQueue("schedule", svc.handleJob, jobs.QueueConfig{Workers: 1, BufferSize: 4, Logger: logger})
	return svc
}

// Options returns the effective engine options.
func (s *ScheduleService) Options() scheduler.Options {
	return s.engine.Options()
}

// Start launches the background worker used by Enqueue.
func (s *ScheduleService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for the background worker to exit.
func (s *ScheduleService) Stop() {
	s.queue.Stop()
}

// Run recomputes the schedule from the current inputs, ignoring any cached result.
func (s *ScheduleService) Run(ctx context.Context) (*Schedule, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// Current returns the schedule for the current inputs. When caching is enabled and the
// inputs are unchanged since a previous run, that run is reused. Otherwise it runs.
func (s *ScheduleService) Current(ctx context.Context) (*Schedule, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.cache.Enabled() {
		return s.run(ctx)
	}

	fingerprint, err := s.catalogs.Fingerprint(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read schedule inputs")
	}

	if schedule := s.Latest(); schedule != nil && schedule.Run.Fingerprint == fingerprint {
		s.metrics.RecordCacheOperation(true, 0)
		return s.reuse(ctx, schedule), nil
	}

	var snapshot dto.ScheduleSnapshot
	if s.cache.Get(ctx, repository.ScheduleKey(fingerprint), &snapshot) {
		catalog, err := s.catalogs.Load(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule inputs")
		}
		if catalog.Fingerprint == fingerprint {
			schedule := &Schedule{Run: snapshot.Summary, Assignments: snapshot.Assignments, Catalog: catalog}
			s.setLatest(schedule)
			return s.reuse(ctx, schedule), nil
		}
	}

	return s.run(ctx)
}

// Enqueue schedules a background run and returns the job id.
func (s *ScheduleService) Enqueue() (string, error) {
	id, err := s.queue.Enqueue(jobs.Job{Type: JobTypeScheduleRun})
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			return "", appErrors.Clone(appErrors.ErrConflict, "a schedule run is already queued")
		}
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "schedule worker unavailable")
	}
	return id, nil
}

// JobStatus reports the state of a background run.
func (s *ScheduleService) JobStatus(id string) (jobs.Status, error) {
	status, err := s.queue.Status(id)
	if err != nil {
		return jobs.Status{}, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found")
	}
	return status, nil
}

// Latest returns the most recent schedule held in memory, or nil.
func (s *ScheduleService) Latest() *Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// LatestRun returns the summary of the most recent run.
func (s *ScheduleService) LatestRun() (*dto.RunSummary, error) {
	schedule := s.Latest()
	if schedule == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule has been generated yet")
	}
	run := schedule.Run
	return &run, nil
}

// Verify checks the latest schedule against the timetable invariants.
func (s *ScheduleService) Verify() (*dto.VerifyReport, error) {
	schedule := s.Latest()
	if schedule == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule has been generated yet")
	}
	violations := scheduler.Verify(
		schedule.Assignments,
		scheduler.NewEligibilityIndex(schedule.Catalog.Eligibilities),
		schedule.Catalog.TimeslotsByID(),
		schedule.Run.Options.BreakPeriod,
	)
	if violations == nil {
		violations = []scheduler.Violation{}
	}
	return &dto.VerifyReport{Assignments: len(schedule.Assignments), Violations: violations, Valid: len(violations) == 0}, nil
}

// OpenOutput opens the exported schedule file. A missing file is reported as not found.
func (s *ScheduleService) OpenOutput() (io.ReadCloser, string, error) {
	reader, err := s.output.Open()
	if err != nil {
		if errors.Is(err, repository.ErrOutputMissing) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "schedule output not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open schedule output")
	}
	return reader, s.output.Name(), nil
}

func (s *ScheduleService) run(ctx context.Context) (*Schedule, error) {
	start := s.now()
	catalog, err := s.catalogs.Load(ctx)
	if err != nil {
		s.metrics.CountRun(RunOutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule inputs")
	}

	result := s.engine.Allocate(catalog)
	opts := s.engine.Options()
	run := dto.RunSummary{
		RunID:       uuid.NewString(),
		Fingerprint: catalog.Fingerprint,
		Options: dto.RunOptions{
			BreakPeriod:      opts.BreakPeriod,
			RegularThreshold: opts.RegularThreshold,
			TeacherPolicy:    opts.TeacherPolicy,
		},
		Summary:       result.Summary(),
		Registrations: result.Registrations,
		OutputFile:    s.output.Path(),
		GeneratedAt:   start.UTC(),
	}

	outcome := RunOutcomeSuccess
	if err := s.output.Save(result.Assignments); err != nil {
		outcome = RunOutcomeExportFailed
		run.ExportError = err.Error()
		s.logger.Error("schedule export failed", zap.String("run_id", run.RunID), zap.String("file", s.output.Path()), zap.Error(err))
	} else {
		run.Exported = true
	}

	duration := s.now().Sub(start)
	run.DurationMs = duration.Milliseconds()
	s.logRun(run, result)
	s.metrics.ObserveRun(outcome, duration, run.Summary)

	schedule := &Schedule{Run: run, Assignments: result.Assignments, Catalog: catalog}
	s.setLatest(schedule)
	if run.Exported {
		s.cache.Set(ctx, repository.ScheduleKey(run.Fingerprint), schedule.Snapshot(), s.cfg.CacheTTL)
	}
	return schedule, nil
}

// reuse returns a copy of a cached schedule marked as such. The output file is
// rewritten when the run was never exported or the file has gone missing since.
func (s *ScheduleService) reuse(ctx context.Context, schedule *Schedule) *Schedule {
	s.metrics.CountRun(RunOutcomeCached)
	if !schedule.Run.Exported || !s.output.Exists() {
		if err := s.output.Save(schedule.Assignments); err != nil {
			s.logger.Error("schedule re-export failed", zap.String("run_id", schedule.Run.RunID), zap.Error(err))
		} else {
			s.logger.Info("schedule output restored from cache", zap.String("run_id", schedule.Run.RunID))
			if !schedule.Run.Exported {
				exported := *schedule
				exported.Run.Exported = true
				exported.Run.ExportError = ""
				schedule = &exported
				s.setLatest(schedule)
				s.cache.Set(ctx, repository.ScheduleKey(schedule.Run.Fingerprint), schedule.Snapshot(), s.cfg.CacheTTL)
			}
		}
	}
	reused := *schedule
	reused.Run.FromCache = true
	return &reused
}

func (s *ScheduleService) setLatest(schedule *Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = schedule
}

func (s *ScheduleService) handleJob(ctx context.Context, job jobs.Job) error {
	schedule, err := s.Run(ctx)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
	if schedule.Run.ExportError != "" {
		return fmt.Errorf("job %s: export failed: %s", job.ID, schedule.Run.ExportError)
	}
	return nil
}

func (s *ScheduleService) logRun(run dto.RunSummary, result *scheduler.Result) {
	for _, reg := range result.Registrations {
		switch reg.Outcome {
		case scheduler.OutcomeUnknownSubject:
			s.logger.Warn("registration skipped: unknown subject", zap.String("group_id", reg.GroupID), zap.String("subject_id", reg.SubjectID))
		case scheduler.OutcomeNoTeacher:
			s.logger.Warn("registration skipped: no eligible teacher", zap.String("group_id", reg.GroupID), zap.String("subject_id", reg.SubjectID))
		case scheduler.OutcomePartial:
			s.logger.Debug("registration partially scheduled",
				zap.String("group_id", reg.GroupID),
				zap.String("subject_id", reg.SubjectID),
				zap.Int("requested", reg.Requested),
				zap.Int("assigned", reg.Assigned),
			)
		}
	}

	s.logger.Info("schedule run completed",
		zap.String("run_id", run.RunID),
		zap.String("fingerprint", run.Fingerprint),
		zap.Int("registrations", run.Summary.Registrations),
		zap.Int("complete", run.Summary.Complete),
		zap.Int("partial", run.Summary.Partial),
		zap.Int("skipped", run.Summary.Skipped),
		zap.Int("assignments", run.Summary.AssignmentsTotal),
		zap.Bool("exported", run.Exported),
		zap.Int64("duration_ms", run.DurationMs),
	)
}
