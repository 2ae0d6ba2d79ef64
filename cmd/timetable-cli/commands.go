package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/MrJittiPat/Timetable2/internal/dto"
	"github.com/MrJittiPat/Timetable2/internal/repository"
	"github.com/MrJittiPat/Timetable2/internal/scheduler"
	"github.com/MrJittiPat/Timetable2/internal/service"
	"github.com/MrJittiPat/Timetable2/pkg/config"
	"github.com/MrJittiPat/Timetable2/pkg/logger"
	"github.com/MrJittiPat/Timetable2/pkg/storage"
)

type runConfig struct {
	DataDir string
	Output  string
	Options scheduler.Options
}

func generateAction(c *cli.Context) error {
	cfg, logr, err := commandSetup()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	return generate(context.Background(), afero.NewOsFs(), cfg, logr, os.Stdout)
}

func checkAction(c *cli.Context) error {
	cfg, logr, err := commandSetup()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	violations, err := check(context.Background(), afero.NewOsFs(), cfg, logr, os.Stdout)
	if err != nil {
		return err
	}
	if violations > 0 {
		return cli.NewExitError(fmt.Sprintf("%d violation(s) found", violations), 2)
	}
	return nil
}

func exportAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: timetable export <groups|teachers|rooms> <id>", 1)
	}
	cfg, logr, err := commandSetup()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	path, err := export(context.Background(), afero.NewOsFs(), cfg, logr, dto.TimetableKind(c.Args().Get(0)), c.Args().Get(1), exportFormat, exportPath)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func commandSetup() (runConfig, *zap.Logger, error) {
	policy, err := scheduler.ParsePolicy(policyName)
	if err != nil {
		return runConfig{}, nil, cli.NewExitError(err.Error(), 1)
	}
	logr, err := logger.New(&config.Config{
		Env: config.EnvDevelopment,
		Log: config.LogConfig{Level: logLevel, Format: "console"},
	})
	if err != nil {
		return runConfig{}, nil, err
	}
	return runConfig{
		DataDir: dataDir,
		Output:  outputFile,
		Options: scheduler.Options{BreakPeriod: breakPeriod, RegularThreshold: threshold, TeacherPolicy: policy},
	}, logr, nil
}

func newScheduleService(fs afero.Fs, cfg runConfig, logr *zap.Logger) *service.ScheduleService {
	return service.NewScheduleService(
		repository.NewCatalogRepository(fs, cfg.DataDir, logr),
		repository.NewScheduleRepository(storage.NewFileStore(fs), cfg.Output),
		nil, nil, logr,
		service.ScheduleConfig{Options: cfg.Options},
	)
}

func generate(ctx context.Context, fs afero.Fs, cfg runConfig, logr *zap.Logger, out io.Writer) error {
	schedule, err := newScheduleService(fs, cfg, logr).Run(ctx)
	if err != nil {
		return err
	}

	summary := schedule.Run.Summary
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "registrations\t%d\n", summary.Registrations)
	fmt.Fprintf(w, "complete\t%d\n", summary.Complete)
	fmt.Fprintf(w, "partial\t%d\n", summary.Partial)
	fmt.Fprintf(w, "skipped\t%d\n", summary.Skipped)
	fmt.Fprintf(w, "periods\t%d/%d\n", summary.AssignedPeriods, summary.RequestedPeriods)
	fmt.Fprintf(w, "assignments\t%d\n", summary.AssignmentsTotal)
	if err := w.Flush(); err != nil {
		return err
	}

	if schedule.Run.ExportError != "" {
		return cli.NewExitError("export failed: "+schedule.Run.ExportError, 1)
	}
	fmt.Fprintf(out, "wrote %s\n", schedule.Run.OutputFile)
	return nil
}

func check(ctx context.Context, fs afero.Fs, cfg runConfig, logr *zap.Logger, out io.Writer) (int, error) {
	catalog, err := repository.NewCatalogRepository(fs, cfg.DataDir, logr).Load(ctx)
	if err != nil {
		return 0, err
	}
	assignments, err := repository.NewScheduleRepository(storage.NewFileStore(fs), cfg.Output).Load()
	if err != nil {
		return 0, err
	}

	violations := scheduler.Verify(assignments, scheduler.NewEligibilityIndex(catalog.Eligibilities), catalog.TimeslotsByID(), cfg.Options.BreakPeriod)
	for _, v := range violations {
		fmt.Fprintf(out, "row %d\t%s\t%s\n", v.Index+1, v.Kind, v.Detail)
	}
	fmt.Fprintf(out, "%d assignment(s), %d violation(s)\n", len(assignments), len(violations))
	return len(violations), nil
}

// export recomputes the schedule, which also refreshes the output file, and renders one entity.
func export(ctx context.Context, fs afero.Fs, cfg runConfig, logr *zap.Logger, kind dto.TimetableKind, id, format, dest string) (string, error) {
	schedules := newScheduleService(fs, cfg, logr)
	timetables := service.NewTimetableService(schedules, service.TimetableConfig{})
	exporter := service.NewTimetableExportService(timetables, schedules, nil, logr)

	file, err := exporter.RenderEntity(ctx, kind, id, format)
	if err != nil {
		return "", err
	}
	if dest == "" {
		dest = file.Name
	}
	err = storage.NewFileStore(fs).WriteAtomic(dest, func(w io.Writer) error {
		_, err := w.Write(file.Body)
		return err
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}
