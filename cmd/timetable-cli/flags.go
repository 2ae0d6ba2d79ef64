package main

import (
	"github.com/urfave/cli"

	"github.com/MrJittiPat/Timetable2/internal/scheduler"
)

var (
	dataDir      string
	outputFile   string
	logLevel     string
	breakPeriod  int
	threshold    int
	policyName   string
	exportFormat string
	exportPath   string
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "data-dir, d",
		Usage:       "directory holding the input tables",
		EnvVar:      "SCHEDULER_DATA_DIR",
		Value:       "./data",
		Destination: &dataDir,
	},
	cli.StringFlag{
		Name:        "output, o",
		Usage:       "schedule file to write or check",
		EnvVar:      "SCHEDULER_OUTPUT_FILE",
		Value:       "./output.csv",
		Destination: &outputFile,
	},
	cli.StringFlag{
		Name:        "log-level",
		Usage:       "debug, info, warn or error",
		EnvVar:      "LOG_LEVEL",
		Value:       "info",
		Destination: &logLevel,
	},
}

var breakFlag = cli.IntFlag{
	Name:        "break",
	Usage:       "period number reserved for lunch",
	EnvVar:      "SCHEDULER_BREAK_PERIOD",
	Value:       scheduler.DefaultBreakPeriod,
	Destination: &breakPeriod,
}

var engineFlags = []cli.Flag{
	breakFlag,
	cli.IntFlag{
		Name:        "threshold",
		Usage:       "periods up to this number are filled first",
		EnvVar:      "SCHEDULER_REGULAR_THRESHOLD",
		Value:       scheduler.DefaultRegularThreshold,
		Destination: &threshold,
	},
	cli.StringFlag{
		Name:        "policy",
		Usage:       "teacher choice: first_eligible or fallback",
		EnvVar:      "SCHEDULER_TEACHER_POLICY",
		Value:       string(scheduler.PolicyFirstEligible),
		Destination: &policyName,
	},
}

var exportFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "format, f",
		Usage:       "pdf or csv",
		Value:       "pdf",
		Destination: &exportFormat,
	},
	cli.StringFlag{
		Name:        "file",
		Usage:       "destination file (default: timetable-<kind>-<id>.<format>)",
		Destination: &exportPath,
	},
}
