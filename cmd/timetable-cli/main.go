package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "timetable"
	app.Usage = "allocate class timetables from CSV tables"
	app.Version = "1.0.0"
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:   "generate",
			Usage:  "run the allocation engine and write the schedule file",
			Flags:  engineFlags,
			Action: generateAction,
		},
		{
			Name:   "check",
			Usage:  "verify an existing schedule file against the input tables",
			Flags:  []cli.Flag{breakFlag},
			Action: checkAction,
		},
		{
			Name:      "export",
			Usage:     "render the weekly grid of one group, teacher or room",
			ArgsUsage: "<groups|teachers|rooms> <id>",
			Flags:     append(append([]cli.Flag{}, engineFlags...), exportFlags...),
			Action:    exportAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
