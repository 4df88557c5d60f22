package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const usage = `cgroupsctl drives Linux cgroups v1 hierarchies directly from the
command line: mount a hierarchy, create and populate cgroups, freeze and
kill the processes inside them, and tear the whole thing down again.`

func main() {
	app := cli.NewApp()
	app.Name = "cgroupsctl"
	app.Usage = usage
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug-level logging",
		},
	}

	app.Commands = []cli.Command{
		mountCommand,
		unmountCommand,
		createCommand,
		removeCommand,
		assignCommand,
		freezeCommand,
		thawCommand,
		killCommand,
		destroyCommand,
		statCommand,
		listenCommand,
	}

	app.Before = func(context *cli.Context) error {
		logrus.SetOutput(os.Stderr)
		if context.GlobalBool("debug") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
