package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/foxxorcat/wazero-clampclock/clamp"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "clampclock"
	app.Usage = "coarse, jittered clocks for timing side-channel experiments and wasm guests"
	app.Flags = []cli.Flag{
		cli.Float64Flag{
			Name:   "resolution",
			Usage:  "clock resolution in seconds",
			Value:  clamp.DefaultResolution,
			EnvVar: "CLAMPCLOCK_RESOLUTION",
		},
		cli.BoolTFlag{
			Name:   "jitter",
			Usage:  "randomize rounding at resolution boundaries",
			EnvVar: "CLAMPCLOCK_JITTER",
		},
		cli.StringFlag{
			Name:   "config",
			Usage:  "yaml policy file",
			EnvVar: "CLAMPCLOCK_CONFIG",
		},
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "enable debug logging",
			EnvVar: "CLAMPCLOCK_DEBUG",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("debug") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "now",
			Usage:  "print clamped realtime readings",
			Action: nowAction,
			Flags: []cli.Flag{
				cli.IntFlag{Name: "count, n", Value: 1, Usage: "number of readings"},
			},
		},
		{
			Name:   "trace",
			Usage:  "record a counter trace against the clamped clock and print it as json",
			Action: traceAction,
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "length", Value: time.Second, Usage: "trace length, one slot per millisecond"},
				cli.DurationFlag{Name: "period", Value: 5 * time.Millisecond, Usage: "counting period of each sample"},
			},
		},
		{
			Name:      "run",
			Usage:     "run a WASI module with clamped clocks",
			ArgsUsage: "<module.wasm> [args...]",
			Action:    runAction,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name", Value: "guest", Usage: "guest module name used to look up its policy"},
				cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics on this address while the guest runs"},
			},
		},
	}
	return app
}
