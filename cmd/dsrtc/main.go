package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"

	"github.com/thelolagemann/dsrtc/internal/nds"
	"github.com/thelolagemann/dsrtc/internal/types"
	"github.com/thelolagemann/dsrtc/pkg/log"
	"github.com/thelolagemann/dsrtc/pkg/savestate"
)

func main() {
	app := cli.NewApp()
	app.Name = "dsrtc"
	app.Usage = "Nintendo DS real-time clock emulator"
	app.Version = "1.0.0"
	app.Commands = []cli.Command{
		runCommand,
		clockCommand,
		shellCommand,
		driftCommand,
		serveCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// systemFlags are shared by every subcommand that constructs a system.
var systemFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "model",
		Value: "DS",
		Usage: "console model to emulate (DS or DSi)",
	},
	cli.BoolFlag{
		Name:  "no-sync",
		Usage: "don't seed the clock from the host time",
	},
	cli.StringFlag{
		Name:  "state",
		Usage: "load a savestate file on startup",
	},
	cli.BoolFlag{
		Name:  "verbose",
		Usage: "log diagnostics to stdout",
	},
}

func newSystem(c *cli.Context) (*nds.NDS, error) {
	opts := []nds.Opt{
		nds.AsModel(types.StringToModel(c.String("model"))),
	}

	if c.Bool("verbose") {
		opts = append(opts, nds.WithLogger(log.New()))
	}
	if c.Bool("no-sync") {
		opts = append(opts, nds.NoSync())
	}
	if path := c.String("state"); path != "" {
		raw, err := savestate.Read(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nds.WithState(raw))
	}

	return nds.New(opts...), nil
}

var runCommand = cli.Command{
	Name:  "run",
	Usage: "run the clock, printing the date and time once per emulated second",
	Flags: append(systemFlags,
		cli.Uint64Flag{
			Name:  "cycles",
			Usage: "stop after N cycles (0 = run until interrupted)",
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "write a savestate to the given path on exit",
		},
	),
	Action: runAction,
}

func runAction(c *cli.Context) error {
	sys, err := newSystem(c)
	if err != nil {
		return err
	}

	sys.RTC.OnSecond(func() {
		year, month, day, hour, minute, second := sys.RTC.GetDateTime()
		fmt.Printf("%04d-%02d-%02d %02d:%02d:%02d\n", year, month, day, hour, minute, second)
	})

	const step = nds.ClockSpeed / 64

	if limit := c.Uint64("cycles"); limit != 0 {
		// bounded run, no wall-clock pacing
		for sys.Scheduler.Cycle() < limit {
			sys.Run(step)
		}
	} else {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		ticker := time.NewTicker(time.Second / 64)
		defer ticker.Stop()

	emulate:
		for {
			select {
			case <-ticker.C:
				sys.Run(step)
			case <-interrupt:
				break emulate
			}
		}
	}

	if path := c.String("save"); path != "" {
		return sys.SaveStateFile(path)
	}
	return nil
}
