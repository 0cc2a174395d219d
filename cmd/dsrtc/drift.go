package main

import (
	"fmt"

	"github.com/urfave/cli"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/thelolagemann/dsrtc/internal/rtc"
	"github.com/thelolagemann/dsrtc/internal/scheduler"
)

var driftCommand = cli.Command{
	Name:  "drift",
	Usage: "measure the long-run accuracy of the RTC timer",
	Flags: []cli.Flag{
		cli.Uint64Flag{
			Name:  "firings",
			Value: 10000000,
			Usage: "number of timer firings to simulate",
		},
		cli.StringFlag{
			Name:  "plot",
			Usage: "write a cumulative drift chart to the given PNG",
		},
	},
	Action: driftAction,
}

func driftAction(c *cli.Context) error {
	sched := scheduler.NewScheduler()
	rtc.New(sched)

	n := c.Uint64("firings")
	ideal := float64(rtc.SystemClockHz) / float64(rtc.QuartzHz)

	sample := n / 1000
	if sample == 0 {
		sample = 1
	}

	var pts plotter.XYs
	for i := uint64(1); i <= n; i++ {
		sched.Skip()

		if c.IsSet("plot") && i%sample == 0 {
			pts = append(pts, plotter.XY{
				X: float64(i),
				Y: float64(sched.Cycle()) - ideal*float64(i),
			})
		}
	}

	avg := float64(sched.Cycle()) / float64(n)
	fmt.Printf("firings:  %d\n", n)
	fmt.Printf("cycles:   %d\n", sched.Cycle())
	fmt.Printf("average:  %.6f cycles/firing\n", avg)
	fmt.Printf("ideal:    %.6f cycles/firing\n", ideal)
	fmt.Printf("drift:    %+.3e relative\n", avg/ideal-1)

	if path := c.String("plot"); path != "" {
		return writeDriftPlot(path, pts)
	}
	return nil
}

func writeDriftPlot(path string, pts plotter.XYs) error {
	p := plot.New()
	p.Title.Text = "Cumulative timer drift"
	p.X.Label.Text = "firings"
	p.Y.Label.Text = "cycles ahead of ideal"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
