package main

import (
	"time"

	"github.com/urfave/cli"

	"github.com/thelolagemann/dsrtc/internal/nds"
	"github.com/thelolagemann/dsrtc/pkg/log"
	"github.com/thelolagemann/dsrtc/pkg/monitor"
)

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "drive the emulation and broadcast live state over websockets",
	Flags: append(systemFlags,
		cli.StringFlag{
			Name:  "addr",
			Value: ":8090",
			Usage: "address to listen on",
		},
	),
	Action: serveAction,
}

func serveAction(c *cli.Context) error {
	sys, err := newSystem(c)
	if err != nil {
		return err
	}

	mon := monitor.New(sys, log.New())

	go func() {
		ticker := time.NewTicker(time.Second / 64)
		defer ticker.Stop()
		for range ticker.C {
			sys.Run(nds.ClockSpeed / 64)
		}
	}()

	return mon.Listen(c.String("addr"))
}
