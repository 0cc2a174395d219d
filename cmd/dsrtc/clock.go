package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"github.com/thelolagemann/dsrtc/internal/nds"
)

var clockCommand = cli.Command{
	Name:   "clock",
	Usage:  "full-screen live clock and register view",
	Flags:  systemFlags,
	Action: clockAction,
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func clockAction(c *cli.Context) error {
	sys, err := newSystem(c)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	// 32 scheduler slices per wall-clock second keeps input latency
	// low without busy-spinning
	ticker := time.NewTicker(time.Second / 32)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			sys.Run(nds.ClockSpeed / 32)
			drawClock(screen, sys)
		}
	}
}

func drawClock(screen tcell.Screen, sys *nds.NDS) {
	screen.Clear()

	year, month, day, hour, minute, second := sys.RTC.GetDateTime()
	regs := sys.RTC.Registers()

	lines := []string{
		fmt.Sprintf("%04d-%02d-%02d (%s)", year, month, day, weekdayNames[regs.DateTime[3]%7]),
		fmt.Sprintf("%02d:%02d:%02d", hour, minute, second),
		"",
		fmt.Sprintf("model    %s", sys.Model()),
		fmt.Sprintf("status1  %02X   status2  %02X", regs.StatusReg1, regs.StatusReg2),
		fmt.Sprintf("minutes  %d", regs.MinuteCount),
		fmt.Sprintf("cycle    %d", sys.Scheduler.Cycle()),
		"",
		"press q to quit",
	}

	for row, line := range lines {
		drawString(screen, 2, row+1, line)
	}

	screen.Show()
}

func drawString(screen tcell.Screen, x, y int, s string) {
	for i, r := range s {
		screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}
