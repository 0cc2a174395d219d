// Package nds wires the RTC chip, the cycle scheduler and the IO bus
// into a runnable system.
package nds

import (
	"fmt"
	"time"

	"github.com/thelolagemann/dsrtc/internal/io"
	"github.com/thelolagemann/dsrtc/internal/rtc"
	"github.com/thelolagemann/dsrtc/internal/scheduler"
	"github.com/thelolagemann/dsrtc/internal/types"
	"github.com/thelolagemann/dsrtc/pkg/log"
	"github.com/thelolagemann/dsrtc/pkg/savestate"
)

// ClockSpeed is the emulated ARM7 bus clock in Hz.
const ClockSpeed = rtc.SystemClockHz

// NDS represents one emulated system: a scheduler driving the RTC,
// mounted on the IO bus.
type NDS struct {
	RTC       *rtc.RTC
	Scheduler *scheduler.Scheduler
	Bus       *io.Bus

	model types.Model

	log.Logger

	loadedFromState bool
	noSync          bool
}

// New constructs a system. Unless a saved state was loaded or NoSync
// was given, the calendar is seeded from the host clock; the chip
// itself never reads the wall clock.
func New(opts ...Opt) *NDS {
	sched := scheduler.NewScheduler()

	n := &NDS{
		Scheduler: sched,
		RTC:       rtc.New(sched),
		Logger:    log.NewNullLogger(),
		model:     types.DS,
	}
	n.Bus = io.NewBus(n.RTC, n.Logger)

	for _, opt := range opts {
		opt(n)
	}

	n.RTC.SetModel(n.model)
	n.RTC.Logger = n.Logger
	n.Bus.Logger = n.Logger

	if !n.loadedFromState && !n.noSync {
		now := time.Now()
		n.RTC.SetDateTime(now.Year(), int(now.Month()), now.Day(),
			now.Hour(), now.Minute(), now.Second())
	}

	return n
}

func (n *NDS) Model() types.Model {
	return n.model
}

// Run advances the emulated system by the given number of ARM7 cycles,
// firing any scheduled events along the way.
func (n *NDS) Run(cycles uint64) {
	n.Scheduler.Tick(cycles)
}

// Save serializes the whole system into the state stream.
func (n *NDS) Save(s *types.State) {
	s.Write8(uint8(n.model))
	n.RTC.Save(s)
}

// Load restores the whole system from the state stream.
func (n *NDS) Load(s *types.State) {
	n.model = types.Model(s.Read8())
	n.RTC.SetModel(n.model)
	n.RTC.Load(s)
}

// SaveStateFile writes the system state to a savestate container at
// the given path.
func (n *NDS) SaveStateFile(path string) error {
	s := types.NewState()
	n.Save(s)

	if err := savestate.Write(path, s.Bytes()); err != nil {
		return fmt.Errorf("nds: save state: %w", err)
	}
	return nil
}

// LoadStateFile restores the system from a savestate container.
func (n *NDS) LoadStateFile(path string) error {
	raw, err := savestate.Read(path)
	if err != nil {
		return fmt.Errorf("nds: load state: %w", err)
	}

	n.Load(types.StateFromBytes(raw))
	n.loadedFromState = true
	return nil
}
