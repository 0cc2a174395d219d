// Package rtc emulates the Nintendo DS real-time clock, a battery
// backed calendar chip the ARM7 drives over a 3-wire serial bus that is
// multiplexed onto a single 16-bit IO register.
package rtc

import (
	"github.com/thelolagemann/dsrtc/internal/scheduler"
	"github.com/thelolagemann/dsrtc/internal/types"
	"github.com/thelolagemann/dsrtc/pkg/log"
)

const (
	// SystemClockHz is the ARM7 bus clock the scheduler counts in.
	SystemClockHz = 33513982
	// QuartzHz is the frequency of the chip's quartz oscillator.
	QuartzHz = 32768
)

// Bits of the 16-bit IO register.
const (
	ioData      = 1 << 0 // shared data line
	ioClock     = 1 << 1 // serial clock
	ioSelect    = 1 << 2 // chip select
	ioDirection = 1 << 4 // 1 = host driving the data line
)

// RTC is a single chip instance. The host accesses it exclusively
// through Read and Write on the IO register; the calendar advances on
// scheduler callbacks, decoupled from serial traffic.
type RTC struct {
	io uint16 // host-visible register mirror

	input    uint8
	inputBit uint32
	inputPos uint32

	output    [8]uint8
	outputBit uint32
	outputPos uint32

	curCmd uint8

	regs Registers

	timerError int32
	clockCount uint32

	model    types.Model
	s        *scheduler.Scheduler
	onSecond func()

	log.Logger
}

// New creates an RTC driven by the given scheduler and arms its timer.
// The status register starts out flagging a power loss, which clears
// once a time is set or a saved state is loaded.
func New(s *scheduler.Scheduler) *RTC {
	r := &RTC{
		s:      s,
		Logger: log.NewNullLogger(),
	}
	r.resetRegisters()
	r.regs.StatusReg1 = statusPowerLost

	s.RegisterEvent(scheduler.RTCTimer, r.tick)
	r.Reset()

	return r
}

// Reset emulates a hardware reset: transient transfer state is cleared
// and the timer re-armed, but the register bank survives on battery.
func (r *RTC) Reset() {
	r.input = 0
	r.inputBit = 0
	r.inputPos = 0

	r.output = [8]uint8{}
	r.outputBit = 0
	r.outputPos = 0

	r.curCmd = 0

	r.clockCount = 0
	r.scheduleTimer(true)
}

// SetModel selects the console model; only the DSi exposes the
// extended register family.
func (r *RTC) SetModel(m types.Model) {
	r.model = m
}

func (r *RTC) Model() types.Model {
	return r.model
}

// OnSecond registers a callback invoked after every emulated second.
func (r *RTC) OnSecond(fn func()) {
	r.onSecond = fn
}

// Read returns the host-visible IO register.
func (r *RTC) Read() uint16 {
	return r.io
}

// Write drives the serial lines from a host register write. If
// byteAccess is set, only the low byte was written and the upper byte
// is preserved from the mirror.
//
// A chip-select rising edge begins a new transaction. While selected
// and the clock is held low, each write transfers one bit LSB-first:
// host-to-chip when the direction bit is set, chip-to-host otherwise.
func (r *RTC) Write(v uint16, byteAccess bool) {
	if byteAccess {
		v |= r.io & 0xFF00
	}

	if v&ioSelect != 0 {
		if r.io&ioSelect == 0 {
			// start transfer
			r.input = 0
			r.inputBit = 0
			r.inputPos = 0

			r.output = [8]uint8{}
			r.outputBit = 0
			r.outputPos = 0
		} else if v&ioClock == 0 { // clock held low
			if v&ioDirection != 0 {
				// host -> chip: sample the data line
				if v&ioData != 0 {
					r.input |= 1 << r.inputBit
				}

				r.inputBit++
				if r.inputBit >= 8 {
					r.inputBit = 0
					r.byteIn(r.input)
					r.input = 0
					r.inputPos++
				}
			} else {
				// chip -> host: present the next output bit
				if r.output[r.outputPos]&(1<<r.outputBit) != 0 {
					r.io |= ioData
				} else {
					r.io &^= ioData
				}

				r.outputBit++
				if r.outputBit >= 8 {
					r.outputBit = 0
					// stick at the last byte rather than wrap
					if r.outputPos < 7 {
						r.outputPos++
					}
				}
			}
		}
	}

	if v&ioDirection != 0 {
		r.io = v
	} else {
		// the chip owns the data line during a read, everything
		// else mirrors the write
		r.io = r.io&ioData | v&^ioData
	}
}
