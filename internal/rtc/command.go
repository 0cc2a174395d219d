package rtc

import (
	"math/bits"

	"github.com/thelolagemann/dsrtc/internal/types"
)

// Command-byte layout, after wire-order correction: bit 7 selects the
// direction (1 = host read), bits 6-4 select a register, and the low
// nibble selects the register family.
const (
	familyStandard = 0x06 // status, calendar and alarm registers
	familyExtended = 0x0E // DSi only: minute counter, FOUT, alarm dates
)

const cmdDirRead = 1 << 7

// regHandler describes one register within a command family. read
// fills the output buffer for serial read-out; write consumes one
// payload byte, gated on the current input byte position so bytes
// beyond the register's length are ignored. A nil handler is an
// unmapped select.
type regHandler struct {
	read  func(r *RTC)
	write func(r *RTC, val uint8)
}

var standardHandlers = [8]regHandler{
	0x0: {(*RTC).readStatus1, (*RTC).writeStatus1},
	0x1: {(*RTC).readAlarm1, (*RTC).writeAlarm1},
	0x2: {(*RTC).readDateTime, (*RTC).writeDateTime},
	0x3: {(*RTC).readClockAdjust, (*RTC).writeClockAdjust},
	0x4: {(*RTC).readStatus2, (*RTC).writeStatus2},
	0x5: {(*RTC).readAlarm2, (*RTC).writeAlarm2},
	0x6: {(*RTC).readTime, (*RTC).writeTime},
	0x7: {(*RTC).readFreeReg, (*RTC).writeFreeReg},
}

var extendedHandlers = [8]regHandler{
	0x0: {(*RTC).readMinuteCount, (*RTC).writeMinuteCount},
	0x1: {(*RTC).readAlarmDate1, (*RTC).writeAlarmDate1},
	0x2: {(*RTC).readFOUT2, (*RTC).writeFOUT2},
	0x4: {(*RTC).readFOUT1, (*RTC).writeFOUT1},
	0x5: {(*RTC).readAlarmDate2, (*RTC).writeAlarmDate2},
}

// byteIn receives one assembled byte from the serial interface. The
// first byte of a transaction is the command; the rest are payload for
// the latched command.
func (r *RTC) byteIn(val uint8) {
	if r.inputPos == 0 {
		// the bus transmits command bytes bit-reversed, so a raw
		// byte carrying the reversed standard-family code in its
		// high nibble is flipped back whole
		if val>>4 == bits.Reverse8(familyStandard)>>4 {
			r.curCmd = bits.Reverse8(val)
		} else {
			r.curCmd = val
		}

		if r.model == types.DSi {
			// the DSi firmware sends extended-family commands the
			// same way; 0x76/0x77 are real command bytes and must
			// be left alone
			if r.curCmd>>4 == bits.Reverse8(familyExtended)>>4 && r.curCmd&0xFE != 0x76 {
				r.curCmd = bits.Reverse8(r.curCmd)
			}
		}

		if r.curCmd&cmdDirRead != 0 {
			r.commandRead()
		}
		return
	}

	r.commandWrite(val)
}

// lookup resolves the latched command to a register handler. It fails
// for unknown families, and for the extended family on anything but
// the DSi.
func (r *RTC) lookup() (regHandler, bool) {
	sel := r.curCmd >> 4 & 0x7

	switch r.curCmd & 0x0F {
	case familyStandard:
		return standardHandlers[sel], true
	case familyExtended:
		if r.model != types.DSi {
			return regHandler{}, false
		}
		return extendedHandlers[sel], true
	}

	return regHandler{}, false
}

// commandRead fills the output buffer for the latched read command.
func (r *RTC) commandRead() {
	h, ok := r.lookup()
	if !ok || h.read == nil {
		r.Debugf("rtc: unknown read command %02X", r.curCmd)
		return
	}

	h.read(r)
}

// commandWrite dispatches one payload byte of the latched write
// command.
func (r *RTC) commandWrite(val uint8) {
	h, ok := r.lookup()
	if !ok || h.write == nil {
		r.Debugf("rtc: unknown write command %02X", r.curCmd)
		return
	}

	h.write(r, val)
}

func (r *RTC) readStatus1() {
	r.output[0] = r.regs.StatusReg1
	// bits 4-7 auto-clear once read
	r.regs.StatusReg1 &= 0x0F
}

func (r *RTC) writeStatus1(val uint8) {
	if r.inputPos != 1 {
		return
	}

	oldVal := r.regs.StatusReg1

	if val&statusReset != 0 {
		r.resetRegisters()
	}

	r.regs.StatusReg1 = r.regs.StatusReg1&0xF0 | val&0x0E

	if (r.regs.StatusReg1^oldVal)&status24Hour != 0 {
		// 12/24-hour mode changed, re-encode the live hour
		r.switchHourMode()
	}
}

func (r *RTC) readStatus2() {
	r.output[0] = r.regs.StatusReg2
}

func (r *RTC) writeStatus2(val uint8) {
	if r.inputPos != 1 {
		return
	}

	r.regs.StatusReg2 = val
	if r.regs.StatusReg2&alarmIntMask != 0 {
		r.Infof("rtc: alarm interrupt enabled: %02X, %02X %02X %02X, %02X %02X %02X",
			r.regs.StatusReg2,
			r.regs.Alarm1[0], r.regs.Alarm1[1], r.regs.Alarm1[2],
			r.regs.Alarm2[0], r.regs.Alarm2[1], r.regs.Alarm2[2])
	}
}

func (r *RTC) readDateTime() {
	copy(r.output[:7], r.regs.DateTime[:])
}

func (r *RTC) writeDateTime(val uint8) {
	if r.inputPos <= 7 {
		r.setDateTimeField(r.inputPos, val)
	}
}

func (r *RTC) readTime() {
	copy(r.output[:3], r.regs.DateTime[dtHour:])
}

func (r *RTC) writeTime(val uint8) {
	if r.inputPos <= 3 {
		r.setDateTimeField(r.inputPos+4, val)
	}
}

func (r *RTC) readAlarm1() {
	if r.regs.StatusReg2&alarm1FullFormat != 0 {
		copy(r.output[:3], r.regs.Alarm1[:])
	} else {
		r.output[0] = r.regs.Alarm1[2]
	}
}

func (r *RTC) writeAlarm1(val uint8) {
	if r.regs.StatusReg2&alarm1FullFormat != 0 {
		if r.inputPos <= 3 {
			r.regs.Alarm1[r.inputPos-1] = val
		}
	} else if r.inputPos == 1 {
		r.regs.Alarm1[2] = val
	}
}

func (r *RTC) readAlarm2() {
	copy(r.output[:3], r.regs.Alarm2[:])
}

func (r *RTC) writeAlarm2(val uint8) {
	if r.inputPos <= 3 {
		r.regs.Alarm2[r.inputPos-1] = val
	}
}

func (r *RTC) readClockAdjust() {
	r.output[0] = r.regs.ClockAdjust
}

func (r *RTC) writeClockAdjust(val uint8) {
	if r.inputPos == 1 {
		r.regs.ClockAdjust = val
		r.Debugf("rtc: clock adjust = %02X", val)
	}
}

func (r *RTC) readFreeReg() {
	r.output[0] = r.regs.FreeReg
}

func (r *RTC) writeFreeReg(val uint8) {
	if r.inputPos == 1 {
		r.regs.FreeReg = val
	}
}

func (r *RTC) readMinuteCount() {
	// 24 bits of the counter, big-endian on the wire
	r.output[0] = uint8(r.regs.MinuteCount >> 16)
	r.output[1] = uint8(r.regs.MinuteCount >> 8)
	r.output[2] = uint8(r.regs.MinuteCount)
}

func (r *RTC) writeMinuteCount(val uint8) {
	r.Debugf("rtc: write to read-only minute counter")
}

func (r *RTC) readFOUT1() {
	r.output[0] = r.regs.FOUT1
}

func (r *RTC) writeFOUT1(val uint8) {
	if r.inputPos == 1 {
		r.regs.FOUT1 = val
	}
}

func (r *RTC) readFOUT2() {
	r.output[0] = r.regs.FOUT2
}

func (r *RTC) writeFOUT2(val uint8) {
	if r.inputPos == 1 {
		r.regs.FOUT2 = val
	}
}

func (r *RTC) readAlarmDate1() {
	copy(r.output[:3], r.regs.AlarmDate1[:])
}

func (r *RTC) writeAlarmDate1(val uint8) {
	if r.inputPos <= 3 {
		r.regs.AlarmDate1[r.inputPos-1] = val
	}
}

func (r *RTC) readAlarmDate2() {
	copy(r.output[:3], r.regs.AlarmDate2[:])
}

func (r *RTC) writeAlarmDate2(val uint8) {
	if r.inputPos <= 3 {
		r.regs.AlarmDate2[r.inputPos-1] = val
	}
}
