package rtc

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thelolagemann/dsrtc/internal/types"
)

// beginTransfer pulses chip-select low then high, starting a fresh
// transaction.
func beginTransfer(r *RTC) {
	r.Write(0, false)
	r.Write(ioSelect|ioDirection, false)
}

// sendByte clocks one byte into the chip, LSB first.
func sendByte(r *RTC, val uint8) {
	for bit := uint8(0); bit < 8; bit++ {
		b := uint16(val >> bit & 1)
		r.Write(ioSelect|ioDirection|b, false)         // clock low, bit sampled
		r.Write(ioSelect|ioDirection|ioClock|b, false) // clock high
	}
}

// recvByte clocks one byte out of the chip, LSB first.
func recvByte(r *RTC) uint8 {
	var val uint8
	for bit := uint8(0); bit < 8; bit++ {
		r.Write(ioSelect, false) // clock low, chip drives the data line
		val |= uint8(r.Read()&1) << bit
		r.Write(ioSelect|ioClock, false)
	}
	return val
}

// sendCommand begins a transaction and clocks in a command byte in its
// wire encoding (bit-reversed, as the firmware transmits it).
func sendCommand(r *RTC, cmd uint8) {
	beginTransfer(r)
	sendByte(r, bits.Reverse8(cmd))
}

func readRegister(r *RTC, cmd uint8, n int) []uint8 {
	sendCommand(r, cmd|cmdDirRead)
	out := make([]uint8, n)
	for i := range out {
		out[i] = recvByte(r)
	}
	return out
}

func writeRegister(r *RTC, cmd uint8, payload ...uint8) {
	sendCommand(r, cmd)
	for _, b := range payload {
		sendByte(r, b)
	}
}

const (
	cmdStatus1     = 0x00 | familyStandard
	cmdAlarm1      = 0x10 | familyStandard
	cmdDateTime    = 0x20 | familyStandard
	cmdClockAdjust = 0x30 | familyStandard
	cmdStatus2     = 0x40 | familyStandard
	cmdAlarm2      = 0x50 | familyStandard
	cmdTime        = 0x60 | familyStandard
	cmdFreeReg     = 0x70 | familyStandard

	cmdMinuteCount = 0x00 | familyExtended
	cmdAlarmDate1  = 0x10 | familyExtended
	cmdFOUT2       = 0x20 | familyExtended
	cmdFOUT1       = 0x40 | familyExtended
	cmdAlarmDate2  = 0x50 | familyExtended
)

func TestProtocolReadStatus1(t *testing.T) {
	r := testRTC(types.DS)

	// the chip powers on with the power-lost flag set
	got := readRegister(r, cmdStatus1, 1)
	assert.Equal(t, uint8(0x80), got[0])

	// bits 4-7 auto-clear once read
	got = readRegister(r, cmdStatus1, 1)
	assert.Equal(t, uint8(0x00), got[0])
}

func TestProtocolStatusReg1Reset(t *testing.T) {
	r := testRTC(types.DS)
	r.SetDateTime(2023, 6, 15, 12, 34, 56)

	writeRegister(r, cmdStatus1, statusReset)

	y, mo, d, h, mi, s := r.GetDateTime()
	assert.Equal(t, []int{2000, 1, 1, 0, 0, 0}, []int{y, mo, d, h, mi, s})
}

func TestProtocolDateTime(t *testing.T) {
	r := testRTC(types.DS)
	r.regs.StatusReg1 |= status24Hour
	r.SetDateTime(2023, 6, 15, 13, 37, 42)

	got := readRegister(r, cmdDateTime, 7)
	assert.Equal(t, r.regs.DateTime[:], got)

	// full calendar write, including a derived field position for the
	// day of week
	writeRegister(r, cmdDateTime, 0x24, 0x02, 0x29, 0x04, 0x18, 0x30, 0x00)
	y, mo, d, h, mi, s := r.GetDateTime()
	assert.Equal(t, []int{2024, 2, 29, 18, 30, 0}, []int{y, mo, d, h, mi, s})
}

func TestProtocolTimeOnly(t *testing.T) {
	r := testRTC(types.DS)
	r.regs.StatusReg1 |= status24Hour
	r.SetDateTime(2023, 6, 15, 13, 37, 42)

	got := readRegister(r, cmdTime, 3)
	assert.Equal(t, []uint8{0x13 | pmFlag, 0x37, 0x42}, got)

	writeRegister(r, cmdTime, 0x09, 0x08, 0x07)
	y, mo, d, h, mi, s := r.GetDateTime()
	assert.Equal(t, []int{2023, 6, 15, 9, 8, 7}, []int{y, mo, d, h, mi, s})
}

func TestProtocolMalformedDateTimeSanitized(t *testing.T) {
	r := testRTC(types.DS)

	// year 0xAB is out of range, month 0x1F and day 0x3F carry invalid
	// BCD nibbles; all fall back to their minimum
	writeRegister(r, cmdDateTime, 0xAB, 0x1F, 0x3F)

	y, mo, d, _, _, _ := r.GetDateTime()
	assert.Equal(t, []int{2000, 1, 1}, []int{y, mo, d})
}

func TestProtocolAlarm1Format(t *testing.T) {
	r := testRTC(types.DS)

	// StatusReg2 format bit clear: Alarm1 is a single byte
	writeRegister(r, cmdAlarm1, 0xAA, 0xBB, 0xCC)
	assert.Equal(t, [3]uint8{0x00, 0x00, 0xAA}, r.regs.Alarm1)

	got := readRegister(r, cmdAlarm1, 1)
	assert.Equal(t, uint8(0xAA), got[0])

	// format bit set: Alarm1 is 3 bytes
	writeRegister(r, cmdStatus2, alarm1FullFormat)
	writeRegister(r, cmdAlarm1, 0x11, 0x22, 0x33)
	assert.Equal(t, [3]uint8{0x11, 0x22, 0x33}, r.regs.Alarm1)

	got = readRegister(r, cmdAlarm1, 3)
	assert.Equal(t, []uint8{0x11, 0x22, 0x33}, got)
}

func TestProtocolOverlengthWriteIgnored(t *testing.T) {
	r := testRTC(types.DS)

	writeRegister(r, cmdClockAdjust, 0x42, 0x99, 0x99, 0x99, 0x99)
	assert.Equal(t, uint8(0x42), r.regs.ClockAdjust)

	writeRegister(r, cmdAlarm2, 0x01, 0x02, 0x03, 0x04, 0x05)
	assert.Equal(t, [3]uint8{0x01, 0x02, 0x03}, r.regs.Alarm2)
}

func TestProtocolFreeReg(t *testing.T) {
	r := testRTC(types.DS)

	writeRegister(r, cmdFreeReg, 0x5A)
	got := readRegister(r, cmdFreeReg, 1)
	assert.Equal(t, uint8(0x5A), got[0])
}

func TestProtocolModeSwitchReencodesHour(t *testing.T) {
	r := testRTC(types.DS)
	r.regs.StatusReg1 |= status24Hour
	r.SetDateTime(2023, 6, 15, 14, 0, 0)

	// clear the 12/24 bit over the wire
	writeRegister(r, cmdStatus1, 0x00)
	assert.Equal(t, uint8(0x02)|pmFlag, r.regs.DateTime[dtHour])
	_, _, _, h, _, _ := r.GetDateTime()
	assert.Equal(t, 14, h)

	// and set it again
	writeRegister(r, cmdStatus1, status24Hour)
	assert.Equal(t, uint8(0x14), r.regs.DateTime[dtHour]&0x3F)
	_, _, _, h, _, _ = r.GetDateTime()
	assert.Equal(t, 14, h)
}

func TestProtocolExtendedFamily(t *testing.T) {
	t.Run("rejected on DS", func(t *testing.T) {
		r := testRTC(types.DS)
		r.regs.MinuteCount = 0x123456

		got := readRegister(r, cmdMinuteCount, 3)
		assert.Equal(t, []uint8{0, 0, 0}, got, "extended reads must not fill the output buffer")
	})

	t.Run("minute counter on DSi", func(t *testing.T) {
		r := testRTC(types.DSi)
		r.regs.MinuteCount = 0x123456

		got := readRegister(r, cmdMinuteCount, 3)
		assert.Equal(t, []uint8{0x12, 0x34, 0x56}, got, "24-bit big-endian read-out")

		// the counter is read-only
		writeRegister(r, cmdMinuteCount, 0xFF, 0xFF, 0xFF)
		assert.Equal(t, uint32(0x123456), r.regs.MinuteCount)
	})

	t.Run("fout and alarm dates on DSi", func(t *testing.T) {
		r := testRTC(types.DSi)

		writeRegister(r, cmdFOUT1, 0x12)
		writeRegister(r, cmdFOUT2, 0x34)
		assert.Equal(t, uint8(0x12), r.regs.FOUT1)
		assert.Equal(t, uint8(0x34), r.regs.FOUT2)

		writeRegister(r, cmdAlarmDate1, 0x01, 0x02, 0x03)
		writeRegister(r, cmdAlarmDate2, 0x04, 0x05, 0x06)
		assert.Equal(t, []uint8{0x01, 0x02, 0x03}, readRegister(r, cmdAlarmDate1, 3))
		assert.Equal(t, []uint8{0x04, 0x05, 0x06}, readRegister(r, cmdAlarmDate2, 3))
	})

	t.Run("unknown extended select", func(t *testing.T) {
		r := testRTC(types.DSi)

		before := r.regs
		writeRegister(r, 0x30|familyExtended, 0x42)
		assert.Equal(t, before, r.regs, "unknown selects must not change state")
	})
}

func TestProtocolUnknownFamily(t *testing.T) {
	r := testRTC(types.DS)

	before := r.regs
	beginTransfer(r)
	sendByte(r, 0x03) // low nibble is neither family code
	sendByte(r, 0xFF)
	assert.Equal(t, before, r.regs)
}

func TestProtocolOutputPositionClamps(t *testing.T) {
	r := testRTC(types.DS)
	r.regs.FreeReg = 0x77

	// reading far past a 1-byte register sticks at the buffer end
	// rather than wrapping
	got := readRegister(r, cmdFreeReg, 12)
	assert.Equal(t, uint8(0x77), got[0])
	for _, b := range got[1:] {
		assert.Equal(t, uint8(0x00), b)
	}
	assert.Equal(t, uint32(7), r.outputPos)
}

func TestProtocolChipSelectResetsTransfer(t *testing.T) {
	r := testRTC(types.DS)

	// clock in half a command, then drop and re-raise chip-select
	beginTransfer(r)
	for bit := 0; bit < 4; bit++ {
		r.Write(ioSelect|ioDirection|1, false)
		r.Write(ioSelect|ioDirection|ioClock|1, false)
	}

	beginTransfer(r)
	assert.Zero(t, r.input)
	assert.Zero(t, r.inputBit)
	assert.Zero(t, r.inputPos)

	// and a full transaction still works
	sendByte(r, bits.Reverse8(cmdStatus1|cmdDirRead))
	assert.Equal(t, uint8(0x80), recvByte(r))
}

func TestByteGranularWritePreservesHighByte(t *testing.T) {
	r := testRTC(types.DS)

	r.Write(0xAB00|ioDirection, false)
	assert.Equal(t, uint16(0xAB00|ioDirection), r.Read())

	r.Write(uint16(ioSelect|ioDirection), true)
	assert.Equal(t, uint16(0xAB00|ioSelect|ioDirection), r.Read())
}
