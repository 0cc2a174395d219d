package rtc

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/dsrtc/internal/types"
)

func TestStateRoundTrip(t *testing.T) {
	r1 := testRTC(types.DSi)
	r1.regs.StatusReg1 |= status24Hour
	r1.SetDateTime(2023, 6, 15, 13, 37, 42)
	r1.regs.MinuteCount = 1234
	r1.regs.FreeReg = 0x5A

	// leave a serial transaction half-way through: command latched,
	// three bits of the first payload byte clocked in
	sendCommand(r1, cmdFreeReg)
	for bit := 0; bit < 3; bit++ {
		r1.Write(ioSelect|ioDirection|1, false)
		r1.Write(ioSelect|ioDirection|ioClock|1, false)
	}

	s := types.NewState()
	r1.Save(s)

	r2 := testRTC(types.DSi)
	r2.Load(s)

	assert.Equal(t, r1.io, r2.io)
	assert.Equal(t, r1.input, r2.input)
	assert.Equal(t, r1.inputBit, r2.inputBit)
	assert.Equal(t, r1.inputPos, r2.inputPos)
	assert.Equal(t, r1.output, r2.output)
	assert.Equal(t, r1.outputBit, r2.outputBit)
	assert.Equal(t, r1.outputPos, r2.outputPos)
	assert.Equal(t, r1.curCmd, r2.curCmd)
	assert.Equal(t, r1.regs, r2.regs)
	assert.Equal(t, r1.timerError, r2.timerError)
	assert.Equal(t, r1.clockCount, r2.clockCount)

	// the restored chip finishes the transaction: five zero bits on
	// top of the three ones already clocked in yield 0x07
	for bit := 0; bit < 5; bit++ {
		r2.Write(ioSelect|ioDirection, false)
		r2.Write(ioSelect|ioDirection|ioClock, false)
	}
	assert.Equal(t, uint8(0x07), r2.regs.FreeReg)
}

func TestStateLoadSanitizesDateTime(t *testing.T) {
	r1 := testRTC(types.DS)
	r1.SetDateTime(2023, 6, 15, 12, 0, 0)

	// corrupt calendar fields behind the write path's back
	r1.regs.DateTime[dtYear] = 0xAB
	r1.regs.DateTime[dtMonth] = 0x1F
	r1.regs.DateTime[dtMinute] = 0x7A

	s := types.NewState()
	r1.Save(s)

	r2 := testRTC(types.DS)
	r2.Load(s)

	year, month, _, _, minute, _ := r2.GetDateTime()
	assert.Equal(t, 2000, year)
	assert.Equal(t, 1, month)
	assert.Equal(t, 0, minute)
}

func TestSetRegistersSanitizes(t *testing.T) {
	r := testRTC(types.DS)

	regs := Registers{}
	regs.DateTime[dtMonth] = 0x77 // &0x1F -> 0x17, still out of range
	regs.DateTime[dtDay] = 0x31   // valid for January
	regs.FreeReg = 0xEE

	r.SetRegisters(regs)
	require.Equal(t, uint8(0xEE), r.regs.FreeReg)

	_, month, day, _, _, _ := r.GetDateTime()
	assert.Equal(t, 1, month)
	assert.Equal(t, 31, day)
}

func TestStateRoundTripThroughReadOut(t *testing.T) {
	// snapshot taken mid read-out must resume at the right bit
	r1 := testRTC(types.DS)
	r1.regs.FreeReg = 0xC3

	sendCommand(r1, cmdFreeReg|cmdDirRead)

	var low uint8
	for bit := uint8(0); bit < 4; bit++ {
		r1.Write(ioSelect, false)
		low |= uint8(r1.Read()&1) << bit
		r1.Write(ioSelect|ioClock, false)
	}
	assert.Equal(t, uint8(0x03), low)

	s := types.NewState()
	r1.Save(s)

	r2 := testRTC(types.DS)
	r2.Load(s)

	var high uint8
	for bit := uint8(4); bit < 8; bit++ {
		r2.Write(ioSelect, false)
		high |= uint8(r2.Read()&1) << bit
		r2.Write(ioSelect|ioClock, false)
	}
	assert.Equal(t, uint8(0xC3), low|high)
}

func TestWireCommandEncoding(t *testing.T) {
	// the firmware transmits command bytes bit-reversed; make sure the
	// raw encodings decode to the chip-order commands
	r := testRTC(types.DS)

	beginTransfer(r)
	sendByte(r, 0x61) // reversed "read StatusReg1"
	assert.Equal(t, uint8(cmdStatus1|cmdDirRead), r.curCmd)

	r.SetModel(types.DSi)
	beginTransfer(r)
	sendByte(r, bits.Reverse8(cmdMinuteCount|cmdDirRead))
	assert.Equal(t, uint8(cmdMinuteCount|cmdDirRead), r.curCmd)

	// 0x76/0x77 are plain command bytes on the DSi, not reversed
	beginTransfer(r)
	sendByte(r, 0x76)
	assert.Equal(t, uint8(0x76), r.curCmd)
}
