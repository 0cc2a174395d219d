package rtc

import "github.com/thelolagemann/dsrtc/internal/types"

var _ types.Stater = (*RTC)(nil)

// Save serializes the chip: the IO mirror, the in-flight serial
// transfer, the register bank in declaration order and the timer
// state. The stream layout is fixed and independent of the in-memory
// layout.
func (r *RTC) Save(s *types.State) {
	s.Write16(r.io)

	s.Write8(r.input)
	s.Write32(r.inputBit)
	s.Write32(r.inputPos)

	s.WriteData(r.output[:])
	s.Write32(r.outputBit)
	s.Write32(r.outputPos)

	s.Write8(r.curCmd)

	s.Write8(r.regs.StatusReg1)
	s.Write8(r.regs.StatusReg2)
	s.WriteData(r.regs.DateTime[:])
	s.WriteData(r.regs.Alarm1[:])
	s.WriteData(r.regs.Alarm2[:])
	s.Write8(r.regs.ClockAdjust)
	s.Write8(r.regs.FreeReg)
	s.Write32(r.regs.MinuteCount)
	s.Write8(r.regs.FOUT1)
	s.Write8(r.regs.FOUT2)
	s.WriteData(r.regs.AlarmDate1[:])
	s.WriteData(r.regs.AlarmDate2[:])

	s.Write32(uint32(r.timerError))
	s.Write32(r.clockCount)
}

// Load restores the chip from a stream written by Save, then re-runs
// the calendar write validation over every date/time field; persisted
// bytes are not otherwise trusted.
func (r *RTC) Load(s *types.State) {
	r.io = s.Read16()

	r.input = s.Read8()
	r.inputBit = s.Read32()
	r.inputPos = s.Read32()

	s.ReadData(r.output[:])
	r.outputBit = s.Read32()
	r.outputPos = s.Read32()

	r.curCmd = s.Read8()

	r.regs.StatusReg1 = s.Read8()
	r.regs.StatusReg2 = s.Read8()
	s.ReadData(r.regs.DateTime[:])
	s.ReadData(r.regs.Alarm1[:])
	s.ReadData(r.regs.Alarm2[:])
	r.regs.ClockAdjust = s.Read8()
	r.regs.FreeReg = s.Read8()
	r.regs.MinuteCount = s.Read32()
	r.regs.FOUT1 = s.Read8()
	r.regs.FOUT2 = s.Read8()
	s.ReadData(r.regs.AlarmDate1[:])
	s.ReadData(r.regs.AlarmDate2[:])

	r.timerError = int32(s.Read32())
	r.clockCount = s.Read32()

	for i := uint32(1); i <= 7; i++ {
		r.setDateTimeField(i, r.regs.DateTime[i-1])
	}
}
