package rtc

// Registers is the chip's battery-backed register bank. Everything in
// here survives a hardware reset; only a host-issued reset command
// (StatusReg1 bit 0) clears it back to defaults.
type Registers struct {
	StatusReg1 uint8
	StatusReg2 uint8

	// DateTime holds the packed-BCD calendar: year, month, day,
	// day-of-week, hour, minute, second.
	DateTime [7]uint8

	Alarm1 [3]uint8
	Alarm2 [3]uint8

	ClockAdjust uint8
	FreeReg     uint8

	// MinuteCount is a free-running minute up-counter, readable
	// through the extended register set on the DSi.
	MinuteCount uint32

	FOUT1      uint8
	FOUT2      uint8
	AlarmDate1 [3]uint8
	AlarmDate2 [3]uint8
}

// StatusReg1 bits.
const (
	statusReset     = 1 << 0 // write 1 to clear the whole register bank
	status24Hour    = 1 << 1 // 1 = 24-hour mode, 0 = 12-hour + PM flag
	statusPowerLost = 1 << 7 // set while the chip believes power was lost
)

// StatusReg2 bits.
const (
	alarm1FullFormat = 1 << 2 // Alarm1 is 3 bytes instead of 1
	alarmIntMask     = 0x4F   // any of these enables an alarm interrupt
)

// DateTime field indices.
const (
	dtYear = iota
	dtMonth
	dtDay
	dtWeekday
	dtHour
	dtMinute
	dtSecond
)

// pmFlag is carried in bit 6 of the hour byte while in 12-hour mode.
const pmFlag = 0x40

// resetRegisters clears the bank to its power-on defaults,
// 2000-01-01 midnight.
func (r *RTC) resetRegisters() {
	r.regs = Registers{}
	r.regs.DateTime[dtMonth] = 1
	r.regs.DateTime[dtDay] = 1
}

// Registers returns a copy of the register bank.
func (r *RTC) Registers() Registers {
	return r.regs
}

// SetRegisters overwrites the register bank wholesale, then re-runs the
// calendar write validation over every date/time field, since the
// caller's bytes are not otherwise trusted.
func (r *RTC) SetRegisters(regs Registers) {
	r.regs = regs

	for i := uint32(1); i <= 7; i++ {
		r.setDateTimeField(i, r.regs.DateTime[i-1])
	}
}
