package rtc

// bcd converts a 0-99 decimal value to packed BCD.
func bcd(val uint8) uint8 {
	return val%10 | (val/10)<<4
}

// bcdDecode converts a packed BCD value back to decimal.
func bcdDecode(val uint8) uint8 {
	return val&0x0F + (val>>4)*10
}

// bcdIncrement adds one to a packed BCD value, with per-nibble decimal
// carry correction.
func bcdIncrement(val uint8) uint8 {
	val++
	if val&0x0F >= 0x0A {
		val += 0x06
	}
	if val&0xF0 >= 0xA0 {
		val += 0x60
	}
	return val
}

// bcdSanitize resets val to vmin when it falls outside [vmin, vmax] or
// either nibble is not a decimal digit. The recovery is reset to the
// minimum, not a clamp to the nearest legal value.
func bcdSanitize(val, vmin, vmax uint8) uint8 {
	switch {
	case val < vmin || val > vmax:
		return vmin
	case val&0x0F >= 0x0A:
		return vmin
	case val&0xF0 >= 0xA0:
		return vmin
	}

	return val
}

// daysInMonth returns the BCD-encoded number of days in the current
// month, or 0 if the month register is malformed.
func (r *RTC) daysInMonth() uint8 {
	switch r.regs.DateTime[dtMonth] {
	case 0x01, 0x03, 0x05, 0x07, 0x08, 0x10, 0x12:
		return 0x31
	case 0x04, 0x06, 0x09, 0x11:
		return 0x30
	case 0x02:
		// the chip's year range (2000-2099) contains no century
		// exception, so divisible-by-4 is the whole leap rule
		if bcdDecode(r.regs.DateTime[dtYear])&3 == 0 {
			return 0x29
		}
		return 0x28
	}

	return 0
}

func (r *RTC) countYear() {
	r.regs.DateTime[dtYear] = bcdIncrement(r.regs.DateTime[dtYear])
}

func (r *RTC) countMonth() {
	r.regs.DateTime[dtMonth] = bcdIncrement(r.regs.DateTime[dtMonth])
	if r.regs.DateTime[dtMonth] > 0x12 {
		r.regs.DateTime[dtMonth] = 1
		r.countYear()
	}
}

func (r *RTC) checkEndOfMonth() {
	if r.regs.DateTime[dtDay] > r.daysInMonth() {
		r.regs.DateTime[dtDay] = 1
		r.countMonth()
	}
}

func (r *RTC) countDay() {
	// day-of-week is a plain mod-7 counter
	r.regs.DateTime[dtWeekday]++
	if r.regs.DateTime[dtWeekday] >= 7 {
		r.regs.DateTime[dtWeekday] = 0
	}

	r.regs.DateTime[dtDay] = bcdIncrement(r.regs.DateTime[dtDay])
	r.checkEndOfMonth()
}

func (r *RTC) countHour() {
	hour := bcdIncrement(r.regs.DateTime[dtHour] & 0x3F)
	pm := r.regs.DateTime[dtHour] & pmFlag

	if r.regs.StatusReg1&status24Hour != 0 {
		// 24-hour mode

		if hour >= 0x24 {
			hour = 0
			r.countDay()
		}

		if hour >= 0x12 {
			pm = pmFlag
		} else {
			pm = 0
		}
	} else {
		// 12-hour mode

		if hour >= 0x12 {
			hour = 0
			if pm != 0 {
				r.countDay()
			}
			pm ^= pmFlag
		}
	}

	r.regs.DateTime[dtHour] = hour | pm
}

func (r *RTC) countMinute() {
	r.regs.MinuteCount++
	r.regs.DateTime[dtMinute] = bcdIncrement(r.regs.DateTime[dtMinute])
	if r.regs.DateTime[dtMinute] >= 0x60 {
		r.regs.DateTime[dtMinute] = 0
		r.countHour()
	}
}

func (r *RTC) countSecond() {
	r.regs.DateTime[dtSecond] = bcdIncrement(r.regs.DateTime[dtSecond])
	if r.regs.DateTime[dtSecond] >= 0x60 {
		r.regs.DateTime[dtSecond] = 0
		r.countMinute()
	}
}

// setDateTimeField writes one date/time register, numbered 1-7 to match
// the payload byte position within a full calendar write. Malformed
// values are sanitized to the field's minimum rather than rejected.
func (r *RTC) setDateTimeField(num uint32, val uint8) {
	switch num {
	case 1: // year
		r.regs.DateTime[dtYear] = bcdSanitize(val, 0x00, 0x99)

	case 2: // month
		r.regs.DateTime[dtMonth] = bcdSanitize(val&0x1F, 0x01, 0x12)

	case 3: // day
		r.regs.DateTime[dtDay] = bcdSanitize(val&0x3F, 0x01, 0x31)
		r.checkEndOfMonth()

	case 4: // day of week
		r.regs.DateTime[dtWeekday] = bcdSanitize(val&0x07, 0x00, 0x06)

	case 5: // hour
		hour := val & 0x3F
		pm := val & pmFlag

		if r.regs.StatusReg1&status24Hour != 0 {
			// 24-hour mode: the PM flag is derived, not stored
			hour = bcdSanitize(hour, 0x00, 0x23)
			if hour >= 0x12 {
				pm = pmFlag
			} else {
				pm = 0
			}
		} else {
			// 12-hour mode
			hour = bcdSanitize(hour, 0x00, 0x11)
		}

		r.regs.DateTime[dtHour] = hour | pm

	case 6: // minute
		r.regs.DateTime[dtMinute] = bcdSanitize(val&0x7F, 0x00, 0x59)

	case 7: // second
		r.regs.DateTime[dtSecond] = bcdSanitize(val&0x7F, 0x00, 0x59)
	}
}

// switchHourMode re-encodes the live hour byte after the 12/24-hour
// mode bit has flipped, preserving the wall-clock hour. The 0x12 BCD
// offset needs the same nibble correction as bcdIncrement.
func (r *RTC) switchHourMode() {
	hour := r.regs.DateTime[dtHour] & 0x3F
	pm := r.regs.DateTime[dtHour] & pmFlag

	if r.regs.StatusReg1&status24Hour != 0 {
		// now 24-hour mode

		if pm != 0 {
			hour += 0x12
			if hour&0x0F >= 0x0A {
				hour += 0x06
			}
		}

		hour = bcdSanitize(hour, 0x00, 0x23)
	} else {
		// now 12-hour mode

		if hour >= 0x12 {
			pm = pmFlag

			hour -= 0x12
			if hour&0x0F >= 0x0A {
				hour -= 0x06
			}
		} else {
			pm = 0
		}

		hour = bcdSanitize(hour, 0x00, 0x11)
	}

	r.regs.DateTime[dtHour] = hour | pm
}

// SetDateTime sets the calendar from decimal values. Out-of-range
// fields fall back to their minimum legal value; the year keeps only
// its last two digits (the chip covers 2000-2099). Day-of-week is
// derived from the date, not supplied.
func (r *RTC) SetDateTime(year, month, day, hour, minute, second int) {
	monthDays := [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

	year %= 100
	if year < 0 {
		year = 0
	}
	if year&3 == 0 {
		monthDays[2] = 29
	}

	if month < 1 || month > 12 {
		month = 1
	}
	if day < 1 || day > monthDays[month] {
		day = 1
	}
	if hour < 0 || hour > 23 {
		hour = 0
	}
	if minute < 0 || minute > 59 {
		minute = 0
	}
	if second < 0 || second > 59 {
		second = 0
	}

	// the day-of-week register is a plain counter; the mapping to
	// names is firmware convention (0 = Sunday)
	numDays := year*365 + (year+3)/4
	for m := 1; m < month; m++ {
		numDays += monthDays[m]
	}
	numDays += day - 1

	// 2000-01-01 is a Saturday, so the counter starts at 6
	dayOfWeek := (6 + numDays) % 7

	var pm uint8
	if hour >= 12 {
		pm = pmFlag
	}
	if r.regs.StatusReg1&status24Hour == 0 && pm != 0 {
		// 12-hour mode
		hour -= 12
	}

	r.regs.DateTime[dtYear] = bcd(uint8(year))
	r.regs.DateTime[dtMonth] = bcd(uint8(month))
	r.regs.DateTime[dtDay] = bcd(uint8(day))
	r.regs.DateTime[dtWeekday] = uint8(dayOfWeek)
	r.regs.DateTime[dtHour] = bcd(uint8(hour)) | pm
	r.regs.DateTime[dtMinute] = bcd(uint8(minute))
	r.regs.DateTime[dtSecond] = bcd(uint8(second))

	// the chip has been given a time, so power was evidently restored
	r.regs.StatusReg1 &^= statusPowerLost
}

// GetDateTime decodes the calendar back to decimal values. The hour is
// always returned on the 24-hour scale, regardless of the active mode.
func (r *RTC) GetDateTime() (year, month, day, hour, minute, second int) {
	year = int(bcdDecode(r.regs.DateTime[dtYear])) + 2000
	month = int(bcdDecode(r.regs.DateTime[dtMonth] & 0x3F))
	day = int(bcdDecode(r.regs.DateTime[dtDay] & 0x3F))

	hour = int(bcdDecode(r.regs.DateTime[dtHour] & 0x3F))
	if r.regs.StatusReg1&status24Hour == 0 && r.regs.DateTime[dtHour]&pmFlag != 0 {
		// 12-hour mode
		hour += 12
	}

	minute = int(bcdDecode(r.regs.DateTime[dtMinute] & 0x7F))
	second = int(bcdDecode(r.regs.DateTime[dtSecond] & 0x7F))
	return
}
