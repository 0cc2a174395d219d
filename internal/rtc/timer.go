package rtc

import "github.com/thelolagemann/dsrtc/internal/scheduler"

// scheduleTimer arms the next quartz tick. The ARM7 clock is not an
// exact multiple of the 32768 Hz quartz, so the remainder of the
// division is carried between firings; the long-run average period
// then works out exact.
func (r *RTC) scheduleTimer(first bool) {
	if first {
		// self-re-armed events are scheduled from inside their own
		// callback, after they have been popped; a first arm may race
		// a still-pending event and has to clear it
		r.s.DescheduleEvent(scheduler.RTCTimer)
		r.timerError = 0
	}

	sysClock := int32(SystemClockHz) + r.timerError
	delay := sysClock >> 15
	r.timerError = sysClock & 0x7FFF

	r.s.ScheduleEvent(scheduler.RTCTimer, uint64(delay))
}

// tick fires once per quartz cycle; every 32768th firing counts up one
// second. The timer has no cancellation path, it always re-arms.
func (r *RTC) tick() {
	r.clockCount++

	if r.clockCount&0x7FFF == 0 {
		r.countSecond()

		if r.onSecond != nil {
			r.onSecond()
		}
	}

	r.scheduleTimer(false)
}
