package scheduler

type EventType int

const (
	RTCTimer EventType = iota // periodic 32768 Hz RTC quartz tick
	MonitorSync               // per-second state broadcast for attached frontends

	eventTypes // number of event types, used to preallocate events
)

type Event struct {
	cycle     uint64
	eventType EventType
	next      *Event
}

func (e *Event) Reset() {
	e.cycle = 0
	e.eventType = 0
	e.next = nil
}
