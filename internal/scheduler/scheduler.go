package scheduler

import (
	"fmt"
)

// Scheduler is a simple event scheduler that can be used to schedule events
// to be executed at a specific cycle of the emulated ARM7 clock.
//
// The scheduler is a linked list of events, sorted by the cycle at which
// they should be executed. When an event is scheduled, it is inserted into
// the list in the correct position, and when the scheduler is ticked, the
// next event is executed and removed from the list, if the event is scheduled
// for the current cycle.
type Scheduler struct {
	cycles uint64
	root   *Event

	eventHandlers [256]func() // set to 256 (uint8 max) avoids bounds check on eventHandlers[eventType]()
	events        [256]*Event // only one event of each type can be scheduled at a time
	nextEventAt   uint64
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		cycles: 0,
		events: [256]*Event{},
	}

	// initialize the events with the number of event types
	// to avoid the cost of allocating a new event for each
	// scheduled event
	for i := 0; i < int(eventTypes); i++ {
		s.events[i] = &Event{}
	}

	return s
}

func (s *Scheduler) Cycle() uint64 {
	return s.cycles
}

// RegisterEvent registers a function of the EventType to be called when
// the event is scheduled for execution. This is to avoid the cost of
// having to allocate a function for each event, which would frequently
// invoke the garbage collector, despite the functions always performing
// the same task.
func (s *Scheduler) RegisterEvent(eventType EventType, fn func()) {
	s.eventHandlers[eventType] = fn
}

// Tick advances the scheduler by the given number of cycles. This will
// execute all scheduled events up to the current cycle, in cycle order.
// Handlers are free to reschedule their own event from within the
// callback; the RTC timer relies on this to re-arm itself after every
// firing.
func (s *Scheduler) Tick(c uint64) {
	target := s.cycles + c

	// skip if there are no events scheduled
	if s.root == nil || s.nextEventAt > target {
		s.cycles = target
		return
	}

	// execute all scheduled events up to the target cycle. The counter
	// is moved to each event's cycle before its handler runs, so a
	// callback rescheduling its own event measures from the firing
	// time rather than from the end of the tick.
	for s.root != nil && s.root.cycle <= target {
		event := s.root

		s.root = event.next

		s.cycles = event.cycle
		s.eventHandlers[event.eventType]()
	}

	s.cycles = target

	// update the next event to be executed
	if s.root != nil {
		s.nextEventAt = s.root.cycle
	}
}

// ScheduleEvent schedules an event to be executed in the given number of
// cycles from now.
func (s *Scheduler) ScheduleEvent(eventType EventType, cycle uint64) {

	// when the event is scheduled, it is scheduled for the current cycle + the cycle
	// at which it should be executed
	atCycle := s.cycles + cycle

	var prev *Event
	this := s.events[eventType]
	this.cycle = atCycle
	this.eventType = eventType

	this.next = nil

	if s.root == nil {
		s.root = this
		s.nextEventAt = atCycle
		return
	} else if atCycle < s.nextEventAt {
		// the event should be executed before the current event
		// so we can just prepend it
		this.next = s.root
		s.root = this
		s.nextEventAt = atCycle
		return
	}

	event := s.root
	for {
		if atCycle < event.cycle {
			// the event should be executed before the current event
			// so we need to insert it before the current event

			if prev == nil {
				// the event should be executed before the current event
				// and there is no previous event, so we can just prepend it
				this.next = event
				s.root = this
				s.nextEventAt = atCycle
				break
			} else if prev.cycle <= atCycle {
				// the event should be executed between the previous event
				// and the current event, so we can just insert it
				this.next = event
				prev.next = this

				break
			}
		}

		if event.next == nil && event.cycle <= atCycle {
			// the event should be executed after the current event
			event.next = this
			break
		}

		prev = event
		event = event.next
	}

}

func (s *Scheduler) DescheduleEvent(eventType EventType) {
	if s.root == nil {
		return
	}

	var prev *Event
	event := s.root

	for event != nil {
		if event.eventType == eventType {
			if prev == nil {
				s.root = event.next
				break
			} else {
				prev.next = event.next
				break
			}
		}
		prev = event
		event = event.next
	}

	if s.root != nil {
		s.nextEventAt = s.root.cycle
	}
}

// DoEvent executes the next scheduled event and returns the cycle at
// which the following event is scheduled.
func (s *Scheduler) DoEvent() uint64 {
	event := s.root

	s.root = event.next
	s.eventHandlers[event.eventType]()

	return s.root.cycle
}

// Skip invokes the scheduler to execute the next event, by setting the
// current cycle to the cycle at which the next event is scheduled to be
// executed. This is useful when the emulated CPU is idle, and the
// scheduler should jump straight to the next point in time at which
// anything happens.
func (s *Scheduler) Skip() {
	s.cycles = s.nextEventAt
	s.nextEventAt = s.DoEvent()
}

func (s *Scheduler) String() string {
	result := ""
	event := s.root
	for event != nil {
		result += fmt.Sprintf("%d:%d->", event.eventType, event.cycle)
		event = event.next
	}
	return result
}
