package hinge

const (
	DANGLING_REFERENCE EventType = iota
	LIMIT_ENTER
	LIMIT_STAY
	LIMIT_EXIT
	ON_SLEEP
	ON_WAKE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// DanglingReferenceEvent is emitted for every constraint skipped during a tick
// because one of its bodies was removed.
type DanglingReferenceEvent struct {
	Constraint ConstraintHandle
	Err        error
}

func (e DanglingReferenceEvent) Type() EventType { return DANGLING_REFERENCE }

// Angle limit events, for joints whose limit corrected the angle during a tick
type LimitEnterEvent struct {
	Joint ConstraintHandle
	Angle float64
}

func (e LimitEnterEvent) Type() EventType { return LIMIT_ENTER }

type LimitStayEvent struct {
	Joint ConstraintHandle
	Angle float64
}

func (e LimitStayEvent) Type() EventType { return LIMIT_STAY }

type LimitExitEvent struct {
	Joint ConstraintHandle
	Angle float64
}

func (e LimitExitEvent) Type() EventType { return LIMIT_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body BodyHandle
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body BodyHandle
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

type bodyState struct {
	body     BodyHandle
	sleeping bool
}

// EventListener - callback for events
type EventListener func(event Event)

// Events manager, listeners are called once the tick is complete
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Limit tracking for Enter/Stay/Exit detection
	previousActiveLimits map[ConstraintHandle]bool
	currentActiveLimits  map[ConstraintHandle]bool
	limitAngles          map[ConstraintHandle]float64

	sleepStates map[BodyHandle]bool
}

func NewEvents() Events {
	return Events{
		listeners:            make(map[EventType][]EventListener),
		buffer:               make([]Event, 0, 64),
		previousActiveLimits: make(map[ConstraintHandle]bool),
		currentActiveLimits:  make(map[ConstraintHandle]bool),
		limitAngles:          make(map[ConstraintHandle]float64),
		sleepStates:          make(map[BodyHandle]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// init allows a zero Events to be used
func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

func (e *Events) emitDangling(handle ConstraintHandle, err error) {
	e.init()
	e.buffer = append(e.buffer, DanglingReferenceEvent{Constraint: handle, Err: err})
}

// recordLimit is called after the substeps for each limited joint
func (e *Events) recordLimit(handle ConstraintHandle, active bool, angle float64) {
	e.init()
	e.limitAngles[handle] = angle
	if active {
		e.currentActiveLimits[handle] = true
	}
}

// forget drops the tracking state of a removed joint
func (e *Events) forget(handle ConstraintHandle) {
	delete(e.previousActiveLimits, handle)
	delete(e.currentActiveLimits, handle)
	delete(e.limitAngles, handle)
}

// forgetBody drops the sleep state of a removed body
func (e *Events) forgetBody(handle BodyHandle) {
	delete(e.sleepStates, handle)
}

// processSleepEvents emits an event for each body whose sleep state changed
// since the last tick. A body seen for the first time is only tracked.
func (e *Events) processSleepEvents(states []bodyState) {
	e.init()
	for _, state := range states {
		trackedState, exists := e.sleepStates[state.body]
		if !exists {
			e.sleepStates[state.body] = state.sleeping
			continue
		}

		if !trackedState && state.sleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: state.body})
			e.sleepStates[state.body] = true
		} else if trackedState && !state.sleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: state.body})
			e.sleepStates[state.body] = false
		}
	}
}

// processLimitEvents compares current and previous active limits to detect Enter/Stay/Exit.
// handles keeps the emission order deterministic.
func (e *Events) processLimitEvents(handles []ConstraintHandle) {
	for _, handle := range handles {
		angle := e.limitAngles[handle]
		current := e.currentActiveLimits[handle]
		previous := e.previousActiveLimits[handle]

		switch {
		case current && previous:
			e.buffer = append(e.buffer, LimitStayEvent{Joint: handle, Angle: angle})
		case current:
			e.buffer = append(e.buffer, LimitEnterEvent{Joint: handle, Angle: angle})
		case previous:
			e.buffer = append(e.buffer, LimitExitEvent{Joint: handle, Angle: angle})
		}
	}

	// Swap for next tick and clear current
	e.previousActiveLimits, e.currentActiveLimits = e.currentActiveLimits, e.previousActiveLimits
	clear(e.currentActiveLimits)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush(limitHandles []ConstraintHandle) {
	e.init()
	e.processLimitEvents(limitHandles)

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
