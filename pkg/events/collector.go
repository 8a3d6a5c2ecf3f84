package events

// Collector accumulates events raised during a state transition. Aggregates
// that are copied on write clone it with Fork so siblings never share a
// backing array.
type Collector struct {
	events []DomainEvent
}

// Record appends events.
func (c *Collector) Record(evts ...DomainEvent) {
	c.events = append(c.events, evts...)
}

// Events returns the recorded events without clearing them.
func (c Collector) Events() []DomainEvent {
	return c.events
}

// Fork returns an independent copy.
func (c Collector) Fork() Collector {
	if len(c.events) == 0 {
		return Collector{}
	}
	out := make([]DomainEvent, len(c.events))
	copy(out, c.events)
	return Collector{events: out}
}
