package kinesis

import "github.com/kinesis-dev/kinesis/pkg/dom"

// EventRegistry hands out one host callback per event id. Callbacks are
// created on first request and cached for the registry's lifetime, so the
// same id always resolves to the same callback identity, across remounts
// too.
type EventRegistry struct {
	register  func(EventID)
	callbacks map[EventID]*dom.Callback
}

// NewEventRegistry returns a registry whose callbacks call register with
// their id. A nil register yields callbacks that do nothing.
func NewEventRegistry(register func(EventID)) *EventRegistry {
	return &EventRegistry{
		register:  register,
		callbacks: make(map[EventID]*dom.Callback),
	}
}

// Get returns the callback for id.
func (r *EventRegistry) Get(id EventID) *dom.Callback {
	if cb, ok := r.callbacks[id]; ok {
		return cb
	}
	cb := dom.NewCallback(func() {
		if r.register != nil {
			r.register(id)
		}
	})
	r.callbacks[id] = cb
	return cb
}

// Len returns the number of cached callbacks.
func (r *EventRegistry) Len() int {
	return len(r.callbacks)
}
