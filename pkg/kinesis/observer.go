package kinesis

import "time"

// Observer receives lifecycle notifications from controllers. Calls happen
// synchronously on the controller's goroutine.
type Observer interface {
	// EventHandled is called after a host event went through
	// Component.HandleEvent and any resulting update.
	EventHandled(component string, id EventID, changed bool, elapsed time.Duration)

	// FragmentUpdated is called after each update pass over a controller's
	// root fragment. parts is the number of parts that were dispatched.
	FragmentUpdated(component string, changed []DepID, parts int, elapsed time.Duration)

	Mounted(component string)
	Detached(component string)

	// Failed is called when a host failure aborted op.
	Failed(component, op string, err error)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) EventHandled(string, EventID, bool, time.Duration)     {}
func (NopObserver) FragmentUpdated(string, []DepID, int, time.Duration) {}
func (NopObserver) Mounted(string)                                      {}
func (NopObserver) Detached(string)                                     {}
func (NopObserver) Failed(string, string, error)                        {}
