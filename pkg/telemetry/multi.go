package telemetry

import (
	"time"

	"github.com/kinesis-dev/kinesis/pkg/kinesis"
)

type multi []kinesis.Observer

// Multi fans observer calls out to every non-nil observer, in order.
func Multi(observers ...kinesis.Observer) kinesis.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) EventHandled(component string, id kinesis.EventID, changed bool, elapsed time.Duration) {
	for _, o := range m {
		o.EventHandled(component, id, changed, elapsed)
	}
}

func (m multi) FragmentUpdated(component string, changed []kinesis.DepID, parts int, elapsed time.Duration) {
	for _, o := range m {
		o.FragmentUpdated(component, changed, parts, elapsed)
	}
}

func (m multi) Mounted(component string) {
	for _, o := range m {
		o.Mounted(component)
	}
}

func (m multi) Detached(component string) {
	for _, o := range m {
		o.Detached(component)
	}
}

func (m multi) Failed(component, op string, err error) {
	for _, o := range m {
		o.Failed(component, op, err)
	}
}
