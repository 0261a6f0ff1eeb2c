package kinesis

import "log/slog"

// Option configures a Controller.
type Option func(*options)

type options struct {
	name        string
	logger      *slog.Logger
	observer    Observer
	boundUpdate func([]DepID) error
}

// WithName sets the name used in logs and observer calls. The default is
// the component's type name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithBoundUpdate installs a hook called with the changed ids after each
// notified update, once the controller's own fragment is in sync and no
// borrow of the component is held.
func WithBoundUpdate(fn func(changed []DepID) error) Option {
	return func(o *options) { o.boundUpdate = fn }
}
