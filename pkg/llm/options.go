package llm

import "github.com/rs/zerolog"

// Options holds the collaborators shared by all adapters.
type Options struct {
	Logger   zerolog.Logger
	Repairer JSONRepairer
}

// Option configures adapter collaborators.
type Option func(*Options)

// WithLogger sets the logger adapters use for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithJSONRepairer replaces the repairer used for malformed tool arguments.
func WithJSONRepairer(r JSONRepairer) Option {
	return func(o *Options) {
		if r != nil {
			o.Repairer = r
		}
	}
}

// ApplyOptions resolves options over the defaults: a no-op logger and
// DefaultRepairer.
func ApplyOptions(opts ...Option) Options {
	o := Options{
		Logger:   zerolog.Nop(),
		Repairer: DefaultRepairer,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ComponentLogger derives the logger an adapter uses.
func (o Options) ComponentLogger(provider, kind string) zerolog.Logger {
	return o.Logger.With().
		Str("component", kind).
		Str("provider", provider).
		Logger()
}
