package state

type (
	Options struct {
		degree int
	}

	Option func(o *Options)
)

// WithTreeDegree sets the degree of the B-tree holding the units.
func WithTreeDegree(degree int) Option {
	return func(o *Options) {
		o.degree = degree
	}
}

func loadOptions(opts ...Option) *Options {
	options := &Options{
		degree: 32,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.degree < 2 {
		options.degree = 2
	}
	return options
}
