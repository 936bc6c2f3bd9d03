package txsystem

type Options struct {
	initialRound        uint64
	beginBlockFunctions []func(round uint64) error
	endBlockFunctions   []func(round uint64) error
}

type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{}
}

func WithBeginBlockFunctions(funcs ...func(round uint64) error) Option {
	return func(g *Options) {
		g.beginBlockFunctions = append(g.beginBlockFunctions, funcs...)
	}
}

func WithEndBlockFunctions(funcs ...func(round uint64) error) Option {
	return func(g *Options) {
		g.endBlockFunctions = append(g.endBlockFunctions, funcs...)
	}
}

// WithCurrentRound sets the round the tx system starts in, ie the round of
// the last committed block.
func WithCurrentRound(round uint64) Option {
	return func(g *Options) {
		g.initialRound = round
	}
}
