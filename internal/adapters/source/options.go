package source

import "github.com/okian/tradeboard/pkg/logger"

type options struct {
	sheet    string
	skipRows int
	logger   logger.Logger
}

func defaultOptions() options {
	return options{logger: logger.Nop()}
}

// Option applies a configuration option to a reader.
type Option func(*options)

// WithSheet selects the worksheet to read. The first sheet is used when empty.
// CSV sources ignore it.
func WithSheet(name string) Option {
	return func(o *options) {
		o.sheet = name
	}
}

// WithSkipRows drops the first n physical rows, e.g. a header line.
func WithSkipRows(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.skipRows = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
