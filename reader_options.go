package ogg

import "github.com/pion/logging"

// ReaderOption configures a BitStreamReader.
type ReaderOption func(*BitStreamReader)

// WithReaderLoggerFactory sets the logging.LoggerFactory the reader uses
// for diagnostics. Defaults to logging.NewDefaultLoggerFactory() when not
// supplied.
func WithReaderLoggerFactory(factory logging.LoggerFactory) ReaderOption {
	return func(r *BitStreamReader) {
		r.log = factory.NewLogger("ogg.reader")
	}
}
