package ogg

import "github.com/pion/logging"

// WriterOption configures a StreamWriter. The shape mirrors the functional
// options pion/webrtc uses for its own configuration surfaces (e.g.
// SettingEngine, InterceptorRegistry) rather than a config-file library:
// this is a library constructor, not a service with an environment to
// parse.
type WriterOption func(*StreamWriter)

// WithWriterLoggerFactory sets the logging.LoggerFactory the writer uses
// for diagnostics. Defaults to logging.NewDefaultLoggerFactory() when not
// supplied.
func WithWriterLoggerFactory(factory logging.LoggerFactory) WriterOption {
	return func(sw *StreamWriter) {
		sw.log = factory.NewLogger("ogg.writer")
	}
}
