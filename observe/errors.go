package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: trace sample ratio must be within [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unknown log level")

	// ErrNilObserver is returned by the *FromObserver constructors.
	ErrNilObserver = errors.New("observe: nil observer")
)

// Names accepted by Config. The empty string selects the default.
var (
	TracingExporters = []string{"otlp", "stdout", "none"}
	MetricsExporters = []string{"otlp", "prometheus", "stdout", "none"}
	LogLevels        = []string{"debug", "info", "warn", "error"}
)
