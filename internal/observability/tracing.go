package observability

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
)

// NoopTracer is the default tracer; all spans are no-ops
type NoopTracer struct{}

type noopSpan struct{}

func (noopSpan) SetAttr(string, any) {}
func (noopSpan) End()                {}

// NewNoopTracer returns a tracer whose spans do nothing
func NewNoopTracer() interfaces.Tracer {
	return NoopTracer{}
}

// StartSpan returns a no-op span
func (NoopTracer) StartSpan(string) interfaces.Span {
	return noopSpan{}
}

// LogTracer emits span lifecycle events to the arbor logger.
// Used when tracing is enabled without an external backend.
type LogTracer struct {
	logger arbor.ILogger
}

// NewLogTracer returns a tracer backed by structured log events
func NewLogTracer(logger arbor.ILogger) interfaces.Tracer {
	return &LogTracer{logger: logger}
}

// StartSpan opens a logged span
func (t *LogTracer) StartSpan(name string) interfaces.Span {
	return &logSpan{
		name:    name,
		started: time.Now(),
		attrs:   make(map[string]any),
		logger:  t.logger,
	}
}

type logSpan struct {
	name    string
	started time.Time
	attrs   map[string]any
	logger  arbor.ILogger
}

func (s *logSpan) SetAttr(key string, value any) {
	s.attrs[key] = value
}

func (s *logSpan) End() {
	event := s.logger.Debug().
		Str("span", s.name).
		Dur("duration", time.Since(s.started))
	for k, v := range s.attrs {
		event = event.Interface(k, v)
	}
	event.Msg("Span completed")
}
