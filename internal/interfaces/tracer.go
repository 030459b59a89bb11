package interfaces

// Span is one traced operation. Implementations must be safe to use
// when tracing is disabled (no-op).
type Span interface {
	SetAttr(key string, value any)
	End()
}

// Tracer creates spans around pipeline runs, stages and LLM calls
type Tracer interface {
	StartSpan(name string) Span
}
