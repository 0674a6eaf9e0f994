package sinks

import "context"

// stdoutSink emits each artifact through the structured logger. Mostly
// useful in development and as a liveness check alongside the file sink.
type stdoutSink struct {
	id  string
	log Logger
}

func newStdoutSink(cfg SinkConfig, log Logger) (Sink, error) {
	return &stdoutSink{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (s *stdoutSink) ID() string   { return s.id }
func (s *stdoutSink) Type() string { return TypeStdout }

func (s *stdoutSink) Write(_ context.Context, art Artifact) error {
	s.log.InfoObj("artifact collected", "artifact", map[string]any{
		"sink_id":      s.id,
		"kind":         art.Kind,
		"resource_id":  art.ResourceID,
		"collected_at": art.CollectedAt,
	})
	return nil
}
