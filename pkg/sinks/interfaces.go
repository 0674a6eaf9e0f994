package sinks

import "context"

// Sink persists or forwards one harvested artifact (file, stdout, HTTP, ...).
type Sink interface {
	ID() string
	Type() string
	Write(ctx context.Context, art Artifact) error
}
