package sinks

import (
	"context"
	"errors"
	"testing"
)

type stubSink struct {
	id    string
	typ   string
	err   error
	calls int
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Write(context.Context, Artifact) error {
	s.calls++
	return s.err
}

func TestFanoutWriteAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Sink{
		&stubSink{id: "ok", typ: "file"},
		&stubSink{id: "bad", typ: "file", err: errors.New("failed")},
	})

	count, err := fanout.Write(context.Background(), Artifact{Kind: KindBoards})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutSkipsNilSinks(t *testing.T) {
	fanout := NewFanout([]Sink{nil, &stubSink{id: "ok", typ: "stdout"}})
	if fanout.Size() != 1 {
		t.Fatalf("expected 1 sink, got %d", fanout.Size())
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	built, err := BuildAll(reg, []SinkConfig{
		{ID: "files", Type: TypeFile, File: &FileSinkConfig{Dir: t.TempDir()}},
		{ID: "console", Type: TypeStdout},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(built))
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := reg.SinkFor(SinkConfig{ID: "x", Type: "carrier-pigeon"}, nil); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}
