package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileSink writes each artifact payload verbatim as a pretty-printed JSON
// file under a configured directory: boards.json, board_{id}.json,
// cards_{id}.json.
type fileSink struct {
	id  string
	dir string
	log Logger
}

func newFileSink(cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.File == nil || cfg.File.Dir == "" {
		return nil, fmt.Errorf("sink %q missing file configuration", cfg.ID)
	}
	if err := os.MkdirAll(cfg.File.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &fileSink{
		id:  cfg.ID,
		dir: cfg.File.Dir,
		log: ensureLogger(log),
	}, nil
}

func (s *fileSink) ID() string   { return s.id }
func (s *fileSink) Type() string { return TypeFile }

func (s *fileSink) Write(_ context.Context, art Artifact) error {
	data, err := MarshalPayload(art.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", art.Key(), err)
	}

	path := filepath.Join(s.dir, art.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.log.DebugObj("artifact written", "file_artifact", map[string]any{
		"sink_id": s.id,
		"path":    path,
		"bytes":   len(data),
	})
	return nil
}

// MarshalPayload renders a payload the way the files are expected on disk:
// UTF-8 passed through unescaped, four-space indentation, trailing newline.
func MarshalPayload(payload any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
