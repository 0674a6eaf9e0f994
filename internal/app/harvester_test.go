package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/boardpull/trello-harvester/internal/logger"
	"github.com/boardpull/trello-harvester/internal/storage"
	"github.com/boardpull/trello-harvester/pkg/sinks"
)

// stubAPI returns canned payloads keyed by board id. A nil entry simulates
// the client's absence result.
type stubAPI struct {
	boards any
	detail map[string]any
	cards  map[string]any
}

func (s *stubAPI) ListMyBoards(context.Context) any { return s.boards }
func (s *stubAPI) GetBoard(_ context.Context, id string) any {
	return s.detail[id]
}
func (s *stubAPI) ListCardsOnBoard(_ context.Context, id string) any {
	return s.cards[id]
}

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return v
}

func newTestHarvester(t *testing.T, api BoardAPI, dir string) *Harvester {
	t.Helper()

	built, err := sinks.BuildAll(sinks.DefaultRegistry(), []sinks.SinkConfig{
		{ID: "files", Type: sinks.TypeFile, File: &sinks.FileSinkConfig{Dir: dir}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}

	store, err := storage.NewStore("none", "", storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	return &Harvester{
		api:    api,
		fanout: sinks.NewFanout(built),
		store:  store,
		log:    logger.NopLogger{},
	}
}

func TestRunOncePersistsBoardsDetailsAndCards(t *testing.T) {
	dir := t.TempDir()
	api := &stubAPI{
		boards: decodeJSON(t, `[{"id":"b1","name":"Demo"}]`),
		detail: map[string]any{"b1": decodeJSON(t, `{"id":"b1","name":"Demo","closed":false}`)},
		cards:  map[string]any{"b1": decodeJSON(t, `[{"id":"c1","name":"Task"}]`)},
	}

	h := newTestHarvester(t, api, dir)
	if err := h.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	for _, name := range []string{"boards.json", "board_b1.json", "cards_b1.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
}

func TestRunOnceSkipsAbsentResults(t *testing.T) {
	dir := t.TempDir()
	api := &stubAPI{
		boards: decodeJSON(t, `[{"id":"b1","name":"Demo"},{"id":"b2","name":"Archive"}]`),
		detail: map[string]any{"b1": decodeJSON(t, `{"id":"b1"}`)}, // b2 detail fails
		cards:  map[string]any{"b2": decodeJSON(t, `[]`)},          // b1 cards fail
	}

	h := newTestHarvester(t, api, dir)
	if err := h.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	for _, name := range []string{"boards.json", "board_b1.json", "cards_b2.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
	for _, name := range []string{"board_b2.json", "cards_b1.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be absent, err=%v", name, err)
		}
	}
}

func TestRunOnceFailsWhenBoardListingIsAbsent(t *testing.T) {
	h := newTestHarvester(t, &stubAPI{boards: nil}, t.TempDir())
	if err := h.runOnce(context.Background()); err == nil {
		t.Fatal("expected error when board listing produced no data")
	}
}

func TestRunOnceSkipsUnchangedSnapshots(t *testing.T) {
	dir := t.TempDir()
	api := &stubAPI{
		boards: decodeJSON(t, `[{"id":"b1","name":"Demo"}]`),
		detail: map[string]any{"b1": decodeJSON(t, `{"id":"b1","name":"Demo"}`)},
		cards:  map[string]any{"b1": decodeJSON(t, `[]`)},
	}

	h := newTestHarvester(t, api, dir)
	store, err := storage.NewStore("bbolt", filepath.Join(t.TempDir(), "snap.db"), storage.Options{})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	h.store = store
	defer store.Close()

	if err := h.runOnce(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	boardFile := filepath.Join(dir, "board_b1.json")
	if err := os.Remove(boardFile); err != nil {
		t.Fatalf("remove board file: %v", err)
	}

	// Second pass with identical payloads must not rewrite the file.
	if err := h.runOnce(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if _, err := os.Stat(boardFile); !os.IsNotExist(err) {
		t.Errorf("expected unchanged snapshot to be skipped, err=%v", err)
	}
}
