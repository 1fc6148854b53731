package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func fileCheckpoint(path string) *StreamCheckpoint {
	return &StreamCheckpoint{Table: &FileState{Path: path}, Name: "governor"}
}

func TestFileCheckpoint(t *testing.T) {
	ctx := context.Background()
	cp := fileCheckpoint(filepath.Join(t.TempDir(), "state", "checkpoint.json"))

	_, ok, err := cp.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected no checkpoint")
	}

	if err := cp.Save(ctx, 51234); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := cp.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok || got != 51234 {
		t.Fatalf("checkpoint mismatch: %d %v", got, ok)
	}
}

func TestFileStateKeepsStreamsApart(t *testing.T) {
	ctx := context.Background()
	state := &FileState{Path: filepath.Join(t.TempDir(), "checkpoint.json")}
	mainnet := &StreamCheckpoint{Table: state, Name: "governor"}
	replay := &StreamCheckpoint{Table: state, Name: "replay"}

	if err := mainnet.Save(ctx, 100); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := replay.Save(ctx, 7); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mainnet.Save(ctx, 101); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got, ok, err := mainnet.Load(ctx); err != nil || !ok || got != 101 {
		t.Fatalf("governor stream mismatch: %d %v %v", got, ok, err)
	}
	if got, ok, err := replay.Load(ctx); err != nil || !ok || got != 7 {
		t.Fatalf("replay stream mismatch: %d %v %v", got, ok, err)
	}
}

func TestFileStateCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := fileCheckpoint(path).Load(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}

type memoryStateTable map[string]uint32

func (m memoryStateTable) LoadState(ctx context.Context, name string) (uint32, bool, error) {
	v, ok := m[name]
	return v, ok, nil
}

func (m memoryStateTable) SaveState(ctx context.Context, name string, ledger uint32) error {
	m[name] = ledger
	return nil
}

func TestStreamCheckpointOverTable(t *testing.T) {
	ctx := context.Background()
	table := memoryStateTable{}
	cp := &StreamCheckpoint{Table: table, Name: "runner"}

	if err := cp.Save(ctx, 9); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := cp.Load(ctx)
	if err != nil || !ok || got != 9 {
		t.Fatalf("checkpoint mismatch: %d %v %v", got, ok, err)
	}
	if table["runner"] != 9 {
		t.Fatalf("state table not updated")
	}
}
