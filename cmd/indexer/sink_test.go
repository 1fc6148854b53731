package main

import (
	"context"
	"path/filepath"
	"testing"

	"governorIndexer/internal/config"
	"governorIndexer/internal/indexer"
)

func TestMemorySinkHasNoCheckpoint(t *testing.T) {
	s, err := openSink(context.Background(), config.Config{Sink: config.SinkMemory})
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer s.backend.Close()

	if cp := s.checkpoint(filepath.Join(t.TempDir(), "checkpoint.json")); cp != nil {
		t.Fatalf("memory sink should not checkpoint, got %T", cp)
	}
}

func TestSQLiteSinkCheckpointsInDatabase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := openSink(ctx, config.Config{Sink: config.SinkSQLite, SQLitePath: filepath.Join(dir, "governor.db")})
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer s.backend.Close()

	cp := s.checkpoint(filepath.Join(dir, "checkpoint.json"))
	if err := cp.Save(ctx, 77); err != nil {
		t.Fatalf("save: %v", err)
	}
	last, ok, err := s.state.LoadState(ctx, checkpointName)
	if err != nil || !ok || last != 77 {
		t.Fatalf("state table mismatch: %d %v %v", last, ok, err)
	}
}

func TestJSONLSinkCheckpointsToFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := openSink(ctx, config.Config{Sink: config.SinkJSONL, JSONLOut: filepath.Join(dir, "out.jsonl")})
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer s.backend.Close()

	path := filepath.Join(dir, "checkpoint.json")
	if err := s.checkpoint(path).Save(ctx, 5); err != nil {
		t.Fatalf("save: %v", err)
	}
	fromFile := &indexer.StreamCheckpoint{Table: &indexer.FileState{Path: path}, Name: checkpointName}
	if last, ok, err := fromFile.Load(ctx); err != nil || !ok || last != 5 {
		t.Fatalf("file checkpoint mismatch: %d %v %v", last, ok, err)
	}
}
