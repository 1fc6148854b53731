package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"governorIndexer/internal/config"
	"governorIndexer/internal/indexer"
	"governorIndexer/internal/storage"
	"governorIndexer/internal/storage/postgres"
	"governorIndexer/internal/storage/sqlite"
)

const checkpointName = "governor"

type sink struct {
	backend storage.Backend
	state   indexer.StateTable
	// ephemeral sinks are never checkpointed.
	ephemeral bool
}

// checkpoint keeps progress next to the data when the sink is a database.
func (s sink) checkpoint(path string) indexer.Checkpoint {
	if s.ephemeral {
		return nil
	}
	table := s.state
	if table == nil {
		table = &indexer.FileState{Path: path}
	}
	return &indexer.StreamCheckpoint{Table: table, Name: checkpointName}
}

func openSink(ctx context.Context, cfg config.Config) (sink, error) {
	switch cfg.Sink {
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return sink{}, err
		}
		return sink{backend: store, state: store}, nil
	case config.SinkSQLite:
		if err := ensureDir(cfg.SQLitePath); err != nil {
			return sink{}, err
		}
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return sink{}, err
		}
		return sink{backend: store, state: store}, nil
	case config.SinkJSONL:
		store, err := storage.NewJSONLStore(cfg.JSONLOut)
		if err != nil {
			return sink{}, err
		}
		return sink{backend: store}, nil
	case config.SinkMemory:
		return sink{backend: storage.NewMemoryStore(), ephemeral: true}, nil
	default:
		return sink{}, fmt.Errorf("unsupported sink: %s", cfg.Sink)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}
