package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint persists the last fully processed ledger.
type Checkpoint interface {
	Load(ctx context.Context) (uint32, bool, error)
	Save(ctx context.Context, ledger uint32) error
}

// StateTable keeps last_processed_ledger per named stream. The SQL backends
// implement it over their indexer_state table; FileState keeps it in a JSON file.
type StateTable interface {
	LoadState(ctx context.Context, name string) (uint32, bool, error)
	SaveState(ctx context.Context, name string, ledger uint32) error
}

// StreamCheckpoint is the checkpoint of one named stream in a StateTable.
type StreamCheckpoint struct {
	Table StateTable
	Name  string
}

func (c *StreamCheckpoint) Load(ctx context.Context) (uint32, bool, error) {
	if c == nil || c.Table == nil {
		return 0, false, nil
	}
	return c.Table.LoadState(ctx, c.Name)
}

func (c *StreamCheckpoint) Save(ctx context.Context, ledger uint32) error {
	if c == nil || c.Table == nil {
		return nil
	}
	return c.Table.SaveState(ctx, c.Name, ledger)
}

type streamState struct {
	LastProcessedLedger uint32 `json:"last_processed_ledger"`
	UpdatedAt           string `json:"updated_at"`
}

// FileState is a StateTable stored as one JSON object keyed by stream name,
// mirroring the rows of indexer_state.
type FileState struct {
	Path string
}

func (f *FileState) LoadState(ctx context.Context, name string) (uint32, bool, error) {
	rows, err := f.read()
	if err != nil {
		return 0, false, err
	}
	row, ok := rows[name]
	return row.LastProcessedLedger, ok, nil
}

// SaveState rewrites the file atomically, keeping the other streams.
func (f *FileState) SaveState(ctx context.Context, name string, ledger uint32) error {
	rows, err := f.read()
	if err != nil {
		return err
	}
	rows[name] = streamState{
		LastProcessedLedger: ledger,
		UpdatedAt:           time.Now().UTC().Format(time.RFC3339Nano),
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", name, err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (f *FileState) read() (map[string]streamState, error) {
	rows := make(map[string]streamState)
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return rows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", f.Path, err)
	}
	return rows, nil
}
