package ledger

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/stellar/go/xdr"
)

// Source yields closed ledgers in order. Next returns io.EOF when exhausted.
type Source interface {
	Next(ctx context.Context) (xdr.LedgerCloseMeta, error)
	Close() error
}

// FileSource reads base64 XDR LedgerCloseMeta values, one per line.
type FileSource struct {
	file    io.Closer
	scanner *bufio.Scanner
	line    int
}

func OpenFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledgers: %w", err)
	}
	return NewReaderSource(file), nil
}

// NewReaderSource reads from r and closes it on Close when it is an io.Closer.
func NewReaderSource(r io.Reader) *FileSource {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	src := &FileSource{scanner: scanner}
	if closer, ok := r.(io.Closer); ok {
		src.file = closer
	}
	return src
}

func (s *FileSource) Next(ctx context.Context) (xdr.LedgerCloseMeta, error) {
	for s.scanner.Scan() {
		s.line++
		if err := ctx.Err(); err != nil {
			return xdr.LedgerCloseMeta{}, err
		}
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var lcm xdr.LedgerCloseMeta
		if err := xdr.SafeUnmarshalBase64(string(line), &lcm); err != nil {
			return xdr.LedgerCloseMeta{}, fmt.Errorf("decode ledger at line %d: %w", s.line, err)
		}
		return lcm, nil
	}
	if err := s.scanner.Err(); err != nil {
		return xdr.LedgerCloseMeta{}, fmt.Errorf("scan ledgers: %w", err)
	}
	return xdr.LedgerCloseMeta{}, io.EOF
}

func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
