// Package replay provides a JSONL-backed TapeSource/DecisionSink pair. It
// exists purely to make internal/core's reference contracts exercisable in
// tests and via cmd/replay — it never talks to a network, order book, or
// wallet, so it is not the venue connectivity the spec places out of scope.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"binarycore/pkg/types"
)

// tapeLine is the on-disk shape of one tape-ingress record (spec §6).
type tapeLine struct {
	MarketKeyRaw string  `json:"market_key_raw"`
	TimestampMs  int64   `json:"timestamp_ms"`
	UpPrice      float64 `json:"up_price"`
	DownPrice    float64 `json:"down_price"`
}

// FileTapeSource reads tape ticks from a JSONL file, one record per line.
type FileTapeSource struct {
	f       *os.File
	scanner *bufio.Scanner
}

// OpenFileTapeSource opens path for sequential reading.
func OpenFileTapeSource(path string) (*FileTapeSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tape file: %w", err)
	}
	return &FileTapeSource{f: f, scanner: bufio.NewScanner(f)}, nil
}

// Next implements core.TapeSource.
func (s *FileTapeSource) Next(ctx context.Context) (string, types.TapeState, bool, error) {
	select {
	case <-ctx.Done():
		return "", types.TapeState{}, false, ctx.Err()
	default:
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", types.TapeState{}, false, err
		}
		return "", types.TapeState{}, false, nil
	}

	var line tapeLine
	if err := json.Unmarshal(s.scanner.Bytes(), &line); err != nil {
		return "", types.TapeState{}, false, fmt.Errorf("parse tape line: %w", err)
	}

	state := types.TapeState{
		TimestampMs: line.TimestampMs,
		UpPrice:     line.UpPrice,
		DownPrice:   line.DownPrice,
	}
	return line.MarketKeyRaw, state, true, nil
}

// Close closes the underlying file.
func (s *FileTapeSource) Close() error {
	return s.f.Close()
}

// FileDecisionSink appends one JSON object per emitted Decision.
type FileDecisionSink struct {
	w   io.Writer
	enc *json.Encoder
	c   io.Closer
}

// CreateFileDecisionSink creates (truncating) path for writing decisions.
func CreateFileDecisionSink(path string) (*FileDecisionSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create decision file: %w", err)
	}
	return &FileDecisionSink{w: f, enc: json.NewEncoder(f), c: f}, nil
}

// NewWriterDecisionSink wraps an arbitrary io.Writer (used by tests to
// assert against an in-memory buffer without touching disk).
func NewWriterDecisionSink(w io.Writer) *FileDecisionSink {
	return &FileDecisionSink{w: w, enc: json.NewEncoder(w)}
}

// Emit implements core.DecisionSink.
func (s *FileDecisionSink) Emit(d types.Decision) error {
	return s.enc.Encode(d)
}

// Close closes the underlying file, if any.
func (s *FileDecisionSink) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
