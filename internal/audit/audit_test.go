package audit

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"binarycore/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSinkDisabledIsNoOp(t *testing.T) {
	t.Parallel()

	s, err := Open(filepath.Join(t.TempDir(), "audit.jsonl"), false, testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Append(Record{DecisionID: "x"}); err != nil {
		t.Fatalf("append on disabled sink should not error: %v", err)
	}
}

func TestSinkAppendsJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := Open(path, true, testLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Append(Record{DecisionID: "a", MarketKey: types.BTC15m, Reason: types.ReasonUpPriceBand}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(Record{DecisionID: "b", MarketKey: types.ETH15m, Reason: types.ReasonCadenceBlocked}); err != nil {
		t.Fatalf("append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open for read: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var rec Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.DecisionID != "a" || rec.MarketKey != types.BTC15m {
		t.Errorf("got %+v, want decision_id=a market=BTC_15m", rec)
	}
}

func TestSinkNilIsSafe(t *testing.T) {
	t.Parallel()

	var s *Sink
	if err := s.Append(Record{}); err != nil {
		t.Errorf("nil sink Append should be a no-op, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil sink Close should be a no-op, got %v", err)
	}
}
