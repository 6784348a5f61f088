package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"binarycore/pkg/types"
)

func TestFileTapeSourceReadsLinesInOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tape.jsonl")
	content := `{"market_key_raw":"BTC_15m","timestamp_ms":1000,"up_price":0.5,"down_price":0.5}
{"market_key_raw":"ETH_1h","timestamp_ms":2000,"up_price":0.4,"down_price":0.6}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := OpenFileTapeSource(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	ctx := context.Background()

	raw, state, ok, err := src.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if raw != "BTC_15m" || state.TimestampMs != 1000 {
		t.Errorf("got %v %+v, want BTC_15m @1000", raw, state)
	}

	_, _, ok2, _ := src.Next(ctx)
	if !ok2 {
		t.Fatal("expected second line")
	}

	_, _, ok3, err := src.Next(ctx)
	if ok3 || err != nil {
		t.Errorf("expected EOF (ok=false, err=nil), got ok=%v err=%v", ok3, err)
	}
}

func TestFileDecisionSinkWritesOneJSONObjectPerLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewWriterDecisionSink(&buf)

	if err := sink.Emit(types.Decision{DecisionID: "a", ShouldTrade: true, Side: types.UP}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := sink.Emit(types.Decision{DecisionID: "b", ShouldTrade: false}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	dec := json.NewDecoder(&buf)
	var first, second types.Decision
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if first.DecisionID != "a" || second.DecisionID != "b" {
		t.Errorf("got %q, %q, want a, b in order", first.DecisionID, second.DecisionID)
	}
}
