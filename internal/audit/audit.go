// Package audit implements the Decision Audit Log (C6, spec §4.6): an
// optional, append-only JSONL record of each decision tick for parity
// debugging. Writes are best-effort — an I/O failure is logged and
// swallowed, never propagated back into the decision path (spec §5: "must
// not block the decision").
//
// The writer borrows the teacher's store.Store idiom of serializing file
// access behind a single mutex, but appends rather than atomically
// replacing: a JSONL audit trail only needs atomicity at rotation
// boundaries, not on every line.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"binarycore/pkg/types"
)

// Record is one line of the audit log (spec §4.6 field list).
type Record struct {
	DecisionID  string         `json:"decision_id"`
	TimestampMs int64          `json:"timestamp_ms"`
	MarketKey   types.MarketKey `json:"market_key"`

	UpPrice     float64 `json:"up_price"`
	DownPrice   float64 `json:"down_price"`
	PriceSource string  `json:"price_source"`

	PriceBucketID    int    `json:"price_bucket_id"`
	PriceBucketLabel string `json:"price_bucket_label"`

	ConditioningBucket string  `json:"conditioning_bucket,omitempty"`
	InventoryRatio     float64 `json:"inventory_ratio"`

	EntryUpQualifies   bool         `json:"entry_up_qualifies"`
	EntryUpReason      types.Reason `json:"entry_up_reason"`
	EntryDownQualifies bool         `json:"entry_down_qualifies"`
	EntryDownReason    types.Reason `json:"entry_down_reason"`

	ChosenSide types.Side   `json:"chosen_side,omitempty"`
	Reason     types.Reason `json:"reason"`

	RawSize      float64 `json:"raw_size"`
	CappedSize   float64 `json:"capped_size"`
	SizeTableKey string  `json:"size_table_key,omitempty"`

	InventoryUpShares   float64 `json:"inventory_up_shares"`
	InventoryDownShares float64 `json:"inventory_down_shares"`

	FillModel        string  `json:"fill_model"`
	SnapshotSidePrice float64 `json:"snapshot_side_price"`
	ComputedFill      float64 `json:"computed_fill"`
	Bias              float64 `json:"bias,omitempty"`
	SlippageOffset    float64 `json:"slippage_offset,omitempty"`
}

// Sink appends audit records to a JSONL file. A nil *Sink (or one opened
// with enabled=false) is a safe no-op, so callers do not need to branch on
// whether auditing is configured.
type Sink struct {
	mu      sync.Mutex
	file    *os.File
	logger  *slog.Logger
	enabled bool
}

// Open creates (or appends to) the audit file at path. If enabled is false,
// Open returns a Sink that silently discards every Append call — the
// integrator calls Append unconditionally and leaves the enable/disable
// decision to configuration (spec §6: "AUDIT_ENABLED, default off").
func Open(path string, enabled bool, logger *slog.Logger) (*Sink, error) {
	logger = logger.With("component", "audit")
	if !enabled {
		return &Sink{enabled: false, logger: logger}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}

	return &Sink{file: f, logger: logger, enabled: true}, nil
}

// Append writes one record as a JSON line. Failures are logged, not
// returned as a blocking error to the decision path — callers should not
// treat a non-nil return as something that needs to unwind a decision; it
// exists only so tests can assert on write failures directly.
func (s *Sink) Append(rec Record) error {
	if s == nil || !s.enabled {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("audit record marshal failed", "error", err, "decision_id", rec.DecisionID)
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(data); err != nil {
		s.logger.Error("audit record write failed", "error", err, "decision_id", rec.DecisionID)
		return err
	}
	return nil
}

// Close closes the underlying file, if any.
func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}
