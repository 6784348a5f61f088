package config

import (
	"os"
	"testing"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	os.Unsetenv("CORE_PARAMS_PATH")
	os.Unsetenv("CORE_HISTORY_CAPACITY")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ParamsPath == "" {
		t.Error("expected default params_path")
	}
	if cfg.ParamsPollMs != 3000 {
		t.Errorf("ParamsPollMs = %v, want 3000", cfg.ParamsPollMs)
	}
	if cfg.HistoryCapacity != 1000 {
		t.Errorf("HistoryCapacity = %v, want 1000", cfg.HistoryCapacity)
	}
	if cfg.RecentTradesCapacity != 100 {
		t.Errorf("RecentTradesCapacity = %v, want 100", cfg.RecentTradesCapacity)
	}
	if cfg.AuditEnabled {
		t.Error("expected audit disabled by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("CORE_HISTORY_CAPACITY", "2000")
	defer os.Unsetenv("CORE_HISTORY_CAPACITY")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryCapacity != 2000 {
		t.Errorf("HistoryCapacity = %v, want 2000 from env override", cfg.HistoryCapacity)
	}
}

func TestValidateRequiresAuditPathWhenEnabled(t *testing.T) {
	cfg := &Config{
		ParamsPath:           "x.json",
		ParamsPollMs:         1000,
		HistoryCapacity:      10,
		RecentTradesCapacity: 10,
		AuditEnabled:         true,
		AuditPath:            "",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when audit enabled without path")
	}
}

func TestValidateRejectsZeroPollInterval(t *testing.T) {
	cfg := &Config{ParamsPath: "x.json", ParamsPollMs: 0, HistoryCapacity: 10, RecentTradesCapacity: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero poll interval")
	}
}
