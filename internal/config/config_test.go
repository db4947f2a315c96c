package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port: %s", cfg.Server.Port)
	}
	if cfg.Fees.FeePctByVenue["Skinport"] != 0.12 {
		t.Fatalf("skinport fee: %g", cfg.Fees.FeePctByVenue["Skinport"])
	}
	if cfg.Batch.Workers != 3 || cfg.Batch.PaceMs != 200 {
		t.Fatalf("batch defaults: %+v", cfg.Batch)
	}
	if cfg.CSFloat.PageSize != 50 {
		t.Fatalf("page size: %d", cfg.CSFloat.PageSize)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"server":{"port":"9090"},"batch":{"workers":5},"fees":{"fee_pct_by_venue":{"Steam":0.1},"fx_haircut_pct":0.02}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port: %s", cfg.Server.Port)
	}
	if cfg.Batch.Workers != 5 {
		t.Fatalf("workers: %d", cfg.Batch.Workers)
	}
	if cfg.Fees.FeePctByVenue["Steam"] != 0.1 {
		t.Fatalf("steam fee: %g", cfg.Fees.FeePctByVenue["Steam"])
	}
	if cfg.Fees.FxHaircutPct != 0.02 {
		t.Fatalf("fx haircut: %g", cfg.Fees.FxHaircutPct)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("CSFLOAT_API_KEY", "secret")
	t.Setenv("BATCH_PACE_MS", "0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port: %s", cfg.Server.Port)
	}
	if cfg.CSFloat.APIKey != "secret" {
		t.Fatalf("csfloat key: %q", cfg.CSFloat.APIKey)
	}
	if cfg.Batch.PaceMs != 0 {
		t.Fatalf("pace: %d", cfg.Batch.PaceMs)
	}
}

func TestLoad_RejectsBadFees(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"fees":{"fee_pct_by_venue":{"Steam":1.5}}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want validation error for fee >= 1")
	}
}
