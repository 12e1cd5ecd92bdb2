package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("METADATA_BACKEND", "")
	t.Setenv("RANK_CANDIDATE_POOL", "")
	t.Setenv("SYNTH_TIMEOUT", "")
	t.Setenv("SYNTH_TEMPERATURE", "")

	cfg := Load()
	if cfg.MetadataBackend != "postgres" {
		t.Fatalf("expected default metadata backend postgres, got %q", cfg.MetadataBackend)
	}
	if cfg.RankCandidatePool != 20 || cfg.RankHeuristicLimit != 5 || cfg.RankSimilarityLimit != 3 {
		t.Fatalf("unexpected ranking defaults: %d %d %d", cfg.RankCandidatePool, cfg.RankHeuristicLimit, cfg.RankSimilarityLimit)
	}
	if cfg.SynthTimeout != 60*time.Second || cfg.SynthTemperature != 0.7 || cfg.SynthMaxNewTokens != 150 {
		t.Fatalf("unexpected synthesis defaults: %+v", cfg)
	}
	if cfg.FullTextLimit != 500 {
		t.Fatalf("expected full text limit 500, got %d", cfg.FullTextLimit)
	}
}

func TestLoadParsesOverridesAndIgnoresGarbage(t *testing.T) {
	t.Setenv("METADATA_BACKEND", "SQLite")
	t.Setenv("SYNTH_TIMEOUT", "5s")
	t.Setenv("RANK_CANDIDATE_POOL", "not-a-number")
	t.Setenv("NER_ENABLED", "false")

	cfg := Load()
	if cfg.MetadataBackend != "sqlite" {
		t.Fatalf("expected sqlite, got %q", cfg.MetadataBackend)
	}
	if cfg.SynthTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.SynthTimeout)
	}
	if cfg.RankCandidatePool != 20 {
		t.Fatalf("expected fallback for invalid int, got %d", cfg.RankCandidatePool)
	}
	if cfg.NEREnabled {
		t.Fatalf("expected NER disabled")
	}
}

func TestLoadFileSitsBetweenDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judgments.yaml")
	body := "metadata_backend: sqlite\nrank_similarity_limit: 4\nsynth_temperature: 0.2\nOCR_ENABLED: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("METADATA_BACKEND", "")
	t.Setenv("RANK_SIMILARITY_LIMIT", "")
	t.Setenv("OCR_ENABLED", "")
	t.Setenv("SYNTH_TEMPERATURE", "0.5")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.MetadataBackend != "sqlite" || cfg.RankSimilarityLimit != 4 || cfg.OCREnabled {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SynthTemperature != 0.5 {
		t.Fatalf("expected env to win over file, got %v", cfg.SynthTemperature)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("- just\n- a list\n"), 0o600)
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for non-mapping yaml")
	}
}
