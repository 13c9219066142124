package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomasrohde/risp/pkg/config"
	"github.com/thomasrohde/risp/pkg/evaluator"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Limits.MaxDepth != evaluator.DefaultMaxDepth {
		t.Errorf("got maxDepth %d, want %d", cfg.Limits.MaxDepth, evaluator.DefaultMaxDepth)
	}
	if cfg.Limits.TimeMs != 0 || cfg.Limits.MaxSteps != 0 {
		t.Errorf("expected unlimited time and steps, got %+v", cfg.Limits)
	}
	if cfg.Output.Pretty {
		t.Error("expected pretty output off by default")
	}
	if cfg.Trace.RunID != "cli" {
		t.Errorf("got runId %q, want cli", cfg.Trace.RunID)
	}
}

func TestDecode_PartialDocumentKeepsDefaults(t *testing.T) {
	cfg, err := config.Decode(strings.NewReader("limits:\n  timeMs: 250\noutput:\n  pretty: true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.TimeMs != 250 {
		t.Errorf("got timeMs %d, want 250", cfg.Limits.TimeMs)
	}
	if cfg.Limits.MaxDepth != evaluator.DefaultMaxDepth {
		t.Errorf("absent maxDepth should keep its default, got %d", cfg.Limits.MaxDepth)
	}
	if !cfg.Output.Pretty {
		t.Error("expected pretty output")
	}
	if cfg.Trace.RunID != "cli" {
		t.Errorf("got runId %q", cfg.Trace.RunID)
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	cfg, err := config.Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxDepth != evaluator.DefaultMaxDepth {
		t.Errorf("got maxDepth %d", cfg.Limits.MaxDepth)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "limits:\n  maxDepht: 5\n"},
		{"unknown section", "logging:\n  level: debug\n"},
		{"wrong type", "limits:\n  maxDepth: deep\n"},
		{"zero depth", "limits:\n  maxDepth: 0\n"},
		{"negative time", "limits:\n  timeMs: -1\n"},
		{"negative steps", "limits:\n  maxSteps: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Decode(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("expected error for %q", tt.doc)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risp.yaml")
	writeFile(t, path, "limits:\n  maxDepth: 50\ntrace:\n  runId: nightly\n")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxDepth != 50 || cfg.Trace.RunID != "nightly" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Path != path {
		t.Errorf("got path %q, want %q", cfg.Path, path)
	}
}

func TestLoadFile_ParseErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "limits: [1, 2\n")

	_, err := config.LoadFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "config: parse ") || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()

	// Nothing on disk: defaults.
	cfg, err := config.Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Path != "" || cfg.Limits.MaxDepth != evaluator.DefaultMaxDepth {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	// User file only.
	writeFile(t, filepath.Join(home, ".risp", "config.yaml"), "limits:\n  maxDepth: 200\n")
	cfg, err = config.Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxDepth != 200 {
		t.Errorf("expected user config, got maxDepth %d", cfg.Limits.MaxDepth)
	}

	// Project file wins over the user file.
	writeFile(t, filepath.Join(project, config.ProjectFile), "limits:\n  maxDepth: 300\n")
	cfg, err = config.Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxDepth != 300 {
		t.Errorf("expected project config, got maxDepth %d", cfg.Limits.MaxDepth)
	}
}

func TestLoad_MalformedProjectFileIsAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, filepath.Join(project, config.ProjectFile), "nonsense: true\n")

	if _, err := config.Load(project); err == nil {
		t.Fatal("expected error for unknown key in project config")
	}
}

func TestBudget(t *testing.T) {
	cfg := config.Default()
	b := cfg.Budget()
	if b.MaxDepth == nil || *b.MaxDepth != evaluator.DefaultMaxDepth {
		t.Errorf("got MaxDepth %v", b.MaxDepth)
	}
	if b.TimeMs != nil || b.MaxSteps != nil {
		t.Error("zero limits should map to unlimited")
	}

	cfg.Limits.TimeMs = 100
	cfg.Limits.MaxSteps = 5000
	b = cfg.Budget()
	if b.TimeMs == nil || *b.TimeMs != 100 {
		t.Errorf("got TimeMs %v", b.TimeMs)
	}
	if b.MaxSteps == nil || *b.MaxSteps != 5000 {
		t.Errorf("got MaxSteps %v", b.MaxSteps)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.TimeMs = 1500
	cfg.Output.Pretty = true

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "limits:\n  maxDepth: 10000\n") {
		t.Errorf("expected two-space indented output, got:\n%s", data)
	}

	back, err := config.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("marshalled config does not decode: %v", err)
	}
	if back.Limits != cfg.Limits || back.Output != cfg.Output || back.Trace != cfg.Trace {
		t.Errorf("round trip changed config: got %+v, want %+v", back, cfg)
	}
}
