package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GDB.Binary != "gdb" {
		t.Fatalf("expected default binary, got %q", cfg.GDB.Binary)
	}
	if cfg.GDB.Prompt != "(gdb) " {
		t.Fatalf("expected default prompt, got %q", cfg.GDB.Prompt)
	}
	if cfg.Stack.Words != 24 {
		t.Fatalf("expected default word count, got %d", cfg.Stack.Words)
	}
	if cfg.Drain.PollIntervalMS != 2 || cfg.Drain.TimeoutMS != 0 {
		t.Fatalf("unexpected drain defaults: %+v", cfg.Drain)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `config_version: 1
gdb:
  binary: gdb-multiarch
  args: ["-q"]
stack:
  words: 8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GDB.Binary != "gdb-multiarch" {
		t.Fatalf("expected override, got %q", cfg.GDB.Binary)
	}
	if len(cfg.GDB.Args) != 1 || cfg.GDB.Args[0] != "-q" {
		t.Fatalf("unexpected args: %v", cfg.GDB.Args)
	}
	if cfg.Stack.Words != 8 {
		t.Fatalf("expected override, got %d", cfg.Stack.Words)
	}
	// Untouched keys keep their defaults.
	if cfg.GDB.Prompt != "(gdb) " {
		t.Fatalf("expected default prompt, got %q", cfg.GDB.Prompt)
	}
	if cfg.Drain.PollIntervalMS != 2 {
		t.Fatalf("expected default poll interval, got %d", cfg.Drain.PollIntervalMS)
	}
}

func TestLoadRequiresConfigVersion(t *testing.T) {
	path := writeConfig(t, "gdb:\n  binary: gdb\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	path := writeConfig(t, "config_version: 99\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected version mismatch error, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `config_version: 1
stack:
  words: -1
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "stack.words") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected %q, got %q", path, written)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("unexpected version: %d", cfg.ConfigVersion)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}
