package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.URL == "" {
		t.Error("default API URL must be set")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		t.Error("default API timeout must be positive")
	}

	wantTriggers := []string{"mention", "wikilink", "template", "tag"}
	for _, name := range wantTriggers {
		tr, ok := cfg.Triggers[name]
		if !ok {
			t.Errorf("default trigger %q missing", name)
			continue
		}
		if tr.Marker == "" {
			t.Errorf("trigger %q has no marker", name)
		}
		if tr.Pattern == "" {
			t.Errorf("trigger %q has no pattern", name)
		}
		if tr.MaxLength <= 0 {
			t.Errorf("trigger %q has no length cap", name)
		}
	}

	if !cfg.Triggers["tag"].Static {
		t.Error("tag trigger must be roster-only")
	}
	if cfg.Triggers["mention"].MaxSpaces != 5 {
		t.Errorf("mention MaxSpaces = %d, want 5", cfg.Triggers["mention"].MaxSpaces)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
url = "https://test.wiki/api.php"

[autocomplete.mention]
marker = "@@"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.API.URL != "https://test.wiki/api.php" {
		t.Errorf("API URL not overridden: %q", cfg.API.URL)
	}
	if cfg.API.TimeoutSeconds != DefaultConfig().API.TimeoutSeconds {
		t.Errorf("unset timeout must keep default, got %d", cfg.API.TimeoutSeconds)
	}

	mention := cfg.Triggers["mention"]
	if mention.Marker != "@@" {
		t.Errorf("mention marker not overridden: %q", mention.Marker)
	}
	def := DefaultConfig().Triggers["mention"]
	if mention.MaxLength != def.MaxLength {
		t.Errorf("partial trigger section must keep default MaxLength, got %d", mention.MaxLength)
	}
	if mention.Pattern != def.Pattern {
		t.Errorf("partial trigger section must keep default Pattern, got %q", mention.Pattern)
	}
	if mention.MinLength != def.MinLength {
		t.Errorf("partial trigger section must keep default MinLength, got %d", mention.MinLength)
	}
	// a zeroed MaxSpaces would flip name plausibility into
	// letters-and-digits-only mode and cut off spaced remote lookups
	if mention.MaxSpaces != def.MaxSpaces {
		t.Errorf("partial trigger section must keep default MaxSpaces, got %d", mention.MaxSpaces)
	}
	if mention.CharBlacklist != def.CharBlacklist {
		t.Errorf("partial trigger section must keep default CharBlacklist, got %q", mention.CharBlacklist)
	}

	if _, ok := cfg.Triggers["wikilink"]; !ok {
		t.Error("triggers absent from the file must survive")
	}
}

func TestLoadConfigCustomLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[timestamps.layouts]
iso-hm = "2006-01-02 15:04"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Timestamps.Layouts["iso-hm"]; got != "2006-01-02 15:04" {
		t.Errorf("custom layout missing: %q", got)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg == nil {
		t.Fatal("InitConfig returned nil config")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file should have been created: %v", err)
	}

	// a second call must read the file back rather than recreate it
	again, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig reload: %v", err)
	}
	if again.API.URL != cfg.API.URL {
		t.Errorf("reloaded config diverged: %q vs %q", again.API.URL, cfg.API.URL)
	}
}
