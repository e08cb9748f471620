package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/histcmp/histcmp/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has output flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.DefValue != config.DefaultConfigFile {
			t.Errorf("expected default %q, got %q", config.DefaultConfigFile, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("force") == nil {
			t.Error("expected force flag")
		}
	})
}

// TestRunInitCmd tests configuration file generation.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".histcmp")

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}
		if err := cmd.RunE(cmd, nil); err != nil {
			t.Fatalf("init failed: %v", err)
		}

		cf, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("generated config does not load: %v", err)
		}

		enabled := cf.Rules.For("anything")
		if len(enabled) != 5 {
			t.Errorf("generated config enables %d checks, want 5", len(enabled))
		}
	})

	t.Run("template is valid YAML", func(t *testing.T) {
		t.Parallel()

		content, err := configTemplate.ReadFile("templates/histcmp.yaml")
		if err != nil {
			t.Fatalf("failed to read template: %v", err)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(content, &doc); err != nil {
			t.Fatalf("template is not valid YAML: %v", err)
		}
		if _, ok := doc["checks"]; !ok {
			t.Error("template missing checks section")
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".histcmp")
		if err := os.WriteFile(path, []byte("checks: {}\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}

		err := cmd.RunE(cmd, nil)
		if err == nil {
			t.Fatal("expected error for existing file")
		}
		if !strings.Contains(err.Error(), "already exists") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("force overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".histcmp")
		if err := os.WriteFile(path, []byte("old content"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		if err := cmd.Flags().Set("output", path); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("force", "true"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.RunE(cmd, nil); err != nil {
			t.Fatalf("init -f failed: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) == "old content" {
			t.Error("file was not overwritten")
		}
	})
}
