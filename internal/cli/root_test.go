package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/lukis/internal/config"
)

// writeConfig writes a configuration file keeping data under a temp directory.
func writeConfig(t *testing.T, extra string) (path, dataDir string) {
	t.Helper()

	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	path = filepath.Join(dir, "config.toml")

	content := fmt.Sprintf("data_dir = %q\n%s", dataDir, extra)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, dataDir
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")
	defer SetVersion("", "", "")

	if version != "1.0.0" {
		t.Errorf("version = %q, want %q", version, "1.0.0")
	}
	if commit != "abc123" {
		t.Errorf("commit = %q, want %q", commit, "abc123")
	}
	if date != "2024-01-01" {
		t.Errorf("date = %q, want %q", date, "2024-01-01")
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"paint", "drawings", "config"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected %q subcommand, got %v (err %v)", name, cmd, err)
		}
	}

	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	path, dataDir := writeConfig(t, "mode = \"whiteboard\"\n\n[server]\naddr = \"\"\n")

	out, err := execute(t, "--config", path, "config")
	if err != nil {
		t.Fatalf("config command error = %v", err)
	}

	if !strings.Contains(out, `mode = "whiteboard"`) {
		t.Errorf("output should contain the configured mode:\n%s", out)
	}
	if !strings.Contains(out, dataDir) {
		t.Errorf("output should contain the data directory:\n%s", out)
	}
}

func TestConfigCommand_UnknownKey(t *testing.T) {
	path, _ := writeConfig(t, "colour = \"red\"\n")

	if _, err := execute(t, "--config", path, "config"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestRootOptions_Load(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		opts := &rootOptions{configPath: filepath.Join(t.TempDir(), "absent.toml")}

		cfg, err := opts.load()
		if err != nil {
			t.Fatalf("load() error = %v", err)
		}
		if cfg.Mode != config.Default().Mode {
			t.Errorf("Mode = %s, want default", cfg.Mode)
		}
	})

	t.Run("reads the named file", func(t *testing.T) {
		path, dataDir := writeConfig(t, "")
		opts := &rootOptions{configPath: path}

		cfg, err := opts.load()
		if err != nil {
			t.Fatalf("load() error = %v", err)
		}
		if cfg.DataDir != dataDir {
			t.Errorf("DataDir = %s, want %s", cfg.DataDir, dataDir)
		}
	})
}
