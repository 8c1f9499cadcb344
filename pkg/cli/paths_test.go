package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPaths(t *testing.T) {
	paths, err := NewPaths()
	if err != nil {
		t.Fatalf("NewPaths error: %v", err)
	}
	if paths.HomeDir == "" {
		t.Error("HomeDir should not be empty")
	}
}

func TestPaths_Layout(t *testing.T) {
	tmpDir := t.TempDir()
	paths := &Paths{HomeDir: tmpDir}

	base := filepath.Join(tmpDir, DefaultBaseDir)
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"BaseDir", paths.BaseDir(), base},
		{"ConfigFile", paths.ConfigFile(), filepath.Join(base, DefaultConfigFile)},
		{"DataDir", paths.DataDir(), filepath.Join(base, "data")},
		{"LogDir", paths.LogDir(), filepath.Join(base, "logs")},
		{"DataPath", paths.DataPath("client"), filepath.Join(base, "data", "client")},
		{"LogPath", paths.LogPath("fly.log"), filepath.Join(base, "logs", "fly.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestPaths_EnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	paths := &Paths{HomeDir: tmpDir}

	if err := paths.EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir error: %v", err)
	}
	info, err := os.Stat(paths.DataDir())
	if err != nil || !info.IsDir() {
		t.Fatalf("data dir not created: %v", err)
	}

	if err := paths.EnsureLogDir(); err != nil {
		t.Fatalf("EnsureLogDir error: %v", err)
	}
	if _, err := os.Stat(paths.LogDir()); err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
}
