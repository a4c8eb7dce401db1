package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/toodledo-to-todoist/internal/export"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.TaskLimit != 120 {
		t.Errorf("Expected default task limit 120, got %d", cfg.TaskLimit)
	}
	if cfg.IncludeCompleted {
		t.Errorf("Completed items should be excluded by default")
	}
	if cfg.FolderFilter != "" {
		t.Errorf("Folder filter should be disabled by default, got '%s'", cfg.FolderFilter)
	}
	if cfg.OutputDir != "." {
		t.Errorf("Expected output dir '.', got '%s'", cfg.OutputDir)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadFromFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `folder_filter = "EXPORTTEST"
task_limit = 300
include_completed = true
due_date_format = "%Y/%m/%d"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EXPORTTEST", cfg.FolderFilter)
	assert.Equal(t, 300, cfg.TaskLimit)
	assert.True(t, cfg.IncludeCompleted)
	assert.Equal(t, "%Y/%m/%d", cfg.DueDateFormat)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "output_dir: out\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.Equal(t, export.DefaultTaskLimit, cfg.TaskLimit)
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("task_limit = [nope"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.TaskLimit = -1
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := defaultConfig()
	cfg.FolderFilter = "Work"

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
