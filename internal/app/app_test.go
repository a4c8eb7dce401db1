package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/toodledo-to-todoist/internal/config"
)

const backup = `<?xml version="1.0" encoding="UTF-8"?>
<xml>
<item><id>1</id><parent>0</parent><title>Renovate</title><folder>Home/Projects</folder><tag>house</tag><completed>0000-00-00</completed><repeat>None</repeat></item>
<item><id>2</id><parent>1</parent><title>Paint</title><folder>Home/Projects</folder><duedate>2021-03-04</duedate><completed>0000-00-00</completed></item>
<item><id>3</id><parent>1</parent><title>Call plumber</title><folder>Waiting</folder><completed>0000-00-00</completed></item>
<item><id>4</id><parent>0</parent><title>Old thing</title><folder>Home/Projects</folder><completed>2019-01-01</completed></item>
<item><id>5</id><parent>0</parent><title>Loose end</title><completed>0000-00-00</completed></item>
</xml>
`

func writeBackup(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.xml")
	require.NoError(t, os.WriteFile(path, []byte(backup), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	return cfg
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	a := NewApp(cfg, log.New(io.Discard))

	require.NoError(t, a.Run(writeBackup(t)))

	text, err := os.ReadFile(filepath.Join(cfg.OutputDir, "__text_tasks.txt"))
	require.NoError(t, err)
	assert.Equal(t,
		"Home_Projects\n"+
			"   1 Renovate ( Home_Projects )  house\n"+
			"      2 Paint ( Home_Projects ) \n"+
			"      3 Call plumber ( Waiting ) @import_mismatched_folders\n"+
			"NOFOLDER\n"+
			"   5 Loose end ( NOFOLDER ) \n"+
			"Waiting\n",
		string(text))

	home, err := os.ReadFile(filepath.Join(cfg.OutputDir, "__Home_Projects[00000].txt"))
	require.NoError(t, err)
	assert.Equal(t,
		"Renovate @house\n"+
			"...Paint [[date 2021-03-04]]\n"+
			"...Call plumber @__import_folder_mismatch\n"+
			"[[NOTE]]: folder -- Waiting\n",
		string(home))

	waiting, err := os.ReadFile(filepath.Join(cfg.OutputDir, "__Waiting[00000].txt"))
	require.NoError(t, err)
	assert.Empty(t, waiting)

	_, err = os.Stat(filepath.Join(cfg.OutputDir, FilteredBackupName))
	assert.True(t, os.IsNotExist(err), "filtered backup only written with a folder filter")
}

func TestRunWithFolderFilter(t *testing.T) {
	cfg := testConfig(t)
	cfg.FolderFilter = "Home"
	a := NewApp(cfg, log.New(io.Discard))

	require.NoError(t, a.Run(writeBackup(t)))

	filtered, err := os.ReadFile(filepath.Join(cfg.OutputDir, FilteredBackupName))
	require.NoError(t, err)
	assert.Contains(t, string(filtered), "<title>Renovate</title>")
	assert.NotContains(t, string(filtered), "Call plumber")

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "__Waiting[00000].txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunMissingInput(t *testing.T) {
	a := NewApp(testConfig(t), log.New(io.Discard))
	err := a.Run(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestRunIncludeCompleted(t *testing.T) {
	cfg := testConfig(t)
	cfg.IncludeCompleted = true
	a := NewApp(cfg, log.New(io.Discard))

	library, err := a.Load(writeBackup(t))
	require.NoError(t, err)
	require.Contains(t, library.Tasks, "4")
	assert.True(t, library.Tasks["4"].IsComplete())
}

func TestSummarizeFolders(t *testing.T) {
	a := NewApp(testConfig(t), log.New(io.Discard))
	library, err := a.Load(writeBackup(t))
	require.NoError(t, err)

	all := SummarizeFolders(library, "")
	require.Len(t, all, 3)
	assert.Equal(t, FolderSummary{Name: "Home_Projects", Tasks: 2, Roots: 1}, all[0])
	assert.Equal(t, FolderSummary{Name: "Waiting", Tasks: 1, Roots: 0}, all[2])

	matched := SummarizeFolders(library, "wait")
	require.Len(t, matched, 1)
	assert.Equal(t, "Waiting", matched[0].Name)

	assert.Empty(t, SummarizeFolders(library, "zzz"))

	var buf bytes.Buffer
	require.NoError(t, WriteFolders(&buf, matched))
	assert.Contains(t, buf.String(), "Waiting")
	assert.Contains(t, buf.String(), "1 tasks")
}

func TestLoadDoesNotWriteFilteredBackup(t *testing.T) {
	cfg := testConfig(t)
	cfg.FolderFilter = "Home"
	a := NewApp(cfg, log.New(io.Discard))

	library, err := a.Load(writeBackup(t))
	require.NoError(t, err)
	assert.Len(t, library.Folders, 1)

	_, err = os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(err), "loading must not touch the output directory")
}
