// Package app wires the backup reader, the tree builder and the exporters together
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pstuifzand/toodledo-to-todoist/internal/config"
	"github.com/pstuifzand/toodledo-to-todoist/internal/export"
	import_parser "github.com/pstuifzand/toodledo-to-todoist/internal/import"
	"github.com/pstuifzand/toodledo-to-todoist/internal/model"
	"github.com/pstuifzand/toodledo-to-todoist/internal/storage"
)

// FilteredBackupName is written when a folder filter is active
const FilteredBackupName = "_filtered_soup.xml"

// App converts one Toodledo backup
type App struct {
	cfg    *config.Config
	logger *log.Logger
}

// NewApp creates a new App instance
func NewApp(cfg *config.Config, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// Load reads the backup and builds the task tree
func (a *App) Load(inputPath string) (*model.Library, error) {
	records, err := a.readRecords(inputPath)
	if err != nil {
		return nil, err
	}
	return a.build(records), nil
}

// Run loads the backup and writes the text dump and the Todoist files.
// With a folder filter it also writes the filtered backup.
func (a *App) Run(inputPath string) error {
	records, err := a.readRecords(inputPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if a.cfg.FolderFilter != "" {
		filtered := import_parser.FilterRecords(records, a.cfg.FolderFilter)
		path := filepath.Join(a.cfg.OutputDir, FilteredBackupName)
		if err := storage.SaveToodledoFile(path, filtered); err != nil {
			return fmt.Errorf("failed to write filtered backup: %w", err)
		}
		a.logger.Info("wrote filtered backup", "path", path, "items", len(filtered))
	}

	library := a.build(records)

	a.logger.Info("exporting text")
	if err := export.ExportToText(library, a.cfg.OutputDir); err != nil {
		return err
	}

	a.logger.Info("exporting todoist")
	exporter := export.NewTodoistExporter(a.cfg.OutputDir, a.cfg.TaskLimit, a.logger)
	exporter.DueDateFormat = a.cfg.DueDateFormat
	return exporter.Export(library)
}

func (a *App) readRecords(inputPath string) ([]model.Record, error) {
	a.logger.Info("opening file", "path", inputPath)
	return storage.LoadToodledoFile(inputPath)
}

func (a *App) build(records []model.Record) *model.Library {
	a.logger.Info("parsing", "items", len(records))
	return import_parser.Build(records, import_parser.BuildOptions{
		FolderFilter:     a.cfg.FolderFilter,
		IncludeCompleted: a.cfg.IncludeCompleted,
	}, a.logger)
}

// FolderSummary describes one folder for the folders listing
type FolderSummary struct {
	Name  string
	Tasks int
	Roots int
}

// SummarizeFolders lists folders by name, or by fuzzy match rank when query is set.
// Folders that do not match the query are left out.
func SummarizeFolders(library *model.Library, query string) []FolderSummary {
	folders := library.SortedFolders()
	if query != "" {
		names := make([]string, len(folders))
		for i, f := range folders {
			names[i] = f.Name
		}

		ranks := fuzzy.RankFindNormalizedFold(query, names)
		sort.Stable(ranks)

		matched := make([]*model.Folder, 0, len(ranks))
		for _, r := range ranks {
			matched = append(matched, folders[r.OriginalIndex])
		}
		folders = matched
	}

	summaries := make([]FolderSummary, 0, len(folders))
	for _, f := range folders {
		summaries = append(summaries, FolderSummary{
			Name:  f.Name,
			Tasks: len(f.Tasks),
			Roots: len(f.Roots()),
		})
	}
	return summaries
}

// WriteFolders prints a folder summary table
func WriteFolders(w io.Writer, summaries []FolderSummary) error {
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-40s %5d tasks %5d roots\n", s.Name, s.Tasks, s.Roots); err != nil {
			return err
		}
	}
	return nil
}
