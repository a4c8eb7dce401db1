package import_parser

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pstuifzand/toodledo-to-todoist/internal/model"
)

const (
	// NoFolder is used for items that are not in any folder
	NoFolder = "NOFOLDER"

	emptyDate  = "0000-00-00"
	noneRepeat = "None"
)

// BuildOptions controls which records make it into the tree
type BuildOptions struct {
	FolderFilter     string // only keep folders starting with this, if set
	IncludeCompleted bool
}

// BuildStats counts what happened to the records fed to a Builder
type BuildStats struct {
	Records   int
	Filtered  int
	Completed int
	Roots     int
}

// Builder rebuilds the task tree from flat records. Records must be added in
// source order: a parent is only found if it was added earlier.
type Builder struct {
	opts    BuildOptions
	library *model.Library
	stats   BuildStats
	logger  *log.Logger
}

// NewBuilder creates a builder with an empty library
func NewBuilder(opts BuildOptions, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		opts:    opts,
		library: model.NewLibrary(),
		logger:  logger,
	}
}

// Build adds all records and returns the resulting library
func Build(records []model.Record, opts BuildOptions, logger *log.Logger) *model.Library {
	b := NewBuilder(opts, logger)
	for _, rec := range records {
		b.Add(rec)
	}
	b.logStats()
	return b.Library()
}

// Library returns the library built so far
func (b *Builder) Library() *model.Library {
	return b.library
}

// Stats returns the counters collected so far
func (b *Builder) Stats() BuildStats {
	return b.stats
}

// Add turns one record into a task and links it into the tree.
// It returns nil when the record was skipped.
func (b *Builder) Add(rec model.Record) *model.Task {
	b.stats.Records++

	if b.opts.FolderFilter != "" && !MatchesFolderFilter(rec, b.opts.FolderFilter) {
		b.stats.Filtered++
		return nil
	}

	folderName := ResolveFolderName(rec)
	task := model.NewTask(clean(rec.ID), clean(rec.Title))

	if completed := clean(rec.Completed); completed != "" && completed != emptyDate {
		task.CompletedDate = completed
		if !b.opts.IncludeCompleted {
			b.stats.Completed++
			return nil
		}
	}

	task.SetFolder(b.library.Folder(folderName))

	// The parent may live in a different folder, so look it up across all tasks.
	// Toodledo allows this so folders like "Waiting" or "Next" can hold subtasks.
	if parent, ok := b.lookupParent(rec); ok {
		task.SetParent(parent)
	} else {
		b.stats.Roots++
	}

	task.DueDate = clean(rec.DueDate)
	task.Note = clean(rec.Note)
	if repeat := clean(rec.Repeat); repeat != noneRepeat {
		task.Repeat = repeat
	}
	task.Tags = ParseTags(rec.Tag)

	b.library.Tasks[task.ID] = task
	return task
}

func (b *Builder) lookupParent(rec model.Record) (*model.Task, bool) {
	parentID := clean(rec.Parent)
	if parentID == "" {
		return nil, false
	}
	parent, ok := b.library.Tasks[parentID]
	return parent, ok
}

func (b *Builder) logStats() {
	b.logger.Debug("built task tree",
		"records", b.stats.Records,
		"filtered", b.stats.Filtered,
		"completed_skipped", b.stats.Completed,
		"roots", b.stats.Roots,
		"folders", len(b.library.Folders),
		"tasks", b.library.Count(),
	)
}

// ResolveFolderName returns the record's folder, or NoFolder when it has none
func ResolveFolderName(rec model.Record) string {
	if name := clean(rec.Folder); name != "" {
		return name
	}
	return NoFolder
}

// MatchesFolderFilter reports whether the record's own folder starts with prefix.
// Items without a folder never match, whatever the prefix.
func MatchesFolderFilter(rec model.Record, prefix string) bool {
	folder := clean(rec.Folder)
	return folder != "" && strings.HasPrefix(folder, prefix)
}

// FilterRecords returns the records whose folder starts with prefix
func FilterRecords(records []model.Record, prefix string) []model.Record {
	var kept []model.Record
	for _, rec := range records {
		if MatchesFolderFilter(rec, prefix) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// ParseTags splits a comma separated tag field, dropping empty tags
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// clean trims a raw field; blank fields become ""
func clean(s string) string {
	return strings.TrimSpace(s)
}
