package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ncruces/go-strftime"

	"github.com/pstuifzand/toodledo-to-todoist/internal/model"
)

// DefaultTaskLimit is the maximum number of items Todoist accepts per project
const DefaultTaskLimit = 120

const (
	todoistIndent = "..."
	noteMarker    = "[[NOTE]]: "
	dueDateLayout = "2006-01-02"
)

// Todoist multi-line notes are separated by tabs, not newlines
var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Chunk is one Todoist import file
type Chunk struct {
	FileName string
	Roots    []*model.Task
	Count    int
}

// TodoistExporter writes one or more Todoist import files per folder
type TodoistExporter struct {
	Dir           string
	Limit         int
	DueDateFormat string // strftime layout; empty keeps the date as exported

	// Total counts tasks written across all folders
	Total int

	logger *log.Logger
}

// NewTodoistExporter creates an exporter writing into dir
func NewTodoistExporter(dir string, limit int, logger *log.Logger) *TodoistExporter {
	if limit <= 0 {
		limit = DefaultTaskLimit
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TodoistExporter{
		Dir:    dir,
		Limit:  limit,
		logger: logger,
	}
}

// Export writes every folder of the library
func (e *TodoistExporter) Export(library *model.Library) error {
	for _, folder := range library.SortedFolders() {
		if _, err := e.ExportFolder(folder); err != nil {
			return err
		}
	}

	e.logger.Info("exported todoist files", "tasks", e.Total, "folders", len(library.Folders))
	return nil
}

// ExportFolder writes the chunk files for one folder and returns them
func (e *TodoistExporter) ExportFolder(folder *model.Folder) ([]Chunk, error) {
	chunks := PlanChunks(folder.Roots(), e.Limit)

	count := 0
	for i := range chunks {
		chunk := &chunks[i]
		chunk.FileName = ChunkFileName(folder.Name, i+1)

		if i > 0 {
			e.logger.Warn("splitting tasks", "folder", folder.Name, "part", i+1)
		}
		if chunk.Count > e.Limit {
			e.logger.Warn("single task tree exceeds limit", "folder", folder.Name, "file", chunk.FileName, "count", chunk.Count, "limit", e.Limit)
		}

		n, err := e.writeChunk(chunk)
		if err != nil {
			return nil, err
		}
		count += n
	}

	if count > e.Limit {
		e.logger.Warn(fmt.Sprintf("project has more than %d items", e.Limit), "folder", folder.Name, "count", count)
	}
	e.Total += count

	return chunks, nil
}

func (e *TodoistExporter) writeChunk(chunk *Chunk) (int, error) {
	path := filepath.Join(e.Dir, chunk.FileName)
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", chunk.FileName, err)
	}

	writer := bufio.NewWriter(f)
	n := 0
	for _, root := range chunk.Roots {
		root.Walk(func(task *model.Task, depth int) {
			writer.WriteString(e.formatTask(task, strings.Repeat(todoistIndent, depth)))
			n++
		})
	}

	if err := writer.Flush(); err != nil {
		f.Close()
		return 0, fmt.Errorf("failed to write %s: %w", chunk.FileName, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", chunk.FileName, err)
	}

	return n, nil
}

// PlanChunks groups root tasks so that each group stays within limit.
// A new group starts before any root whose subtree would push the current
// group over the limit, even when the current group is still empty. Subtrees
// are never split, so a root larger than the limit gets a group of its own
// and leaves an empty group in front of it when it comes first.
func PlanChunks(roots []*model.Task, limit int) []Chunk {
	chunks := []Chunk{{}}

	for _, root := range roots {
		current := &chunks[len(chunks)-1]
		size := root.Count()

		if current.Count+size > limit {
			chunks = append(chunks, Chunk{})
			current = &chunks[len(chunks)-1]
		}

		current.Roots = append(current.Roots, root)
		current.Count += size
	}

	return chunks
}

// ChunkFileName returns the import file name for the given 1-based part
func ChunkFileName(folderName string, part int) string {
	if part <= 1 {
		return fmt.Sprintf("__%s[00000].txt", folderName)
	}
	return fmt.Sprintf("__%s__part_%d_[00000].txt", folderName, part)
}

// formatTask renders a task line plus its note lines in Todoist's import syntax
func (e *TodoistExporter) formatTask(task *model.Task, indent string) string {
	var sb strings.Builder

	sb.WriteString(indent)
	sb.WriteString(task.Title)
	if task.FolderMismatch {
		sb.WriteString(" @__import_folder_mismatch")
	}
	if task.IsComplete() {
		sb.WriteString(" @__import_completed")
	}
	// repeating tasks have to be set up again by hand
	if task.Repeat != "" {
		sb.WriteString(" @__import_repeat")
	}
	for _, tag := range task.Tags {
		sb.WriteString(" @" + tag)
	}
	if task.DueDate != "" {
		sb.WriteString(" [[date " + e.formatDueDate(task.DueDate) + "]]")
	}
	sb.WriteString("\n")

	if task.Note != "" {
		sb.WriteString(noteMarker + CollapseNote(task.Note) + "\n")
	}
	if task.Repeat != "" {
		sb.WriteString(noteMarker + "repeat -- " + task.Repeat + "\n")
	}
	if task.FolderMismatch {
		sb.WriteString(noteMarker + "folder -- " + task.Folder.Name + "\n")
	}

	return sb.String()
}

func (e *TodoistExporter) formatDueDate(due string) string {
	if e.DueDateFormat == "" {
		return due
	}
	t, err := time.Parse(dueDateLayout, due)
	if err != nil {
		return due
	}
	return strftime.Format(e.DueDateFormat, t)
}

// CollapseNote replaces every run of line breaks with a single tab
func CollapseNote(note string) string {
	return lineBreaks.ReplaceAllString(note, "\t")
}
