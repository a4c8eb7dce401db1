package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pstuifzand/toodledo-to-todoist/internal/model"
)

// TextFileName is the name of the plain text dump
const TextFileName = "__text_tasks.txt"

const (
	textIndent     = "   "
	mismatchMarker = "@import_mismatched_folders"
)

// ExportToText writes the whole library as an indented text dump in dir
func ExportToText(library *model.Library, dir string) error {
	path := filepath.Join(dir, TextFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create text file: %w", err)
	}

	if err := WriteText(f, library); err != nil {
		f.Close()
		return fmt.Errorf("failed to write text file: %w", err)
	}

	return f.Close()
}

// WriteText writes every folder followed by its task trees.
// Subtasks are only printed under their parent, even when they were filed in
// another folder; the mismatch marker shows where that happened.
func WriteText(w io.Writer, library *model.Library) error {
	writer := bufio.NewWriter(w)

	for _, folder := range library.SortedFolders() {
		writer.WriteString(folder.Name + "\n")

		for _, root := range folder.Roots() {
			root.Walk(func(task *model.Task, depth int) {
				writeTextTask(writer, task, strings.Repeat(textIndent, depth+1))
			})
		}
	}

	return writer.Flush()
}

func writeTextTask(w *bufio.Writer, task *model.Task, indent string) {
	marker := ""
	if task.FolderMismatch {
		marker = mismatchMarker
	}

	w.WriteString(indent + strings.Join([]string{task.ID, task.Title, "(", task.Folder.Name, ")", marker}, " "))
	if task.IsComplete() {
		w.WriteString("completed=" + task.CompletedDate)
	}
	if len(task.Tags) > 0 {
		w.WriteString(" " + strings.Join(task.Tags, ","))
	}
	if task.Repeat != "" {
		w.WriteString(" repeat:" + task.Repeat)
	}
	if task.Note != "" {
		w.WriteString("\nNOTE:" + task.Note)
	}
	w.WriteString("\n")
}
