// Package model contains the task tree rebuilt from a Toodledo backup
package model

import "strings"

var folderNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// SanitizeFolderName replaces path separators so the name can be used in a filename
func SanitizeFolderName(name string) string {
	return folderNameReplacer.Replace(name)
}

// Folder groups the tasks that were filed under the same Toodledo folder
type Folder struct {
	Name  string
	Tasks map[string]*Task
	order []string // ids in first-registration order
}

// NewFolder creates an empty folder, sanitizing its name
func NewFolder(name string) *Folder {
	return &Folder{
		Name:  SanitizeFolderName(name),
		Tasks: make(map[string]*Task),
	}
}

func (f *Folder) add(t *Task) {
	if _, ok := f.Tasks[t.ID]; !ok {
		f.order = append(f.order, t.ID)
	}
	f.Tasks[t.ID] = t
}

// All returns every task registered in the folder, in registration order
func (f *Folder) All() []*Task {
	tasks := make([]*Task, 0, len(f.order))
	for _, id := range f.order {
		tasks = append(tasks, f.Tasks[id])
	}
	return tasks
}

// Roots returns the tasks of this folder that have no parent
func (f *Folder) Roots() []*Task {
	var roots []*Task
	for _, t := range f.All() {
		if t.Parent == nil {
			roots = append(roots, t)
		}
	}
	return roots
}

// Task represents a single Toodledo task and its subtasks
type Task struct {
	ID            string
	Title         string
	DueDate       string
	CompletedDate string
	Note          string
	Repeat        string
	Tags          []string

	Parent   *Task   // back reference, not owning
	Children []*Task // in the order SetParent was called
	Folder   *Folder

	FolderMismatch bool
}

// NewTask creates a task with no folder and no parent
func NewTask(id, title string) *Task {
	return &Task{
		ID:       id,
		Title:    title,
		Tags:     []string{},
		Children: make([]*Task, 0),
	}
}

// Count returns the size of the subtree rooted at this task
func (t *Task) Count() int {
	n := 1
	for _, c := range t.Children {
		n += c.Count()
	}
	return n
}

// IsComplete reports whether a completion date was recorded
func (t *Task) IsComplete() bool {
	return t.CompletedDate != ""
}

// SetParent links the task under parent. A task can only have one parent.
func (t *Task) SetParent(parent *Task) {
	t.Parent = parent
	parent.Children = append(parent.Children, t)

	t.checkFolderMismatch()
}

// SetFolder files the task in folder. A task can only be in one folder.
func (t *Task) SetFolder(folder *Folder) {
	t.Folder = folder
	folder.add(t)

	t.checkFolderMismatch()
}

// checkFolderMismatch is only evaluated when the folder or parent is assigned.
// Changing either afterwards does not clear or set the flag again.
func (t *Task) checkFolderMismatch() {
	if t.Parent != nil && t.Folder != nil && t.Parent.Folder != t.Folder {
		t.FolderMismatch = true
	}
}

// Walk visits the task and its descendants depth-first, pre-order.
// depth is 0 for the task Walk was called on.
func (t *Task) Walk(fn func(task *Task, depth int)) {
	walk(t, 0, fn)
}

func walk(t *Task, depth int, fn func(*Task, int)) {
	fn(t, depth)
	for _, child := range t.Children {
		walk(child, depth+1, fn)
	}
}
