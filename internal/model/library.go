package model

import "sort"

// Record is one flat <item> of a Toodledo backup, before any tree is built.
// All fields are raw strings as they appear in the file.
type Record struct {
	ID        string
	Title     string
	Folder    string
	Parent    string
	Completed string
	DueDate   string
	Note      string
	Repeat    string
	Tag       string
}

// Library holds all folders and tasks loaded from one backup
type Library struct {
	Folders map[string]*Folder // keyed by sanitized name
	Tasks   map[string]*Task   // all tasks by ID, across folders
}

// NewLibrary creates an empty library
func NewLibrary() *Library {
	return &Library{
		Folders: make(map[string]*Folder),
		Tasks:   make(map[string]*Task),
	}
}

// Folder returns the folder with the given name, creating it on first use.
// Names that sanitize to the same string share one folder.
func (l *Library) Folder(name string) *Folder {
	key := SanitizeFolderName(name)
	if f, ok := l.Folders[key]; ok {
		return f
	}
	f := NewFolder(key)
	l.Folders[key] = f
	return f
}

// SortedFolders returns the folders ordered by name
func (l *Library) SortedFolders() []*Folder {
	names := make([]string, 0, len(l.Folders))
	for name := range l.Folders {
		names = append(names, name)
	}
	sort.Strings(names)

	folders := make([]*Folder, 0, len(names))
	for _, name := range names {
		folders = append(folders, l.Folders[name])
	}
	return folders
}

// Count returns the number of tasks registered in the master map
func (l *Library) Count() int {
	return len(l.Tasks)
}
