// internal/journal/journal.go
package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/docpipe/doc-upload/internal/logger"
)

// Journal records which documents have already been uploaded so an
// interrupted batch can resume without re-uploading.
type Journal struct {
	mu      sync.Mutex
	path    string
	Uploads map[string]Entry `json:"uploads"`
}

// Entry is the journal record for one uploaded document
type Entry struct {
	Path      string    `json:"path"`
	ObjectKey string    `json:"object_key"`
	Uploaded  bool      `json:"uploaded"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a journal stored at path. An empty path places the journal
// in the user's home directory.
func New(path string) *Journal {
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".doc-upload-journal.json")
		} else {
			path = ".doc-upload-journal.json"
		}
	}

	return &Journal{
		path:    path,
		Uploads: make(map[string]Entry),
	}
}

// Load loads the journal from disk. A missing file is not an error.
func (j *Journal) Load() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No journal file at %s, starting fresh", j.path)
			return nil
		}
		return err
	}

	var loaded Journal
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded.Uploads != nil {
		j.Uploads = loaded.Uploads
	}
	logger.Info("Loaded journal with %d entries from %s", len(j.Uploads), j.path)

	return nil
}

// Save writes the journal to disk
func (j *Journal) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.save()
}

func (j *Journal) save() error {
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return err
	}

	logger.Debug("Saved journal with %d entries to %s", len(j.Uploads), j.path)
	return nil
}

// MarkUploaded records a document as uploaded and persists the journal
func (j *Journal) MarkUploaded(path, objectKey string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Uploads[path] = Entry{
		Path:      path,
		ObjectKey: objectKey,
		Uploaded:  true,
		Timestamp: time.Now(),
	}

	if err := j.save(); err != nil {
		logger.Error("Failed to save journal: %v", err)
	}
}

// IsUploaded checks if a document has already been uploaded
func (j *Journal) IsUploaded(path string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, exists := j.Uploads[path]
	return exists && entry.Uploaded
}

// ObjectKeyFor returns the object key recorded for an uploaded document
func (j *Journal) ObjectKeyFor(path string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, exists := j.Uploads[path]
	if !exists || !entry.Uploaded {
		return "", false
	}
	return entry.ObjectKey, true
}

// Clear empties the journal and persists the empty state
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Uploads = make(map[string]Entry)
	return j.save()
}

// ListCompleted returns the source paths of all completed uploads
func (j *Journal) ListCompleted() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	var completed []string
	for path, entry := range j.Uploads {
		if entry.Uploaded {
			completed = append(completed, path)
		}
	}
	return completed
}
