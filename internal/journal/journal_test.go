package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")

	j := New(path)
	require.NoError(t, j.Load()) // missing file is fine

	assert.False(t, j.IsUploaded("report.pdf"))

	j.MarkUploaded("report.pdf", "uploads/1700000000000.pdf")
	assert.True(t, j.IsUploaded("report.pdf"))

	key, ok := j.ObjectKeyFor("report.pdf")
	assert.True(t, ok)
	assert.Equal(t, "uploads/1700000000000.pdf", key)

	// A fresh journal at the same path sees the persisted state
	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.IsUploaded("report.pdf"))
	assert.Contains(t, reloaded.ListCompleted(), "report.pdf")
}

func TestJournal_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")

	j := New(path)
	j.MarkUploaded("a.pdf", "uploads/1.pdf")
	j.MarkUploaded("b.pdf", "uploads/2.pdf")
	require.NoError(t, j.Clear())

	assert.Empty(t, j.ListCompleted())

	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	assert.Empty(t, reloaded.ListCompleted())
}

func TestJournal_UnknownKey(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "journal.json"))

	_, ok := j.ObjectKeyFor("never-uploaded.pdf")
	assert.False(t, ok)
}
