package uploader

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectPrefix is the key prefix all uploaded documents share
const ObjectPrefix = "uploads"

// Namer derives the object key for an upload attempt. The default scheme is
// uploads/<unix-millis>.<ext>, which is what the backend's processing
// pipeline keys on. UniqueNames swaps the timestamp for a UUID, removing
// the collision window of two uploads in the same millisecond.
type Namer struct {
	UniqueNames bool

	now func() time.Time
}

// NewNamer creates a Namer using the given naming scheme
func NewNamer(uniqueNames bool) *Namer {
	return &Namer{
		UniqueNames: uniqueNames,
		now:         time.Now,
	}
}

// ObjectKey derives the object key for a document with the given original
// filename. The extension is the substring after the last dot of the name;
// a name without one yields a key with a trailing dot and empty suffix.
func (n *Namer) ObjectKey(filename string) string {
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx+1:]
	}

	if n.UniqueNames {
		return fmt.Sprintf("%s/%s.%s", ObjectPrefix, uuid.NewString(), ext)
	}

	millis := n.now().UnixMilli()
	return fmt.Sprintf("%s/%d.%s", ObjectPrefix, millis, ext)
}
