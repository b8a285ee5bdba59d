package uploader

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedNamer(millis int64) *Namer {
	n := NewNamer(false)
	n.now = func() time.Time { return time.UnixMilli(millis) }
	return n
}

func TestObjectKey_TimestampAndExtension(t *testing.T) {
	n := fixedNamer(1700000000000)

	assert.Equal(t, "uploads/1700000000000.pdf", n.ObjectKey("report.pdf"))
	assert.Equal(t, "uploads/1700000000000.docx", n.ObjectKey("quarterly results.docx"))
}

func TestObjectKey_ExtensionIsAfterLastDot(t *testing.T) {
	n := fixedNamer(42)

	assert.Equal(t, "uploads/42.gz", n.ObjectKey("archive.tar.gz"))
}

func TestObjectKey_NoExtensionKeepsTrailingDot(t *testing.T) {
	n := fixedNamer(1700000000000)

	// A name without a dot yields an empty suffix after a literal dot
	assert.Equal(t, "uploads/1700000000000.", n.ObjectKey("README"))
}

func TestObjectKey_UniqueNames(t *testing.T) {
	n := NewNamer(true)

	first := n.ObjectKey("report.pdf")
	second := n.ObjectKey("report.pdf")

	pattern := regexp.MustCompile(`^uploads/[0-9a-f-]{36}\.pdf$`)
	assert.Regexp(t, pattern, first)
	assert.Regexp(t, pattern, second)
	assert.NotEqual(t, first, second)
}

func TestObjectKey_MatchesDocumentedPattern(t *testing.T) {
	n := fixedNamer(time.Now().UnixMilli())

	key := n.ObjectKey("scan.png")
	assert.Regexp(t, regexp.MustCompile(`^uploads/\d+\.png$`), key)
}
