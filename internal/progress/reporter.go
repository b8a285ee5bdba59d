// internal/progress/reporter.go
package progress

import (
	"sync"
	"time"

	"github.com/docpipe/doc-upload/internal/logger"
	"github.com/dustin/go-humanize"
)

// Reporter tracks and reports upload progress across a batch
type Reporter struct {
	mu             sync.Mutex
	total          int
	succeeded      int
	skipped        int
	storageFailed  int
	rejected       int
	networkFailed  int
	bytesUploaded  int64
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
}

// New creates a new progress reporter
func New() *Reporter {
	return &Reporter{
		updateInterval: 2 * time.Second,
	}
}

// Start initializes the reporter with the total number of documents
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.succeeded = 0
	r.skipped = 0
	r.storageFailed = 0
	r.rejected = 0
	r.networkFailed = 0
	r.bytesUploaded = 0
	r.startTime = time.Now()
	r.lastUpdateTime = time.Now()

	logger.Info("Starting upload of %d documents", total)
}

// Success marks a document as uploaded and acknowledged by the backend
func (r *Reporter) Success(path string, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.succeeded++
	r.bytesUploaded += size
	r.updateProgress()
}

// Skip marks a document as skipped
func (r *Reporter) Skip(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipped++
	r.updateProgress()
}

// StorageFailed marks a document whose storage upload failed
func (r *Reporter) StorageFailed(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.storageFailed++
	r.updateProgress()
}

// Rejected marks a document whose metadata the backend rejected
func (r *Reporter) Rejected(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rejected++
	r.updateProgress()
}

// NetworkFailed marks a document whose callback could not be delivered
func (r *Reporter) NetworkFailed(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.networkFailed++
	r.updateProgress()
}

// Errors returns the total number of failed attempts so far
func (r *Reporter) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.storageFailed + r.rejected + r.networkFailed
}

// Finish logs the final summary
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := time.Since(r.startTime)
	errors := r.storageFailed + r.rejected + r.networkFailed

	logger.Info("Upload complete: %d/%d documents uploaded (%s), %d skipped, %d failed in %s",
		r.succeeded, r.total, humanize.Bytes(uint64(r.bytesUploaded)), r.skipped, errors,
		duration.Round(time.Second))

	if errors > 0 {
		logger.Info("Failures: %d storage, %d rejected by backend, %d network",
			r.storageFailed, r.rejected, r.networkFailed)
	}
}

// updateProgress periodically logs batch progress
func (r *Reporter) updateProgress() {
	now := time.Now()
	if now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}

	r.lastUpdateTime = now
	duration := now.Sub(r.startTime)
	errors := r.storageFailed + r.rejected + r.networkFailed
	processed := r.succeeded + r.skipped + errors

	if processed == 0 {
		return
	}

	percentage := float64(processed) / float64(r.total) * 100

	var eta string
	if processed < r.total {
		timePerDoc := duration / time.Duration(processed)
		remaining := timePerDoc * time.Duration(r.total-processed)
		eta = remaining.Round(time.Second).String()
	} else {
		eta = "0s"
	}

	logger.Info("Progress: %.1f%% (%d/%d, %d uploaded, %d skipped, %d failed, %s) ETA: %s",
		percentage, processed, r.total, r.succeeded, r.skipped, errors,
		humanize.Bytes(uint64(r.bytesUploaded)), eta)
}
