package uploader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/docpipe/doc-upload/internal/config"
	"github.com/docpipe/doc-upload/internal/docsource"
	"github.com/docpipe/doc-upload/internal/journal"
	"github.com/docpipe/doc-upload/internal/logger"
	"github.com/docpipe/doc-upload/internal/notify"
	"github.com/docpipe/doc-upload/internal/progress"
	"github.com/docpipe/doc-upload/internal/storage"
	"github.com/docpipe/doc-upload/internal/worker"
	"github.com/docpipe/doc-upload/pkg/models"
)

// Outcome is the terminal state of one upload attempt
type Outcome int

const (
	// OutcomeSuccess: document stored and the backend acknowledged the metadata
	OutcomeSuccess Outcome = iota
	// OutcomeStorageFailed: storage upload failed, backend never contacted
	OutcomeStorageFailed
	// OutcomeRejected: backend reachable but answered non-2xx
	OutcomeRejected
	// OutcomeNetworkFailed: callback request could not be delivered
	OutcomeNetworkFailed
	// OutcomeSkipped: document already uploaded, nothing done
	OutcomeSkipped
)

// Result describes how one upload attempt ended. An attempt always ends in
// exactly one outcome with its message; by the time a Result is returned the
// attempt is no longer counted as in flight.
type Result struct {
	Document  *docsource.Document
	Outcome   Outcome
	ObjectKey string
	Message   string
	Err       error
}

// Uploader runs upload attempts: storage first, then the backend callback
type Uploader struct {
	ctx      context.Context
	store    storage.Store
	source   docsource.Source
	notifier *notify.Notifier
	journal  *journal.Journal
	pool     *worker.Pool
	progress *progress.Reporter
	namer    *Namer
	config   *config.Config
	inFlight atomic.Int32
}

// InFlight returns the number of upload attempts currently running
func (u *Uploader) InFlight() int {
	return int(u.inFlight.Load())
}

// New creates a new Uploader
func New(ctx context.Context, store storage.Store, source docsource.Source,
	notifier *notify.Notifier, jnl *journal.Journal, pool *worker.Pool,
	progress *progress.Reporter, cfg *config.Config) *Uploader {
	return &Uploader{
		ctx:      ctx,
		store:    store,
		source:   source,
		notifier: notifier,
		journal:  jnl,
		pool:     pool,
		progress: progress,
		namer:    NewNamer(cfg.Upload.UniqueNames),
		config:   cfg,
	}
}

// Run uploads every document in the source and reports each outcome
func (u *Uploader) Run() error {
	docs := u.source.ListDocuments()

	u.progress.Start(len(docs))

	var wg sync.WaitGroup

	for _, doc := range docs {
		if u.ctx.Err() != nil {
			return u.ctx.Err()
		}

		if u.config.Upload.SkipExisting && u.journal.IsUploaded(doc.Path) {
			u.progress.Skip(doc.Path)
			logger.Info("Skipping %s: already uploaded", doc.Path)
			continue
		}

		doc := doc
		wg.Add(1)
		u.pool.Submit(func() {
			defer wg.Done()

			result := u.UploadOne(doc)
			u.record(result)
		})
	}

	wg.Wait()
	u.progress.Finish()

	if errs := u.progress.Errors(); errs > 0 {
		return fmt.Errorf("%d of %d uploads failed", errs, len(docs))
	}

	return nil
}

// UploadOne runs a single upload attempt: derive the object key, upload the
// bytes, then notify the backend. Exactly one outcome message is produced
// per attempt, and the in-flight counter is decremented on every exit path.
func (u *Uploader) UploadOne(doc *docsource.Document) (result *Result) {
	result = &Result{Document: doc}

	u.inFlight.Add(1)
	defer u.inFlight.Add(-1)

	result.ObjectKey = u.namer.ObjectKey(doc.Name)

	if u.config.Upload.DryRun {
		result.Outcome = OutcomeSkipped
		result.Message = fmt.Sprintf("DRY RUN: would upload %s to %s and notify %s",
			doc.Name, result.ObjectKey, u.notifier.URL())
		return result
	}

	if u.config.Upload.SkipExisting {
		exists, err := u.store.ObjectExists(u.ctx, result.ObjectKey)
		if err != nil {
			logger.Warn("Failed to check if object exists: %v", err)
		} else if exists {
			// Timestamp collision with an earlier upload; fall back to an
			// opaque name rather than overwriting the stored object.
			result.ObjectKey = NewNamer(true).ObjectKey(doc.Name)
			logger.Warn("Object key collision for %s, using %s", doc.Name, result.ObjectKey)
		}
	}

	if err := u.uploadToStorage(doc, result.ObjectKey); err != nil {
		result.Outcome = OutcomeStorageFailed
		result.Err = err
		result.Message = fmt.Sprintf("Upload failed for %s: %s", doc.Name, storage.FormatError(err))
		return result
	}

	meta := models.NewUploadMetadata(
		result.ObjectKey,
		doc.Name,
		doc.MimeType,
		doc.Size,
		u.config.Callback.OrgID,
		u.config.Callback.UploaderID,
	)

	resp, err := u.notifier.Notify(u.ctx, meta)
	if err != nil {
		if notify.IsRejection(err) {
			result.Outcome = OutcomeRejected
			result.Err = err
			result.Message = fmt.Sprintf("Server rejected metadata for %s: %v", doc.Name, err)
			return result
		}
		result.Outcome = OutcomeNetworkFailed
		result.Err = err
		result.Message = fmt.Sprintf("Network error notifying backend for %s: %v", doc.Name, err)
		return result
	}

	result.Outcome = OutcomeSuccess
	result.Message = fmt.Sprintf("Uploaded %s as %s (status %d)", doc.Name, result.ObjectKey, resp.StatusCode)
	return result
}

// uploadToStorage streams a document's bytes into the bucket. With
// --retries > 0 transient storage errors are retried with backoff; the
// default is a single attempt.
func (u *Uploader) uploadToStorage(doc *docsource.Document, objectKey string) error {
	attempt := func() error {
		reader, err := u.source.OpenDocument(doc.Path)
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		defer reader.Close()

		metadata := map[string]string{
			"original-filename": doc.Name,
		}

		return u.store.UploadFile(u.ctx, reader, objectKey, doc.Size, metadata, doc.MimeType)
	}

	if u.config.Upload.Retries <= 0 {
		return attempt()
	}

	op := fmt.Sprintf("upload of %s", doc.Name)
	return RetryWithBackoff(u.ctx, op, attempt, NewRetryConfig(u.config.Upload.Retries))
}

// record reflects an attempt's outcome into progress, journal and output
func (u *Uploader) record(result *Result) {
	doc := result.Document

	switch result.Outcome {
	case OutcomeSuccess:
		u.progress.Success(doc.Path, doc.Size)
		u.journal.MarkUploaded(doc.Path, result.ObjectKey)
	case OutcomeStorageFailed:
		u.progress.StorageFailed(doc.Path, result.Err)
		logger.Error("Storage upload failed for %s: %v", doc.Path, result.Err)
	case OutcomeRejected:
		u.progress.Rejected(doc.Path, result.Err)
		logger.Error("Backend rejected %s: %v", doc.Path, result.Err)
	case OutcomeNetworkFailed:
		u.progress.NetworkFailed(doc.Path, result.Err)
		logger.Error("Callback failed for %s: %v", doc.Path, result.Err)
	case OutcomeSkipped:
		u.progress.Skip(doc.Path)
	}

	logger.Message("%s", result.Message)
}
