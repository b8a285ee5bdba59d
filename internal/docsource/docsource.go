// Package docsource turns an input path (a single document, a directory, or
// a zip archive) into the set of documents to upload.
package docsource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/docpipe/doc-upload/internal/fshelper"
	"github.com/docpipe/doc-upload/internal/logger"
	"github.com/docpipe/doc-upload/internal/storage"
)

// Document is a single uploadable file found in the source
type Document struct {
	Path     string // path within the source filesystem
	Name     string // original filename
	Size     int64
	MimeType string
}

// Source lists documents and opens their byte streams
type Source interface {
	ListDocuments() []*Document
	OpenDocument(path string) (io.ReadCloser, error)
}

// FSSource is a Source backed by a filesystem
type FSSource struct {
	fsys      fs.FS
	root      string
	documents map[string]*Document
}

// New scans the given input path and indexes every document in it
func New(ctx context.Context, inputPath string) (*FSSource, error) {
	fsys, root, err := fshelper.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}

	if named, ok := fsys.(fshelper.NameFS); ok {
		logger.Debug("Scanning source %s", named.Name())
	}

	s := &FSSource{
		fsys:      fsys,
		root:      root,
		documents: make(map[string]*Document),
	}

	if err := s.scan(ctx); err != nil {
		return nil, err
	}

	if len(s.documents) == 0 {
		return nil, fmt.Errorf("no documents found in %s", inputPath)
	}

	return s, nil
}

// scan walks the source filesystem and builds the document index
func (s *FSSource) scan(ctx context.Context) error {
	return fshelper.WalkDir(s.fsys, s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			return nil
		}

		// An explicitly selected file is always uploaded. When scanning a
		// directory or archive, hidden files and non-document types are
		// filtered out.
		if s.root == "." {
			if strings.HasPrefix(path.Base(p), ".") {
				return nil
			}
			if !storage.IsDocumentFile(p) {
				logger.Debug("Skipping non-document file %s", p)
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Failed to get file info for %s: %v", p, err)
			return nil
		}

		s.documents[p] = &Document{
			Path:     p,
			Name:     path.Base(p),
			Size:     info.Size(),
			MimeType: storage.DetectContentType(p),
		}

		return nil
	})
}

// ListDocuments returns all documents found in the source
func (s *FSSource) ListDocuments() []*Document {
	docs := make([]*Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	return docs
}

// OpenDocument opens a document's byte stream
func (s *FSSource) OpenDocument(p string) (io.ReadCloser, error) {
	file, err := s.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Close releases the underlying filesystem if it holds resources
func (s *FSSource) Close() error {
	if closer, ok := s.fsys.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
