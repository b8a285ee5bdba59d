package fshelper

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NameFS is a filesystem that has a name
type NameFS interface {
	fs.FS
	Name() string
}

// DirFS represents a directory filesystem with a name
type DirFS struct {
	fs.FS
	name string
}

// Name returns the name of the filesystem
func (d *DirFS) Name() string {
	return d.name
}

// ZipFS represents a zip archive filesystem with a name
type ZipFS struct {
	*zip.Reader
	name string
	rc   io.Closer
}

// Name returns the name of the filesystem
func (z *ZipFS) Name() string {
	return z.name
}

// Close closes the underlying zip file
func (z *ZipFS) Close() error {
	if z.rc != nil {
		return z.rc.Close()
	}
	return nil
}

// Open opens an input path as a filesystem plus the root to walk from.
// Directories and zip archives are walked from ".". A single regular file
// becomes its parent directory walked from the file's own name, so one
// selected document goes through the same code path as a directory without
// picking up its siblings.
func Open(path string) (fs.FS, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("path does not exist: %s", path)
		}
		return nil, "", fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if info.IsDir() {
		return &DirFS{
			FS:   os.DirFS(path),
			name: filepath.Base(path),
		}, ".", nil
	}

	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		fsys, err := OpenZip(path)
		if err != nil {
			return nil, "", err
		}
		return fsys, ".", nil
	}

	return &DirFS{
		FS:   os.DirFS(filepath.Dir(path)),
		name: filepath.Base(path),
	}, filepath.Base(path), nil
}

// OpenZip opens a zip archive and returns it as a filesystem
func OpenZip(path string) (fs.FS, error) {
	zipFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening zip file: %w", err)
	}

	info, err := zipFile.Stat()
	if err != nil {
		zipFile.Close()
		return nil, fmt.Errorf("error getting zip file info: %w", err)
	}

	zipReader, err := zip.NewReader(zipFile, info.Size())
	if err != nil {
		zipFile.Close()
		return nil, fmt.Errorf("error creating zip reader: %w", err)
	}

	return &ZipFS{
		Reader: zipReader,
		name:   filepath.Base(path),
		rc:     zipFile,
	}, nil
}

// WalkDir walks a filesystem and calls fn for each entry
func WalkDir(fsys fs.FS, root string, fn fs.WalkDirFunc) error {
	return fs.WalkDir(fsys, root, fn)
}
