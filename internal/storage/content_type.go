package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIME types for document extensions the backend pipeline understands
var documentMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".rtf":  "application/rtf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "application/xml",
	".html": "text/html",
	".epub": "application/epub+zip",
}

// DetectContentType determines the content type of a file based on its extension
func DetectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if mimeType, ok := documentMimeTypes[ext]; ok {
		return mimeType
	}

	// Fall back to the standard library
	mimeType := mime.TypeByExtension(ext)
	if mimeType != "" {
		return mimeType
	}

	return "application/octet-stream"
}

// IsDocumentFile checks if a file is an uploadable document based on its extension
func IsDocumentFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := documentMimeTypes[ext]
	return ok
}
