package models

// UploadMetadata is the payload POSTed to the backend callback after a
// document lands in object storage. Field names match what the backend's
// upload-callback route expects.
type UploadMetadata struct {
	FilePath   string `json:"file_path"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	FileSize   int64  `json:"file_size"`
	OrgID      string `json:"org_id"`
	UploaderID string `json:"uploader_id"`
}

func NewUploadMetadata(filePath, filename, mimeType string, fileSize int64, orgID, uploaderID string) *UploadMetadata {
	return &UploadMetadata{
		FilePath:   filePath,
		Filename:   filename,
		MimeType:   mimeType,
		FileSize:   fileSize,
		OrgID:      orgID,
		UploaderID: uploaderID,
	}
}
