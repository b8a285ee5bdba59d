package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docpipe/doc-upload/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() *models.UploadMetadata {
	return &models.UploadMetadata{
		FilePath:   "uploads/1700000000000.pdf",
		Filename:   "report.pdf",
		MimeType:   "application/pdf",
		FileSize:   1024,
		OrgID:      "TEMP_ORG",
		UploaderID: "TEMP_USER",
	}
}

func TestNotify_Success_JSONBody(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","document":{"id":7}}`))
	}))
	defer server.Close()

	n := New(server.URL, nil)

	result, err := n.Notify(context.Background(), testMetadata())

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, BodyJSON, result.Body.Kind)
	assert.Equal(t, "ok", result.Body.JSON["status"])

	// The wire payload uses the backend's snake_case field names
	assert.Equal(t, "uploads/1700000000000.pdf", received["file_path"])
	assert.Equal(t, "report.pdf", received["filename"])
	assert.Equal(t, "application/pdf", received["mime_type"])
	assert.Equal(t, float64(1024), received["file_size"])
	assert.Equal(t, "TEMP_ORG", received["org_id"])
	assert.Equal(t, "TEMP_USER", received["uploader_id"])
}

func TestNotify_Success_TextBodyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("all good"))
	}))
	defer server.Close()

	n := New(server.URL, nil)

	result, err := n.Notify(context.Background(), testMetadata())

	require.NoError(t, err)
	assert.Equal(t, BodyText, result.Body.Kind)
	assert.Equal(t, "all good", result.Body.Text)
}

func TestNotify_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Failed to download from storage"}`))
	}))
	defer server.Close()

	n := New(server.URL, nil)

	result, err := n.Notify(context.Background(), testMetadata())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, IsRejection(err))

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusInternalServerError, rejection.StatusCode)
	assert.Equal(t, BodyJSON, rejection.Body.Kind)
	assert.Equal(t, "Failed to download from storage", rejection.Body.JSON["detail"])
}

func TestNotify_Rejection_NonJSONErrorPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	}))
	defer server.Close()

	n := New(server.URL, nil)

	_, err := n.Notify(context.Background(), testMetadata())

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, BodyText, rejection.Body.Kind)
	assert.Contains(t, rejection.Body.Text, "502 Bad Gateway")
}

func TestNotify_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	n := New(url, nil)

	result, err := n.Notify(context.Background(), testMetadata())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}

func TestNew_Defaults(t *testing.T) {
	n := New("", nil)
	assert.Equal(t, DefaultCallbackURL, n.URL())
}

func TestBodyPreview_Truncates(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	b := Body{Kind: BodyText, Text: string(long)}
	preview := b.Preview()

	assert.Len(t, preview, 203) // 200 chars plus "..."
}
