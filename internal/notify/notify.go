// Package notify posts upload metadata to the backend callback endpoint
// after a document has landed in object storage.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/docpipe/doc-upload/internal/logger"
	"github.com/docpipe/doc-upload/pkg/models"
)

// DefaultCallbackURL is where the backend listens unless configured otherwise
const DefaultCallbackURL = "http://localhost:8000/api/upload/upload-callback"

// BodyKind discriminates how the callback response body was decoded
type BodyKind string

const (
	BodyJSON BodyKind = "json"
	BodyText BodyKind = "text"
)

// Body holds the callback response body. The backend normally answers with
// JSON, but proxies and error pages can return anything, so a body that does
// not parse is kept as plain text instead of being thrown away.
type Body struct {
	Kind BodyKind
	JSON map[string]interface{}
	Text string
}

// Result is the outcome of a successful callback round trip
type Result struct {
	StatusCode int
	Body       Body
}

// RejectionError is returned when the backend is reachable but answers the
// callback with a non-2xx status.
type RejectionError struct {
	StatusCode int
	Body       Body
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("backend rejected upload metadata: status %d", e.StatusCode)
}

// IsRejection reports whether err is a backend rejection rather than a
// transport failure.
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}

// Notifier sends upload callbacks to the backend
type Notifier struct {
	url    string
	client *http.Client
}

// New creates a Notifier for the given callback URL. A nil client uses
// http.DefaultClient, matching how the rest of the tool talks HTTP.
func New(url string, client *http.Client) *Notifier {
	if url == "" {
		url = DefaultCallbackURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{
		url:    url,
		client: client,
	}
}

// URL returns the callback URL
func (n *Notifier) URL() string {
	return n.url
}

// Notify POSTs the metadata as JSON. It returns a *RejectionError when the
// backend answers with a non-2xx status, and the transport error unchanged
// when the request itself fails. The response body is attached either way.
func (n *Notifier) Notify(ctx context.Context, meta *models.UploadMetadata) (*Result, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()

	body := decodeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("Callback rejected %s: status %d, body: %s", meta.FilePath, resp.StatusCode, body.Preview())
		return nil, &RejectionError{
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	logger.Debug("Callback accepted %s: status %d", meta.FilePath, resp.StatusCode)

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// decodeBody reads the response body as JSON, falling back to plain text
func decodeBody(r io.Reader) Body {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Body{Kind: BodyText, Text: ""}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return Body{Kind: BodyJSON, JSON: parsed}
	}

	return Body{Kind: BodyText, Text: string(raw)}
}

// Preview returns a short diagnostic rendering of the body
func (b Body) Preview() string {
	const max = 200

	var s string
	switch b.Kind {
	case BodyJSON:
		raw, err := json.Marshal(b.JSON)
		if err != nil {
			return "<unprintable>"
		}
		s = string(raw)
	default:
		s = b.Text
	}

	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
