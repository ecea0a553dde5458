package shareapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
)

// DownloadResult reports what the server said about a downloaded blob.
// FileName comes from the Content-Disposition header and is empty when the
// server sent none; ContentType is the declared type, possibly generic.
type DownloadResult struct {
	FileName    string
	ContentType string
	Bytes       int64
}

// Download fetches a shared blob and streams it to w. docID is required for
// items inside a folder share and empty for single-file shares. Returns the
// suggested filename and declared content type from the response headers.
func (c *Client) Download(ctx context.Context, token, viewerEmail, docID string, w io.Writer) (*DownloadResult, error) {
	q := url.Values{}
	q.Set("viewer_email", viewerEmail)

	if docID != "" {
		q.Set("doc_id", docID)
	}

	path := "/share/download/" + url.PathEscape(token) + "?" + q.Encode()

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &DownloadResult{
		FileName:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}

	n, copyErr := io.Copy(w, resp.Body)
	if copyErr != nil {
		c.logger.Error("streaming download content failed",
			slog.String("error", copyErr.Error()),
			slog.Int64("bytes_before_error", n),
		)

		return nil, fmt.Errorf("shareapi: streaming download content: %w", copyErr)
	}

	result.Bytes = n

	c.logger.Debug("download complete",
		slog.String("doc_id", docID),
		slog.Int64("bytes_written", n),
	)

	return result, nil
}

// StreamURL returns the byte-stream endpoint for video content. The URL is
// handed to a player instead of being fetched whole, so playback can start
// before the full blob arrives.
func (c *Client) StreamURL(token, viewerEmail, docID string) string {
	q := url.Values{}
	q.Set("viewer_email", viewerEmail)

	if docID != "" {
		q.Set("doc_id", docID)
	}

	return c.baseURL + "/share/stream/" + url.PathEscape(token) + "?" + q.Encode()
}

// dispositionFilename extracts the suggested filename from a
// Content-Disposition header value. Returns "" when the header is absent
// or unparseable; callers fall back to their own default.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	return params["filename"]
}
