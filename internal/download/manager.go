// Package download performs authenticated blob fetches for verified
// viewers and manages the lifecycle of the resulting local handles. Every
// materialized handle is released exactly once: when a new file is opened
// in its place, when the preview closes, or on teardown, never leaked for
// the life of the run.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/docuvault/shareview-go/internal/shareapi"
)

// Downloader is the slice of the share client the manager needs.
type Downloader interface {
	Download(ctx context.Context, token, viewerEmail, docID string, w io.Writer) (*shareapi.DownloadResult, error)
	StreamURL(token, viewerEmail, docID string) string
}

// Handle is a materialized reference to downloaded content: either a local
// temp file (Path) or, for video, a streaming URL that is never fetched
// whole. Close releases the local resource; releasing twice is safe and
// the second call is a no-op.
type Handle struct {
	Path        string
	StreamURL   string
	Name        string
	ContentType string
	Size        int64

	releaseOnce sync.Once
	releaseErr  error
}

// Streaming reports whether the handle references a byte stream rather
// than a fully fetched local file.
func (h *Handle) Streaming() bool {
	return h.StreamURL != ""
}

// Close releases the handle's local file, exactly once.
func (h *Handle) Close() error {
	h.releaseOnce.Do(func() {
		if h.Path == "" {
			return
		}

		if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
			h.releaseErr = fmt.Errorf("download: releasing %s: %w", h.Path, err)
		}
	})

	return h.releaseErr
}

// Options qualifies a fetch. ItemID is required for items inside a folder
// share and empty for single-file shares. NameHint and TypeHint come from
// the folder listing and are fallbacks only; the server's response headers
// win when present.
type Options struct {
	ItemID   string
	NameHint string
	TypeHint string
}

// Manager fetches shared blobs and owns the currently open handle.
// Opening a new file releases the previous handle.
type Manager struct {
	api    Downloader
	dir    string
	logger *slog.Logger

	current *Handle
}

// NewManager creates a manager. dir is where temp files are materialized;
// empty uses the system temp directory.
func NewManager(api Downloader, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{api: api, dir: dir, logger: logger}
}

// Current returns the open handle, or nil.
func (m *Manager) Current() *Handle {
	return m.current
}

// Close releases the current handle, if any. Safe to call on teardown
// regardless of state.
func (m *Manager) Close() error {
	if m.current == nil {
		return nil
	}

	err := m.current.Close()
	m.current = nil

	return err
}

// FetchAndOpen downloads a shared item and returns a handle to it,
// releasing any previously open handle. Video content is special-cased to
// a streaming URL so playback does not require buffering the whole blob.
func (m *Manager) FetchAndOpen(ctx context.Context, token, viewerEmail string, opts Options) (*Handle, error) {
	if isVideo(opts.TypeHint, opts.NameHint) {
		handle := &Handle{
			StreamURL:   m.api.StreamURL(token, viewerEmail, opts.ItemID),
			Name:        opts.NameHint,
			ContentType: effectiveType("", opts.TypeHint, opts.NameHint),
		}

		m.replace(handle)

		return handle, nil
	}

	tmp, err := os.CreateTemp(m.dir, "shareview-*"+filepath.Ext(opts.NameHint))
	if err != nil {
		return nil, fmt.Errorf("download: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	result, err := m.api.Download(ctx, token, viewerEmail, opts.ItemID, tmp)

	closeErr := tmp.Close()

	if err != nil {
		// Release the partial file on the error path too.
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("download: closing temp file: %w", closeErr)
	}

	name := result.FileName
	if name == "" {
		name = opts.NameHint
	}

	if name == "" {
		name = "download"
	}

	handle := &Handle{
		Path:        tmpPath,
		Name:        name,
		ContentType: effectiveType(result.ContentType, opts.TypeHint, name),
		Size:        result.Bytes,
	}

	m.replace(handle)

	m.logger.Debug("opened shared item",
		slog.String("name", handle.Name),
		slog.String("content_type", handle.ContentType),
		slog.Int64("size", handle.Size),
	)

	return handle, nil
}

// replace installs a new current handle, releasing its predecessor.
func (m *Manager) replace(handle *Handle) {
	if m.current != nil {
		if err := m.current.Close(); err != nil {
			m.logger.Warn("releasing superseded handle failed", slog.String("error", err.Error()))
		}
	}

	m.current = handle
}

// genericTypes are declared content types that carry no real information.
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// effectiveType picks the content type for a handle: the server's declared
// type when it is specific, otherwise the caller's hint when it looks like
// a genuine MIME type, otherwise a guess from the filename extension.
func effectiveType(serverType, hint, name string) string {
	if base := baseType(serverType); !genericTypes[base] {
		return serverType
	}

	if looksLikeMIME(hint) {
		return hint
	}

	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}

	return "application/octet-stream"
}

// baseType strips parameters from a content type value.
func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(base))
}

// looksLikeMIME reports whether s plausibly names a MIME type rather than
// an arbitrary string (listings sometimes carry bare extensions here).
func looksLikeMIME(s string) bool {
	major, minor, ok := strings.Cut(s, "/")
	return ok && major != "" && minor != "" && !strings.ContainsAny(s, " \t")
}

// videoExtensions classify filenames when no content type is available.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true, ".m4v": true,
}

// isVideo reports whether the item should stream rather than download.
func isVideo(typeHint, name string) bool {
	if strings.HasPrefix(baseType(typeHint), "video/") {
		return true
	}

	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}
