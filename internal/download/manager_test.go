package download

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/shareview-go/internal/shareapi"
)

// fakeDownloader writes scripted content and headers.
type fakeDownloader struct {
	content     string
	fileName    string
	contentType string
	err         error
	calls       int
}

func (f *fakeDownloader) Download(_ context.Context, _, _, _ string, w io.Writer) (*shareapi.DownloadResult, error) {
	f.calls++

	if f.err != nil {
		// Partial write before failure exercises error-path cleanup.
		_, _ = io.WriteString(w, "partial")
		return nil, f.err
	}

	n, _ := io.WriteString(w, f.content)

	return &shareapi.DownloadResult{
		FileName:    f.fileName,
		ContentType: f.contentType,
		Bytes:       int64(n),
	}, nil
}

func (f *fakeDownloader) StreamURL(token, viewerEmail, docID string) string {
	return "https://docs.example.com/api/share/stream/" + token + "?doc_id=" + docID
}

func TestFetchAndOpen_MaterializesFile(t *testing.T) {
	api := &fakeDownloader{content: "hello", fileName: "notes.txt", contentType: "text/plain"}
	m := NewManager(api, t.TempDir(), nil)

	handle, err := m.FetchAndOpen(context.Background(), "abc123", "user@org.com", Options{})
	require.NoError(t, err)
	defer handle.Close()

	assert.Equal(t, "notes.txt", handle.Name)
	assert.Equal(t, "text/plain", handle.ContentType)
	assert.Equal(t, int64(5), handle.Size)
	assert.False(t, handle.Streaming())

	data, err := os.ReadFile(handle.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFetchAndOpen_FilenameFallbacks(t *testing.T) {
	// No disposition filename: the hint wins.
	api := &fakeDownloader{content: "x"}
	m := NewManager(api, t.TempDir(), nil)

	handle, err := m.FetchAndOpen(context.Background(), "t", "e", Options{NameHint: "hinted.bin"})
	require.NoError(t, err)
	defer handle.Close()
	assert.Equal(t, "hinted.bin", handle.Name)

	// No hint either: a stable default.
	handle2, err := m.FetchAndOpen(context.Background(), "t", "e", Options{})
	require.NoError(t, err)
	defer handle2.Close()
	assert.Equal(t, "download", handle2.Name)
}

func TestFetchAndOpen_ErrorPathRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	api := &fakeDownloader{err: errors.New("stream interrupted")}
	m := NewManager(api, dir, nil)

	_, err := m.FetchAndOpen(context.Background(), "t", "e", Options{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial temp file must be removed on failure")
	assert.Nil(t, m.Current())
}

func TestFetchAndOpen_SupersedeReleasesPreviousHandle(t *testing.T) {
	api := &fakeDownloader{content: "one", fileName: "a.txt", contentType: "text/plain"}
	m := NewManager(api, t.TempDir(), nil)
	ctx := context.Background()

	first, err := m.FetchAndOpen(ctx, "t", "e", Options{})
	require.NoError(t, err)

	second, err := m.FetchAndOpen(ctx, "t", "e", Options{})
	require.NoError(t, err)
	defer second.Close()

	_, statErr := os.Stat(first.Path)
	assert.True(t, os.IsNotExist(statErr), "superseded handle's file must be removed")

	_, statErr = os.Stat(second.Path)
	assert.NoError(t, statErr)
	assert.Same(t, second, m.Current())
}

func TestHandle_CloseIsIdempotent(t *testing.T) {
	api := &fakeDownloader{content: "x", fileName: "a.txt"}
	m := NewManager(api, t.TempDir(), nil)

	handle, err := m.FetchAndOpen(context.Background(), "t", "e", Options{})
	require.NoError(t, err)

	require.NoError(t, handle.Close())
	require.NoError(t, handle.Close())
	require.NoError(t, m.Close())
}

func TestFetchAndOpen_VideoStreamsInsteadOfDownloading(t *testing.T) {
	api := &fakeDownloader{}
	m := NewManager(api, t.TempDir(), nil)

	handle, err := m.FetchAndOpen(context.Background(), "abc123", "user@org.com", Options{
		ItemID:   "d-7",
		NameHint: "clip.mp4",
		TypeHint: "video/mp4",
	})
	require.NoError(t, err)
	defer handle.Close()

	assert.True(t, handle.Streaming())
	assert.Contains(t, handle.StreamURL, "/share/stream/abc123")
	assert.Contains(t, handle.StreamURL, "doc_id=d-7")
	assert.Empty(t, handle.Path)
	assert.Zero(t, api.calls, "video must not be fetched whole")
}

func TestEffectiveType(t *testing.T) {
	tests := []struct {
		name       string
		serverType string
		hint       string
		fileName   string
		want       string
	}{
		{"server type wins", "application/pdf", "text/plain", "x.txt", "application/pdf"},
		{"generic server type defers to hint", "application/octet-stream", "image/png", "x", "image/png"},
		{"bad hint falls back to extension", "", "not a mime", "notes.txt", "text/plain; charset=utf-8"},
		{"nothing known", "", "", "mystery", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, effectiveType(tt.serverType, tt.hint, tt.fileName))
		})
	}
}

func TestIsVideo(t *testing.T) {
	assert.True(t, isVideo("video/mp4", ""))
	assert.True(t, isVideo("", "holiday.MOV"))
	assert.False(t, isVideo("application/pdf", "doc.pdf"))
	assert.False(t, isVideo("", "notes.txt"))
}
