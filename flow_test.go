package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/shareview-go/internal/access"
	"github.com/docuvault/shareview-go/internal/session"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

// shareBackend is an httptest stand-in for the share server: one token,
// one valid code, a one-folder listing.
type shareBackend struct {
	info         shareapi.ShareInfo
	otpRequested atomic.Int32
	verified     atomic.Int32
	listed       atomic.Int32
}

func (b *shareBackend) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/share/info/tok1", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(b.info)
	})

	mux.HandleFunc("/share/request-access/tok1", func(w http.ResponseWriter, r *http.Request) {
		b.otpRequested.Add(1)

		var payload struct {
			ViewerEmail string `json:"viewer_email"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotEmpty(t, payload.ViewerEmail)

		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/share/verify-access/tok1", func(w http.ResponseWriter, r *http.Request) {
		b.verified.Add(1)

		var payload struct {
			ViewerEmail string `json:"viewer_email"`
			OTP         string `json:"otp"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		if payload.OTP != "424242" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"kind":"access_denied","message":"The code is incorrect."}`))

			return
		}

		_ = json.NewEncoder(w).Encode(shareapi.VerifyResult{
			ShareType: shareapi.ShareTypeFolder,
			FolderID:  "root-1",
		})
	})

	mux.HandleFunc("/share/folder-contents/tok1", func(w http.ResponseWriter, _ *http.Request) {
		b.listed.Add(1)

		_ = json.NewEncoder(w).Encode(shareapi.FolderListing{
			FolderID:     "root-1",
			RootFolderID: "root-1",
			FolderName:   "Shared",
			Breadcrumbs:  []shareapi.Breadcrumb{{ID: "root-1", Name: "Shared"}},
		})
	})

	return mux
}

// newFlowFixture wires a real client, a real sqlite-backed session store,
// and a machine against the httptest backend.
func newFlowFixture(t *testing.T, backend *shareBackend) (*shareapi.Client, *session.Store, func() *access.Machine) {
	t.Helper()

	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	api := shareapi.NewClient(srv.URL, http.DefaultClient, "shareview-test", testLogger())

	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	machine := func() *access.Machine {
		return access.NewMachine("tok1", &backend.info, api, store, "", testLogger())
	}

	return api, store, machine
}

func folderProbe(api *shareapi.Client) access.Probe {
	return func(ctx context.Context, sess session.Session) error {
		_, err := api.FolderContents(ctx, "tok1", sess.Email, "")
		return err
	}
}

func TestFlowOpenShareVerifyThenList(t *testing.T) {
	backend := &shareBackend{info: shareapi.ShareInfo{ShareType: shareapi.ShareTypeFolder}}
	api, _, machine := newFlowFixture(t, backend)

	in := strings.NewReader("viewer@example.com\n424242\n")
	var errOut bytes.Buffer

	verified, err := runAccessFlow(context.Background(), machine(), folderProbe(api), true, in, &errOut)
	require.NoError(t, err)

	assert.Equal(t, "viewer@example.com", verified.Email)
	assert.Equal(t, "root-1", verified.FolderID)
	assert.Equal(t, int32(1), backend.otpRequested.Load())

	listing, err := api.FolderContents(context.Background(), "tok1", verified.Email, "")
	require.NoError(t, err)
	assert.Equal(t, "Shared", listing.FolderName)
}

func TestFlowRestrictedAutoSend(t *testing.T) {
	backend := &shareBackend{info: shareapi.ShareInfo{
		IsRestricted:    true,
		TargetEmail:     "known@example.com",
		TargetEmailHint: "k***n@example.com",
		ShareType:       shareapi.ShareTypeFolder,
	}}
	api, _, machine := newFlowFixture(t, backend)

	// Only the code is prompted for; the email was never asked.
	in := strings.NewReader("424242\n")
	var errOut bytes.Buffer

	verified, err := runAccessFlow(context.Background(), machine(), folderProbe(api), true, in, &errOut)
	require.NoError(t, err)

	assert.Equal(t, "known@example.com", verified.Email)
	assert.Equal(t, int32(1), backend.otpRequested.Load())
	assert.NotContains(t, errOut.String(), "Email address:")
}

func TestFlowSessionReentrySkipsVerification(t *testing.T) {
	backend := &shareBackend{info: shareapi.ShareInfo{ShareType: shareapi.ShareTypeFolder}}
	api, store, machine := newFlowFixture(t, backend)

	// First run verifies interactively and persists the session.
	in := strings.NewReader("viewer@example.com\n424242\n")
	_, err := runAccessFlow(context.Background(), machine(), folderProbe(api), true, in, &bytes.Buffer{})
	require.NoError(t, err)

	sess, err := store.Read(context.Background(), "tok1")
	require.NoError(t, err)
	require.NotNil(t, sess)

	// Second run restores silently: no prompts, no new OTP dispatch.
	verified, err := runAccessFlow(context.Background(), machine(), folderProbe(api), false, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)

	assert.True(t, verified.Restored)
	assert.Equal(t, "viewer@example.com", verified.Email)
	assert.Equal(t, int32(1), backend.otpRequested.Load())
	assert.Equal(t, int32(1), backend.verified.Load())
}
