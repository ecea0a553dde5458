// Package nav implements lazy, breadcrumb-tracked traversal of a shared
// folder tree. Listings and breadcrumb trails are always re-fetched from
// the server: the shared subtree's visibility rules live server-side, and
// a folder can be the root of the share even though it has real ancestors
// in the full filesystem, so the client never joins paths locally.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docuvault/shareview-go/internal/shareapi"
)

// ErrSuperseded reports that a newer navigation replaced this one while its
// fetch was in flight. The stale result is discarded, never rendered.
var ErrSuperseded = errors.New("nav: navigation superseded")

// ErrAtRoot reports a GoUp from the share's root folder.
var ErrAtRoot = errors.New("nav: already at the share root")

// Lister is the slice of the share client the navigator needs.
type Lister interface {
	FolderContents(ctx context.Context, token, viewerEmail, parentID string) (*shareapi.FolderListing, error)
}

// Navigator tracks the currently viewed folder of one folder share.
// Last-write-wins at the view layer: results are idempotent reads, so no
// request cancellation protocol is needed: a superseded fetch's result is
// simply discarded.
type Navigator struct {
	api    Lister
	token  string
	email  string
	rootID string
	logger *slog.Logger

	// gen identifies the most recent navigation. A fetch whose generation
	// no longer matches on completion was superseded.
	gen int

	loading bool
	current *shareapi.FolderListing
}

// New creates a navigator for a verified folder share. rootID is the root
// folder id reported by verification (or the restored session).
func New(api Lister, token, email, rootID string, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Navigator{
		api:    api,
		token:  token,
		email:  email,
		rootID: rootID,
		logger: logger,
	}
}

// Current returns the active listing, or nil before the first navigation.
// While a navigation is in flight Current keeps returning the previous
// listing; Loading distinguishes the two.
func (n *Navigator) Current() *shareapi.FolderListing {
	return n.current
}

// Loading reports whether a navigation fetch is in flight.
func (n *Navigator) Loading() bool {
	return n.loading
}

// EnterRoot navigates to the share's root folder.
func (n *Navigator) EnterRoot(ctx context.Context) (*shareapi.FolderListing, error) {
	return n.Enter(ctx, n.rootID)
}

// Enter fetches folderID's contents plus the server-computed breadcrumb
// trail and replaces the current view. Entering the same folder twice
// yields the same listing: the fetch is an idempotent read.
func (n *Navigator) Enter(ctx context.Context, folderID string) (*shareapi.FolderListing, error) {
	n.gen++
	myGen := n.gen
	n.loading = true

	listing, err := n.api.FolderContents(ctx, n.token, n.email, folderID)

	if n.gen != myGen {
		// A newer navigation started while this fetch was in flight.
		n.logger.Debug("discarding superseded navigation",
			slog.String("folder_id", folderID),
		)

		return nil, ErrSuperseded
	}

	n.loading = false

	if err != nil {
		return nil, fmt.Errorf("nav: entering folder %s: %w", folderID, err)
	}

	n.current = listing

	return listing, nil
}

// GoUp re-enters the second-to-last breadcrumb. The trail always ends with
// the current folder, so its predecessor is the parent within the share.
func (n *Navigator) GoUp(ctx context.Context) (*shareapi.FolderListing, error) {
	if n.current == nil || len(n.current.Breadcrumbs) < 2 {
		return nil, ErrAtRoot
	}

	parent := n.current.Breadcrumbs[len(n.current.Breadcrumbs)-2]

	return n.Enter(ctx, parent.ID)
}
