package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/docuvault/shareview-go/internal/download"
	"github.com/docuvault/shareview-go/internal/nav"
	"github.com/docuvault/shareview-go/internal/preview"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <link>",
		Short: "Open a share link: verify access and show its content",
		Long: `Open a share link. Verifies your access (restoring a cached session when
possible), then shows what the link points at: the root listing for folder
shares, or a preview of the document for single-file shares.`,
		Args: cobra.ExactArgs(1),
		RunE: runOpen,
	}
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	token, err := extractToken(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	verified, err := a.ensureAccess(ctx, token)
	if err != nil {
		return err
	}

	if verified.ShareType == shareapi.ShareTypeFolder {
		navigator := nav.New(a.api, token, verified.Email, verified.FolderID, a.logger)

		listing, listErr := navigator.EnterRoot(ctx)
		if listErr != nil {
			return fmt.Errorf("listing shared folder: %w", listErr)
		}

		return printListing(listing)
	}

	return previewShared(ctx, a, os.Stdout, token, verified.Email, download.Options{})
}

// printListing renders a folder listing as a table, or as JSON with --json.
func printListing(listing *shareapi.FolderListing) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(listing)
	}

	fmt.Println(breadcrumbPath(listing.Breadcrumbs))

	if len(listing.Contents) == 0 {
		fmt.Println("(empty folder)")
		return nil
	}

	rows := make([][]string, 0, len(listing.Contents))

	for _, item := range listing.Contents {
		kind := item.MediaType
		if item.IsFolder() {
			kind = "folder"
		}

		rows = append(rows, []string{item.Name, kind, item.ID})
	}

	printTable(os.Stdout, []string{"NAME", "TYPE", "ID"}, rows)

	return nil
}

// breadcrumbPath joins the server-computed trail into a display path.
func breadcrumbPath(crumbs []shareapi.Breadcrumb) string {
	path := ""
	for _, c := range crumbs {
		path += "/" + c.Name
	}

	if path == "" {
		return "/"
	}

	return path
}

// previewShared downloads one document and renders its preview. Used by
// both open (single-file shares) and view (any document). When the session
// probe already fetched the document, that handle is rendered directly.
func previewShared(ctx context.Context, a *app, w io.Writer, token, email string, opts download.Options) error {
	var handle *download.Handle
	if opts.ItemID == "" {
		handle = a.takeCached()
	}

	if handle == nil {
		var err error

		handle, err = a.downloads().FetchAndOpen(ctx, token, email, opts)
		if err != nil {
			return fmt.Errorf("fetching document: %w", err)
		}
	}

	dispatcher := preview.NewDispatcher(a.logger)

	return renderPreview(w, dispatcher, handle)
}
