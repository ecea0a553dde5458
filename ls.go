package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuvault/shareview-go/internal/nav"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <link> [folder-id]",
		Short: "List a shared folder",
		Long: `List the contents of a shared folder. With no folder ID the share's root
folder is listed; pass a subfolder ID from a previous listing to descend.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runLs,
	}
}

func runLs(cmd *cobra.Command, args []string) error {
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

	if verified.ShareType != shareapi.ShareTypeFolder {
		return fmt.Errorf("this link shares a single document, not a folder; use view or get")
	}

	navigator := nav.New(a.api, token, verified.Email, verified.FolderID, a.logger)

	var listing *shareapi.FolderListing

	if len(args) == 2 {
		listing, err = navigator.Enter(ctx, args[1])
	} else {
		listing, err = navigator.EnterRoot(ctx)
	}

	if err != nil {
		return fmt.Errorf("listing shared folder: %w", err)
	}

	return printListing(listing)
}
