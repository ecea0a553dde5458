package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and clear cached verification sessions",
	}

	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionClearCmd())

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <link>",
		Short: "Show the cached session for a share link",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionShow,
	}
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <link>",
		Short: "Forget the cached session for a share link",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionClear,
	}
}

func runSessionShow(cmd *cobra.Command, args []string) error {
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

	sess, err := a.store.Read(ctx, token)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}

	if sess == nil {
		fmt.Println("No cached session for this link.")
		return nil
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(map[string]string{
			"email":       sess.Email,
			"verified_at": sess.VerifiedAt.Format("2006-01-02 15:04:05"),
			"share_type":  sess.ShareType,
			"folder_id":   sess.FolderID,
		})
	}

	fmt.Printf("Email:       %s\n", sess.Email)
	fmt.Printf("Verified at: %s\n", formatTime(sess.VerifiedAt))
	fmt.Printf("Share type:  %s\n", sess.ShareType)

	if sess.FolderID != "" {
		fmt.Printf("Folder ID:   %s\n", sess.FolderID)
	}

	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
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

	if err := a.store.Clear(ctx, token); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	statusf("Session cleared.\n")

	return nil
}
