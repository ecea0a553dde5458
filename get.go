package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docuvault/shareview-go/internal/download"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <link> [doc-id]",
		Short: "Download shared content",
		Long: `Download a shared document. Single-file shares need no document ID;
folder shares take the ID of one file from a listing, or --all to download
every file in the share, preserving the folder structure.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runGet,
	}

	cmd.Flags().StringP("output", "o", "", "output file (single download) or directory (--all)")
	cmd.Flags().Bool("all", false, "download every file in a folder share")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	token, err := extractToken(args[0])
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	output, _ := cmd.Flags().GetString("output")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	verified, err := a.ensureAccess(ctx, token)
	if err != nil {
		return err
	}

	if all {
		if verified.ShareType != shareapi.ShareTypeFolder {
			return fmt.Errorf("--all applies to folder shares only")
		}

		if len(args) == 2 {
			return fmt.Errorf("--all downloads everything; do not pass a document ID")
		}

		return getAll(ctx, a, token, verified.Email, output)
	}

	docID := ""
	if len(args) == 2 {
		docID = args[1]
	}

	if verified.ShareType == shareapi.ShareTypeFolder && docID == "" {
		return fmt.Errorf("folder shares need a document ID; run ls first, or use --all")
	}

	return getOne(ctx, a, token, verified.Email, docID, output)
}

// getOne downloads a single document. With no explicit output path the
// server's suggested filename lands in the current directory. When the
// session probe already fetched the document, its bytes are copied out
// instead of downloading again.
func getOne(ctx context.Context, a *app, token, email, docID, output string) error {
	if docID == "" {
		if handle := a.takeCached(); handle != nil {
			defer handle.Close()

			if !handle.Streaming() {
				return saveHandle(handle, output)
			}
		}
	}

	if output != "" {
		res, err := downloadTo(ctx, a, token, email, docID, output)
		if err != nil {
			return err
		}

		statusf("Downloaded %s (%s)\n", output, formatSize(res.Bytes))

		return nil
	}

	// Filename is only known from the response headers, so download to a
	// temp name first and rename once it arrives.
	name, size, err := downloadNamed(ctx, a, token, email, docID, ".", "")
	if err != nil {
		return err
	}

	statusf("Downloaded %s (%s)\n", name, formatSize(size))

	return nil
}

// saveHandle copies an already-fetched document to output, or to the
// handle's filename in the current directory when output is empty.
func saveHandle(handle *download.Handle, output string) error {
	dest := output
	if dest == "" {
		name := handle.Name
		if name == "" {
			name = "download"
		}

		dest = filepath.Base(name)
	}

	if err := copyFile(handle.Path, dest); err != nil {
		return err
	}

	statusf("Downloaded %s (%s)\n", dest, formatSize(handle.Size))

	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)

	closeErr := out.Close()

	if err != nil {
		os.Remove(dest)
		return err
	}

	if closeErr != nil {
		os.Remove(dest)
		return closeErr
	}

	return nil
}

// remoteFile is one downloadable item found while walking a folder share.
type remoteFile struct {
	id      string
	relPath string
}

// getAll walks a folder share and downloads every file into destDir,
// preserving the folder structure. Downloads run in parallel, bounded by
// transfers.parallel_downloads.
func getAll(ctx context.Context, a *app, token, email, destDir string) error {
	if destDir == "" {
		destDir = a.cfg.DownloadDir
	}

	if destDir == "" {
		destDir = "."
	}

	files, err := collectFiles(ctx, a.api, token, email, "", "")
	if err != nil {
		return fmt.Errorf("walking shared folder: %w", err)
	}

	if len(files) == 0 {
		statusf("Nothing to download\n")
		return nil
	}

	statusf("Downloading %d files to %s\n", len(files), destDir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.ParallelDownloads)

	for _, f := range files {
		g.Go(func() error {
			dest := filepath.Join(destDir, f.relPath)

			if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(dest), mkErr)
			}

			res, dlErr := downloadTo(gctx, a, token, email, f.id, dest)
			if dlErr != nil {
				return fmt.Errorf("downloading %s: %w", f.relPath, dlErr)
			}

			statusf("  %s (%s)\n", f.relPath, formatSize(res.Bytes))

			return nil
		})
	}

	return g.Wait()
}

// collectFiles lists folderID and recurses into subfolders, returning every
// file with its path relative to the share root. The walk is serial; only
// the downloads themselves are parallelized.
func collectFiles(ctx context.Context, api *shareapi.Client, token, email, folderID, prefix string) ([]remoteFile, error) {
	listing, err := api.FolderContents(ctx, token, email, folderID)
	if err != nil {
		return nil, err
	}

	var files []remoteFile

	for _, item := range listing.Contents {
		if !safeItemName(item.Name) {
			return nil, fmt.Errorf("listing contains unsafe item name %q", item.Name)
		}

		rel := filepath.Join(prefix, item.Name)

		if item.IsFolder() {
			sub, subErr := collectFiles(ctx, api, token, email, item.ID, rel)
			if subErr != nil {
				return nil, subErr
			}

			files = append(files, sub...)

			continue
		}

		files = append(files, remoteFile{id: item.ID, relPath: rel})
	}

	return files, nil
}

// safeItemName reports whether a server-supplied item name is a single
// plain path component. Anything with separators or dot components could
// place a download outside the destination directory and is rejected.
func safeItemName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if strings.ContainsAny(name, `/\`) {
		return false
	}

	return filepath.IsLocal(name)
}

// downloadTo streams one document into the file at dest. A partial file is
// removed on failure.
func downloadTo(ctx context.Context, a *app, token, email, docID, dest string) (*shareapi.DownloadResult, error) {
	f, err := os.Create(dest)
	if err != nil {
		return nil, err
	}

	res, err := a.api.Download(ctx, token, email, docID, f)

	closeErr := f.Close()

	if err != nil {
		os.Remove(dest)
		return nil, err
	}

	if closeErr != nil {
		os.Remove(dest)
		return nil, closeErr
	}

	return res, nil
}

// downloadNamed downloads into dir under the server's suggested filename,
// which is only known from the response headers. The content lands in a
// temp file first and is renamed once the name is known.
func downloadNamed(ctx context.Context, a *app, token, email, docID, dir, nameHint string) (string, int64, error) {
	tmp, err := os.CreateTemp(dir, ".shareview-*")
	if err != nil {
		return "", 0, err
	}

	tmpName := tmp.Name()

	res, err := a.api.Download(ctx, token, email, docID, tmp)

	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tmpName)
		return "", 0, err
	}

	if closeErr != nil {
		os.Remove(tmpName)
		return "", 0, closeErr
	}

	name := res.FileName
	if name == "" {
		name = nameHint
	}

	if name == "" {
		name = "download"
	}

	dest := filepath.Join(dir, filepath.Base(name))

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", 0, err
	}

	return dest, res.Bytes, nil
}
