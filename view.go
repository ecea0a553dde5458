package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/docuvault/shareview-go/internal/download"
	"github.com/docuvault/shareview-go/internal/preview"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

// flagSheet selects a workbook sheet by name in view.
var flagSheet string

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <link> [doc-id]",
		Short: "Preview shared content in the terminal",
		Long: `Fetch a shared document and render a preview: spreadsheet grids, slide
deck text, and plain text render inline; images, PDFs, and videos report
their metadata (videos stream and are never fetched whole).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runView,
	}

	cmd.Flags().StringVar(&flagSheet, "sheet", "", "workbook sheet to render (default: first sheet)")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
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

	opts := download.Options{}

	if len(args) == 2 {
		opts.ItemID = args[1]
	} else if verified.ShareType == shareapi.ShareTypeFolder {
		return fmt.Errorf("folder shares need a document ID; run ls first")
	}

	return previewShared(ctx, a, os.Stdout, token, verified.Email, opts)
}

// renderPreview classifies the handle's content and writes the preview to
// w. Unsupported and unparseable content degrades to a note, never an
// error: the download itself already succeeded.
func renderPreview(w io.Writer, dispatcher *preview.Dispatcher, handle *download.Handle) error {
	if handle.Streaming() {
		fmt.Fprintf(w, "%s (video)\n", handle.Name)
		fmt.Fprintf(w, "Stream URL: %s\n", handle.StreamURL)

		return nil
	}

	p, err := dispatcher.Dispatch(handle.Path, handle.ContentType, handle.Name)
	if err != nil {
		return err
	}

	statusf("%s (%s, %s)\n", handle.Name, p.Kind, formatSize(handle.Size))

	if p.Note != "" {
		fmt.Fprintln(w, p.Note)
	}

	switch p.Kind {
	case preview.KindSpreadsheet:
		if p.Workbook == nil {
			return nil
		}
		defer p.Workbook.Close()

		return renderWorkbook(w, p.Workbook)

	case preview.KindText:
		fmt.Fprint(w, p.Text)

		if p.Text != "" && p.Text[len(p.Text)-1] != '\n' {
			fmt.Fprintln(w)
		}

	case preview.KindPresentation:
		if p.Deck != nil {
			renderDeck(w, p.Deck)
		}

	case preview.KindImage, preview.KindPDF, preview.KindVideo:
		fmt.Fprintf(w, "No inline preview for %s content; use get to save it\n", p.Kind)
	}

	return nil
}

// renderWorkbook prints one sheet as an aligned grid, plus the sheet list
// when the workbook has more than one.
func renderWorkbook(w io.Writer, wb *preview.Workbook) error {
	sheet := flagSheet
	if sheet == "" {
		sheet = wb.DefaultSheet()
	}

	grid, err := wb.Grid(sheet)
	if err != nil {
		return err
	}

	if sheets := wb.Sheets(); len(sheets) > 1 {
		fmt.Fprintf(w, "Sheets: %v (showing %q)\n", sheets, sheet)
	}

	if len(grid) == 0 {
		fmt.Fprintln(w, "(empty sheet)")
		return nil
	}

	// Ragged rows pad out to the widest row for table alignment.
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	rows := make([][]string, 0, len(grid))

	for _, row := range grid {
		padded := make([]string, width)
		copy(padded, row)
		rows = append(rows, padded)
	}

	headers := make([]string, width)
	for i := range headers {
		headers[i] = fmt.Sprintf("C%d", i+1)
	}

	printTable(w, headers, rows)

	return nil
}

// renderDeck prints the extracted slide text in slide order.
func renderDeck(w io.Writer, deck *preview.Deck) {
	for _, slide := range deck.Slides {
		if slide.Title != "" {
			fmt.Fprintf(w, "Slide %d: %s\n", slide.ID, slide.Title)
		} else {
			fmt.Fprintf(w, "Slide %d\n", slide.ID)
		}

		for _, line := range slide.Content {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if deck.Thumbnail != nil {
		statusf("(deck has a packaged thumbnail: %s, %s)\n", deck.ThumbnailName, formatSize(int64(len(deck.Thumbnail))))
	}
}
