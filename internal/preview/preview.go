// Package preview classifies downloaded content and parses it for
// type-specific rendering: workbook grids, slide-deck text, decoded plain
// text. Kinds without a parsed payload (image, PDF, video) are rendered
// straight from the handle by the caller.
package preview

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Kind is the renderer a blob dispatches to.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindPDF
	KindVideo
	KindSpreadsheet
	KindPresentation
	KindText
)

// String returns the kind name for display and logging.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	case KindVideo:
		return "video"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindPresentation:
		return "presentation"
	case KindText:
		return "text"
	default:
		return "unsupported"
	}
}

// Workbook content types, binary and XML-zip formats.
var spreadsheetTypes = map[string]bool{
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel.sheet.macroenabled.12":                    true,
}

// Slide-deck content types.
var presentationTypes = map[string]bool{
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

var spreadsheetExtensions = map[string]bool{
	".xlsx": true, ".xls": true, ".xlsm": true, ".xltx": true,
}

var presentationExtensions = map[string]bool{
	".pptx": true, ".ppt": true,
}

// Extensions rendered as plain text when the content type is generic.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".log": true, ".json": true,
	".xml": true, ".yaml": true, ".yml": true, ".html": true, ".htm": true,
}

// genericTypes carry no information; classification falls through to the
// filename extension for these.
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// Classify maps a declared content type and filename to a renderer kind.
// First match wins: image, pdf, video, spreadsheet, presentation, text,
// else unsupported. The extension is consulted only when the declared type
// is generic or absent.
func Classify(contentType, fileName string) Kind {
	base := baseType(contentType)

	if !genericTypes[base] {
		switch {
		case strings.HasPrefix(base, "image/"):
			return KindImage
		case base == "application/pdf":
			return KindPDF
		case strings.HasPrefix(base, "video/"):
			return KindVideo
		case spreadsheetTypes[base]:
			return KindSpreadsheet
		case presentationTypes[base]:
			return KindPresentation
		case strings.HasPrefix(base, "text/"):
			return KindText
		}
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); {
	case spreadsheetExtensions[ext]:
		return KindSpreadsheet
	case presentationExtensions[ext]:
		return KindPresentation
	case textExtensions[ext]:
		return KindText
	case ext == ".pdf":
		return KindPDF
	}

	return KindUnsupported
}

// baseType strips parameters from a content type value.
func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(base))
}

// Preview is parsed content ready for rendering. Exactly one payload field
// is set, matching Kind; kinds without payloads set none. Note carries a
// non-fatal condition such as "nothing to preview"; the download remains
// available regardless.
type Preview struct {
	Kind     Kind
	Workbook *Workbook
	Deck     *Deck
	Text     string
	Note     string
}

// Dispatcher routes downloaded blobs to the matching parser.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{logger: logger}
}

// Dispatch classifies the blob at path and parses it if its kind has a
// parser. Parse failures for office formats degrade to a non-fatal note
// rather than an error: the viewer can still download the file.
func (d *Dispatcher) Dispatch(path, contentType, fileName string) (*Preview, error) {
	kind := Classify(contentType, fileName)

	d.logger.Debug("classified content",
		slog.String("name", fileName),
		slog.String("content_type", contentType),
		slog.String("kind", kind.String()),
	)

	switch kind {
	case KindSpreadsheet:
		wb, err := OpenWorkbook(path)
		if err != nil {
			d.logger.Warn("workbook parse failed", slog.String("error", err.Error()))

			return &Preview{Kind: kind, Note: "cannot preview this workbook format, download it instead"}, nil
		}

		return &Preview{Kind: kind, Workbook: wb}, nil

	case KindPresentation:
		deck, err := OpenDeck(path)
		if err != nil {
			d.logger.Warn("slide deck parse failed", slog.String("error", err.Error()))

			return &Preview{Kind: kind, Note: "cannot preview this presentation format, download it instead"}, nil
		}

		if deck.Empty() {
			return &Preview{Kind: kind, Deck: deck, Note: "nothing to preview in this presentation"}, nil
		}

		return &Preview{Kind: kind, Deck: deck}, nil

	case KindText:
		text, err := DecodeText(path, contentType)
		if err != nil {
			return nil, fmt.Errorf("preview: decoding text: %w", err)
		}

		return &Preview{Kind: kind, Text: text}, nil

	case KindUnsupported:
		return &Preview{Kind: kind, Note: "preview not supported for this file type, download it instead"}, nil

	default:
		// Image, PDF, video: rendered from the handle directly.
		return &Preview{Kind: kind}, nil
	}
}
