package preview

import (
	"fmt"
	"mime"
	"os"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeText reads the file at path and decodes it to UTF-8 for verbatim
// rendering, whitespace preserved. The charset declared in the content type
// wins; otherwise valid UTF-8 passes through and anything else goes through
// best-effort charset detection.
func DecodeText(path, contentType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text content: %w", err)
	}

	if cs := declaredCharset(contentType); cs != "" {
		if decoded, decodeErr := decodeAs(data, cs); decodeErr == nil {
			return decoded, nil
		}
		// A bogus declared charset falls through to detection.
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	detected, err := chardet.NewTextDetector().DetectBest(data)
	if err == nil {
		if decoded, decodeErr := decodeAs(data, detected.Charset); decodeErr == nil {
			return decoded, nil
		}
	}

	// Last resort: render as-is with replacement characters.
	return string(data), nil
}

// declaredCharset extracts the charset parameter from a content type value.
func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return params["charset"]
}

// decodeAs decodes data from the named charset to UTF-8.
func decodeAs(data []byte, charset string) (string, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unknown charset %q: %w", charset, err)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", charset, err)
	}

	return string(decoded), nil
}
