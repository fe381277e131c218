package extract

import (
	"context"
	"fmt"
	"strings"
)

// PlainTextSource is the only built-in TextSource: it accepts text
// documents as-is. PDF and image extraction are external capabilities
// that plug in through the same interface.
type PlainTextSource struct{}

var _ TextSource = (*PlainTextSource)(nil)

func NewPlainTextSource() *PlainTextSource {
	return &PlainTextSource{}
}

func (s *PlainTextSource) Text(_ context.Context, data []byte, mimeType string) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case mt == "", mt == "application/octet-stream":
		// unlabeled uploads are treated as text
	case mt == "text/plain", strings.HasPrefix(mt, "text/plain;"):
	default:
		return "", fmt.Errorf("unsupported document type %q: only text/plain is handled locally", mimeType)
	}
	return string(data), nil
}
