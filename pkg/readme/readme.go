// Package readme renders uploaded project descriptions to HTML.
//
// Markdown is rendered with goldmark. Plain text is escaped and wrapped in a
// <pre> block. reStructuredText is stored raw with no rendered form, the
// same fallback the JSON API presents for unrenderable descriptions.
package readme

import (
	"bytes"
	"fmt"
	"html"
	"mime"

	"github.com/yuin/goldmark"
)

// The default renderer omits raw HTML blocks, which is what we want for
// untrusted descriptions.
var markdown = goldmark.New()

// Render converts a description to HTML based on its declared content type.
// An empty content type is treated as text/x-rst, matching the historical
// default for package long descriptions. The second return value reports
// whether a rendered form was produced.
func Render(description, contentType string) (string, bool, error) {
	if description == "" {
		return "", false, nil
	}

	mediaType := "text/x-rst"
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", false, fmt.Errorf("invalid description content type %q: %w", contentType, err)
		}
		mediaType = parsed
	}

	switch mediaType {
	case "text/markdown":
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(description), &buf); err != nil {
			return "", false, fmt.Errorf("rendering markdown description: %w", err)
		}
		return buf.String(), true, nil
	case "text/plain":
		return "<pre>" + html.EscapeString(description) + "</pre>", true, nil
	default:
		return "", false, nil
	}
}
