package packaging

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MetadataVersions are the core metadata specification versions uploads may
// declare.
var MetadataVersions = []string{"1.0", "1.1", "1.2", "2.1", "2.2", "2.3", "2.4"}

// descriptionContentTypes are the renderable Description-Content-Type bases.
var descriptionContentTypes = map[string]bool{
	"text/plain":    true,
	"text/x-rst":    true,
	"text/markdown": true,
}

var classifierRegex = regexp.MustCompile(`^[A-Za-z0-9+#][A-Za-z0-9 +#:./()',!&_-]*( :: [A-Za-z0-9+#][A-Za-z0-9 +#:./()',!&_-]*)+$`)

const maxSummaryLength = 512

// Metadata is the validated core-metadata subset carried on the upload form.
type Metadata struct {
	MetadataVersion        string
	Name                   string
	Version                Version
	Summary                string
	Description            string
	DescriptionContentType string
	RequiresPython         string
	Classifiers            []string
}

// ValidateMetadataVersion checks the Metadata-Version form field.
func ValidateMetadataVersion(v string) error {
	for _, known := range MetadataVersions {
		if v == known {
			return nil
		}
	}
	return fmt.Errorf("unknown metadata version: %q", v)
}

// ValidateSummary checks the single-line, bounded-length summary rule.
func ValidateSummary(summary string) error {
	if utf8.RuneCountInString(summary) > maxSummaryLength {
		return fmt.Errorf("summary longer than %d characters", maxSummaryLength)
	}
	if strings.ContainsAny(summary, "\r\n") {
		return fmt.Errorf("summary must be a single line")
	}
	return nil
}

// ValidateDescriptionContentType checks the Description-Content-Type field.
// Parameters (charset, variant) are allowed, e.g. "text/markdown; variant=GFM".
func ValidateDescriptionContentType(value string) error {
	if value == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return fmt.Errorf("invalid description content type: %q", value)
	}
	if !descriptionContentTypes[mediaType] {
		return fmt.Errorf("invalid description content type: %q", value)
	}
	return nil
}

// ValidateClassifier checks that a trove classifier is structurally valid
// ("Topic :: Software Development :: Libraries").
func ValidateClassifier(classifier string) error {
	if !classifierRegex.MatchString(classifier) {
		return fmt.Errorf("invalid classifier: %q", classifier)
	}
	return nil
}

// ValidateRequiresPython checks that the Requires-Python field parses as a
// version specifier.
func ValidateRequiresPython(value string) error {
	if value == "" {
		return nil
	}
	if _, err := ParseSpecifier(value); err != nil {
		return fmt.Errorf("invalid requires_python: %w", err)
	}
	return nil
}
