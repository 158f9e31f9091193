package packaging

import (
	"regexp"
	"strings"
)

// nameRegex is the PEP 508 project name rule: ASCII letters, digits, and
// interior runs of ".", "-", "_".
var nameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// ValidName reports whether name is a legal project name.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// NormalizeName applies PEP 503 normalization: runs of "-", "_" and "." are
// collapsed to a single "-" and the result is lowercased. Two names that
// normalize to the same string refer to the same project.
func NormalizeName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllLiteralString(name, "-"))
}
