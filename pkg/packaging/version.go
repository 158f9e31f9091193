package packaging

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionRegex is the permissive PEP 440 Appendix B pattern. Inputs it
// accepts may still need normalization (label aliases, separator variants,
// implicit zeroes).
var versionRegex = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?P<pre>[-_.]?(?P<pre_l>a|b|c|rc|alpha|beta|pre|preview)[-_.]?(?P<pre_n>[0-9]+)?)?` +
	`(?P<post>(?:-(?P<post_n1>[0-9]+))|(?:[-_.]?(?P<post_l>post|rev|r)[-_.]?(?P<post_n2>[0-9]+)?))?` +
	`(?P<dev>[-_.]?dev[-_.]?(?P<dev_n>[0-9]+)?)?` +
	`)` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?` +
	`\s*$`)

// PreRelease is the pre-release segment of a version ("a1", "b2", "rc3").
type PreRelease struct {
	Label string // "a", "b" or "rc" after normalization
	N     int
}

// Version is a parsed PEP 440 version identifier.
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    *int
	Dev     *int
	Local   string // normalized local segment, "" if absent
}

// ParseVersion parses str as a PEP 440 version, normalizing label aliases
// and separators per PEP 440.
func ParseVersion(str string) (*Version, error) {
	match := versionRegex.FindStringSubmatch(str)
	if match == nil {
		return nil, fmt.Errorf("invalid version: %q", str)
	}
	group := func(name string) string {
		return match[versionRegex.SubexpIndex(name)]
	}

	var ver Version

	if epoch := group("epoch"); epoch != "" {
		n, err := strconv.Atoi(epoch)
		if err != nil {
			return nil, fmt.Errorf("invalid version: %q: epoch %q", str, epoch)
		}
		ver.Epoch = n
	}

	for _, part := range strings.Split(group("release"), ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid version: %q: release segment %q", str, part)
		}
		ver.Release = append(ver.Release, n)
	}

	// The counters only ever match digit runs, so Atoi can fail solely on
	// numbers too large for int.
	counter := func(raw string) (int, error) {
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid version: %q: number %q out of range", str, raw)
		}
		return n, nil
	}

	if label := group("pre_l"); label != "" {
		n, err := counter(group("pre_n"))
		if err != nil {
			return nil, err
		}
		ver.Pre = &PreRelease{Label: normalizePreLabel(label), N: n}
	}

	if group("post") != "" {
		raw := group("post_n1")
		if raw == "" {
			raw = group("post_n2")
		}
		n, err := counter(raw)
		if err != nil {
			return nil, err
		}
		ver.Post = &n
	}

	if group("dev") != "" {
		n, err := counter(group("dev_n"))
		if err != nil {
			return nil, err
		}
		ver.Dev = &n
	}

	if local := group("local"); local != "" {
		ver.Local = strings.ToLower(regexp.MustCompile(`[-_.]`).ReplaceAllLiteralString(local, "."))
	}

	return &ver, nil
}

func normalizePreLabel(label string) string {
	switch strings.ToLower(label) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

// String renders the canonical form: [N!]N(.N)*[{a|b|rc}N][.postN][.devN][+local].
func (v Version) String() string {
	var sb strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&sb, "%d!", v.Epoch)
	}
	for i, n := range v.Release {
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%d", n)
	}
	if v.Pre != nil {
		fmt.Fprintf(&sb, "%s%d", v.Pre.Label, v.Pre.N)
	}
	if v.Post != nil {
		fmt.Fprintf(&sb, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&sb, ".dev%d", *v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&sb, "+%s", v.Local)
	}
	return sb.String()
}

// IsLocal reports whether the version carries a local segment ("1.0+local").
// Uploads reject local versions; they are reserved for downstream rebuilds.
func (v Version) IsLocal() bool {
	return v.Local != ""
}

// IsPrerelease reports whether the version is a pre-release or dev release.
func (v Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// Segment ranks for the pre-release position: a dev-only release sorts below
// any pre-release, which sorts below the final release.
const (
	segMin = 0
	segVal = 1
	segMax = 2
)

// Compare returns -1, 0 or 1 ordering v against o per PEP 440.
func (v Version) Compare(o Version) int {
	if d := v.Epoch - o.Epoch; d != 0 {
		return sign(d)
	}
	if d := compareRelease(v.Release, o.Release); d != 0 {
		return d
	}
	if d := comparePre(v, o); d != 0 {
		return d
	}
	if d := comparePost(v.Post, o.Post); d != 0 {
		return d
	}
	if d := compareDev(v.Dev, o.Dev); d != 0 {
		return d
	}
	return compareLocal(v.Local, o.Local)
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// compareRelease compares release segments, padding the shorter with zeroes
// so that 1.0 == 1.0.0.
func compareRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return sign(av - bv)
		}
	}
	return 0
}

func preRank(v Version) (seg, label, n int) {
	if v.Pre != nil {
		labels := map[string]int{"a": 0, "b": 1, "rc": 2}
		return segVal, labels[v.Pre.Label], v.Pre.N
	}
	if v.Post == nil && v.Dev != nil {
		// 1.0.dev1 sorts before 1.0a1
		return segMin, 0, 0
	}
	return segMax, 0, 0
}

func comparePre(a, b Version) int {
	aSeg, aLabel, aN := preRank(a)
	bSeg, bLabel, bN := preRank(b)
	if aSeg != bSeg {
		return sign(aSeg - bSeg)
	}
	if aLabel != bLabel {
		return sign(aLabel - bLabel)
	}
	return sign(aN - bN)
}

func comparePost(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return sign(*a - *b)
	}
}

func compareDev(a, b *int) int {
	// A dev release sorts before the corresponding non-dev release.
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return sign(*a - *b)
	}
}

func compareLocal(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")
	n := len(aParts)
	if len(bParts) < n {
		n = len(bParts)
	}
	for i := 0; i < n; i++ {
		aNum, aErr := strconv.Atoi(aParts[i])
		bNum, bErr := strconv.Atoi(bParts[i])
		switch {
		case aErr == nil && bErr == nil:
			if aNum != bNum {
				return sign(aNum - bNum)
			}
		case aErr == nil:
			// numeric segments compare greater than lexical ones
			return 1
		case bErr == nil:
			return -1
		default:
			if aParts[i] != bParts[i] {
				if aParts[i] < bParts[i] {
					return -1
				}
				return 1
			}
		}
	}
	return sign(len(aParts) - len(bParts))
}
