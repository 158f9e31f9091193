package packaging

import (
	"fmt"
	"regexp"
	"strings"
)

// filenameCharsRegex is the set of characters permitted anywhere in a
// distribution filename.
var filenameCharsRegex = regexp.MustCompile(`^[A-Za-z0-9_.+!-]+$`)

// wheelFilenameRegex is the binary distribution filename format:
// {distribution}-{version}(-{build})?-{python}-{abi}-{platform}.whl
var wheelFilenameRegex = regexp.MustCompile(`^(?P<distribution>[A-Za-z0-9_.+!]+)` +
	`-(?P<version>[A-Za-z0-9_.+!]+)` +
	`(?:-(?P<build>[0-9][A-Za-z0-9_.]*))?` +
	`-(?P<python>[A-Za-z0-9_.]+)` +
	`-(?P<abi>[A-Za-z0-9_.]+)` +
	`-(?P<platform>[A-Za-z0-9_.]+)` +
	`\.whl$`)

// FileType is the distribution type declared on upload.
type FileType string

const (
	FileTypeSdist FileType = "sdist"
	FileTypeWheel FileType = "bdist_wheel"
)

// ValidFileType reports whether t is an accepted distribution type.
func ValidFileType(t string) bool {
	return t == string(FileTypeSdist) || t == string(FileTypeWheel)
}

// WheelInfo is the parsed form of a wheel filename.
type WheelInfo struct {
	Distribution string
	Version      Version
	Build        string
	PythonTag    string
	ABITag       string
	PlatformTag  string
}

// CompatibilityTag renders the {python}-{abi}-{platform} triple.
func (w WheelInfo) CompatibilityTag() string {
	return w.PythonTag + "-" + w.ABITag + "-" + w.PlatformTag
}

// ParseWheelFilename parses filename as a wheel filename.
func ParseWheelFilename(filename string) (*WheelInfo, error) {
	match := wheelFilenameRegex.FindStringSubmatch(filename)
	if match == nil {
		return nil, fmt.Errorf("invalid wheel filename: %q", filename)
	}
	group := func(name string) string {
		return match[wheelFilenameRegex.SubexpIndex(name)]
	}

	ver, err := ParseVersion(group("version"))
	if err != nil {
		return nil, fmt.Errorf("invalid wheel filename: %q: %w", filename, err)
	}

	return &WheelInfo{
		Distribution: group("distribution"),
		Version:      *ver,
		Build:        group("build"),
		PythonTag:    group("python"),
		ABITag:       group("abi"),
		PlatformTag:  group("platform"),
	}, nil
}

// SdistInfo is the parsed form of an sdist filename.
type SdistInfo struct {
	Distribution string
	Version      Version
}

// ParseSdistFilename parses filename as {name}-{version}.tar.gz (or .zip).
func ParseSdistFilename(filename string) (*SdistInfo, error) {
	base := filename
	switch {
	case strings.HasSuffix(base, ".tar.gz"):
		base = strings.TrimSuffix(base, ".tar.gz")
	case strings.HasSuffix(base, ".zip"):
		base = strings.TrimSuffix(base, ".zip")
	default:
		return nil, fmt.Errorf("invalid sdist filename: %q: unsupported extension", filename)
	}

	idx := strings.LastIndex(base, "-")
	if idx <= 0 || idx == len(base)-1 {
		return nil, fmt.Errorf("invalid sdist filename: %q", filename)
	}

	ver, err := ParseVersion(base[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid sdist filename: %q: %w", filename, err)
	}

	return &SdistInfo{
		Distribution: base[:idx],
		Version:      *ver,
	}, nil
}

// CheckFilename validates filename against the declared filetype, project
// name and version: the embedded distribution must normalize to the project
// and the embedded version must equal the declared one.
func CheckFilename(filename string, filetype FileType, projectName string, version Version) error {
	if !filenameCharsRegex.MatchString(filename) {
		return fmt.Errorf("invalid filename: %q: contains characters outside [A-Za-z0-9._+!-]", filename)
	}

	var dist string
	var fileVer Version
	switch filetype {
	case FileTypeWheel:
		if !strings.HasSuffix(filename, ".whl") {
			return fmt.Errorf("invalid filename: %q: wheel uploads must end in .whl", filename)
		}
		info, err := ParseWheelFilename(filename)
		if err != nil {
			return err
		}
		dist, fileVer = info.Distribution, info.Version
	case FileTypeSdist:
		info, err := ParseSdistFilename(filename)
		if err != nil {
			return err
		}
		dist, fileVer = info.Distribution, info.Version
	default:
		return fmt.Errorf("invalid filetype: %q", filetype)
	}

	if NormalizeName(dist) != NormalizeName(projectName) {
		return fmt.Errorf("invalid filename: %q: does not start with the project name %q", filename, projectName)
	}
	if fileVer.Compare(version) != 0 || fileVer.Local != version.Local {
		return fmt.Errorf("invalid filename: %q: version does not match %q", filename, version.String())
	}
	return nil
}
