package packaging

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"path"
	"strings"
)

// maxMetadataSize bounds the METADATA member read so a hostile archive can't
// expand into memory.
const maxMetadataSize = 10 << 20 // 10 MiB

// WheelMetadata is the METADATA file extracted from a wheel's .dist-info
// directory: the raw bytes as uploaded plus the parsed header block.
type WheelMetadata struct {
	Raw     []byte
	Headers textproto.MIMEHeader
}

// ExtractWheelMetadata opens the zip archive at r and returns the
// {distribution}-{version}.dist-info/METADATA member. The dist-info
// directory name is located by suffix rather than reconstructed from the
// filename, since tools disagree about name escaping inside the archive.
func ExtractWheelMetadata(r io.ReaderAt, size int64) (*WheelMetadata, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("invalid wheel: %w", err)
	}

	var member *zip.File
	for _, f := range archive.File {
		dir, base := path.Split(f.Name)
		if base != "METADATA" {
			continue
		}
		dir = strings.TrimSuffix(dir, "/")
		if !strings.HasSuffix(dir, ".dist-info") || strings.Contains(dir, "/") {
			continue
		}
		if member != nil {
			return nil, fmt.Errorf("invalid wheel: multiple .dist-info/METADATA members")
		}
		member = f
	}
	if member == nil {
		return nil, fmt.Errorf("invalid wheel: no .dist-info/METADATA member")
	}

	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("invalid wheel: %w", err)
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(io.LimitReader(rc, maxMetadataSize+1))
	if err != nil {
		return nil, fmt.Errorf("invalid wheel: reading METADATA: %w", err)
	}
	if len(raw) > maxMetadataSize {
		return nil, fmt.Errorf("invalid wheel: METADATA exceeds %d bytes", maxMetadataSize)
	}

	headers, err := parseMetadataHeaders(raw)
	if err != nil {
		return nil, err
	}

	return &WheelMetadata{Raw: raw, Headers: headers}, nil
}

// parseMetadataHeaders reads the RFC 822 header block of a METADATA file.
// The body (the long description in metadata >= 2.1) is ignored here.
func parseMetadataHeaders(raw []byte) (textproto.MIMEHeader, error) {
	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(string(raw) + "\n\n")))
	headers, err := reader.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid wheel: malformed METADATA: %w", err)
	}
	return headers, nil
}

// Check verifies that the METADATA Name and Version agree with the upload
// form.
func (m *WheelMetadata) Check(projectName string, version Version) error {
	name := m.Headers.Get("Name")
	if name == "" {
		return fmt.Errorf("invalid wheel: METADATA missing Name")
	}
	if NormalizeName(name) != NormalizeName(projectName) {
		return fmt.Errorf("invalid wheel: METADATA Name %q does not match project %q", name, projectName)
	}

	verStr := m.Headers.Get("Version")
	if verStr == "" {
		return fmt.Errorf("invalid wheel: METADATA missing Version")
	}
	ver, err := ParseVersion(verStr)
	if err != nil {
		return fmt.Errorf("invalid wheel: METADATA Version: %w", err)
	}
	if ver.Compare(version) != 0 || ver.Local != version.Local {
		return fmt.Errorf("invalid wheel: METADATA Version %q does not match %q", verStr, version.String())
	}
	return nil
}
