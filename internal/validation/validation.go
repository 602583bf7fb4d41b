// Package validation checks paths and file contents handled by the
// collectors and targets: output paths may not escape their root, inputs
// are bounded in size and must be text.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Limits on collected files and generated paths.
const (
	// MaxFileSize is the maximum size of a collected file (256 MB).
	MaxFileSize = 256 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
)

// SanitizePath checks that userPath stays inside baseDir and returns it
// cleaned and relative.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// ValidatePath rejects empty, overlong and control character paths.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateFilename rejects names that are empty, reserved, too long, or
// contain separators or control characters.
func ValidateFilename(filename string) error {
	switch {
	case filename == "":
		return ErrInvalidFilename
	case len(filename) > MaxFilenameLength:
		return ErrFilenameTooLong
	case filename == "." || filename == "..":
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	case strings.ContainsAny(filename, "/\\"):
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	case strings.HasPrefix(filename, "-"):
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	return nil
}

// SanitizeFilename turns an utterance or document id into a usable file
// name by replacing separators and dropping control characters.
func SanitizeFilename(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	filename = strings.NewReplacer("/", "_", "\\", "_").Replace(filename)

	var cleaned strings.Builder
	for _, r := range filename {
		if !unicode.IsControl(r) {
			cleaned.WriteRune(r)
		}
	}
	filename = strings.TrimLeft(cleaned.String(), "-")

	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	return filename, nil
}

// FileType is the kind of input a file holds.
type FileType string

const (
	FileTypeTarXZ   FileType = "tar.xz"
	FileTypeTarGZ   FileType = "tar.gz"
	FileTypeTar     FileType = "tar"
	FileTypeGzip    FileType = "gzip"
	FileTypeXZ      FileType = "xz"
	FileTypeXML     FileType = "xml"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

// IsArchive reports whether t is a tar archive, compressed or not.
func (t FileType) IsArchive() bool {
	return t == FileTypeTar || t == FileTypeTarGZ || t == FileTypeTarXZ
}

var magicBytes = []struct {
	fileType FileType
	magic    []byte
	offset   int
}{
	{FileTypeTar, []byte("ustar"), 257},
	{FileTypeGzip, []byte{0x1f, 0x8b}, 0},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, 0},
}

// ValidateFileType checks that the content of reader matches the type its
// filename suggests and returns that type.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	detected := detectFileTypeFromMagic(buf)
	expected := detectFileTypeFromExtension(filename)

	switch {
	case expected == FileTypeTarXZ && detected == FileTypeXZ:
		return FileTypeTarXZ, nil
	case expected == FileTypeTarGZ && detected == FileTypeGzip:
		return FileTypeTarGZ, nil
	case detected == expected:
		return detected, nil
	case detected == FileTypeUnknown && (expected == FileTypeXML || expected == FileTypeText):
		if IsLikelyText(buf) {
			return expected, nil
		}
		return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is binary", expected)
	case detected == FileTypeUnknown && expected.IsArchive():
		return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is not", expected)
	case detected != FileTypeUnknown && expected != FileTypeUnknown:
		return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is %s", expected, detected)
	case detected == FileTypeUnknown:
		return expected, nil
	}
	return detected, nil
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if sig.offset+len(sig.magic) <= len(buf) &&
			bytes.Equal(buf[sig.offset:sig.offset+len(sig.magic)], sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

func detectFileTypeFromExtension(filename string) FileType {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz") {
		return FileTypeTarXZ
	}
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return FileTypeTarGZ
	}

	switch filepath.Ext(lower) {
	case ".tar":
		return FileTypeTar
	case ".xz":
		return FileTypeXZ
	case ".gz":
		return FileTypeGzip
	case ".xml", ".folia", ".tei":
		return FileTypeXML
	case ".txt", ".cha", ".csv", ".tsv":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// IsLikelyText reports whether buf looks like text: no NUL bytes and almost
// no control characters. An empty buffer is text.
func IsLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
	}
	if printable == 0 {
		// only multi-byte characters
		return utf8.Valid(buf)
	}
	return float64(printable)/float64(printable+control) > 0.95
}

// DecodeText converts file content to a string. A UTF-8 byte order mark is
// dropped; content that is not valid UTF-8 is read as Latin-1.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}
