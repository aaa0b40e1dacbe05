package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies a document file format understood by an extractor.
type Format string

// Supported formats.
const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
	FormatDOCX Format = "docx"
)

// FormatFromName infers the format from a file name's extension.
// The result is not checked against the supported set; see Format.IsSupported.
func FormatFromName(name string) Format {
	ext := strings.ToLower(filepath.Ext(name))
	return Format(strings.TrimPrefix(ext, "."))
}

// IsSupported returns true if the format has a built-in extractor.
func (f Format) IsSupported() bool {
	switch f {
	case FormatPDF, FormatText, FormatDOCX:
		return true
	default:
		return false
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	if f == "" {
		return ""
	}
	return "." + string(f)
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// AllFormats returns the supported formats.
func AllFormats() []Format {
	return []Format{FormatPDF, FormatText, FormatDOCX}
}
