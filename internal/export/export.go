// Package export serializes template rows.
package export

import (
	"fmt"
	"strings"
)

// BOM is written ahead of the TSV so spreadsheet tools detect UTF-8.
const BOM = "\uFEFF"

// BaseName is the file name of a downloaded template, without extension.
const BaseName = "TAB_DLV_IMPORT_OUTPUT"

// Format is an output format.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat returns the format named by s. Empty selects TSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTSV:
		return FormatTSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// FileName returns the download file name for f.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/tab-separated-values"
}
