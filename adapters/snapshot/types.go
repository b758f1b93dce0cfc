package snapshot

import (
	"fmt"
	"strings"
)

// Format identifies the on-disk encoding of a snapshot
type Format string

const (
	FormatAuto   Format = "auto"
	FormatXLSX   Format = "xlsx"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// ParseFormat accepts a format name case-insensitively; empty means auto
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatXLSX, FormatCSV, FormatJSON, FormatSQLite:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format %q", s)
	}
}

// RawRow is one data row as column name to trimmed cell text
type RawRow map[string]string

// RawData is a snapshot before typing: header order plus string rows
type RawData struct {
	Headers []string
	Rows    []RawRow
}

// HasColumn reports whether the header contains name
func (d *RawData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}
