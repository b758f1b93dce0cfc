package snapshot

import (
	"bytes"
	"path/filepath"
	"strings"
)

var (
	zipMagic    = []byte("PK\x03\x04")
	sqliteMagic = []byte("SQLite format 3\x00")
)

// DetectFormat picks a format from the file extension and, for unknown or
// missing extensions, from the leading bytes of the content.
func DetectFormat(path string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".tsv":
		return FormatCSV
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite
	}
	return sniff(head)
}

func sniff(head []byte) Format {
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX
	}
	if bytes.HasPrefix(head, sqliteMagic) {
		return FormatSQLite
	}
	trimmed := bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatCSV
}
