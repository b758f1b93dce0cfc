package snapshot

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"loanlens/domain/core"
	"loanlens/domain/loan"
	"loanlens/internal"
	"loanlens/internal/errors"
)

// DataReader loads the cleaned loan snapshot from a local file. It handles
// xlsx, csv, json and sqlite encodings.
type DataReader struct {
	filePath string
	format   Format
	table    string
	logger   *internal.Logger
	now      func() time.Time
}

// NewDataReader creates a reader for the configured snapshot file
func NewDataReader(cfg Config, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	format := cfg.Format
	if format == "" {
		format = FormatAuto
	}
	table := cfg.Table
	if table == "" {
		table = DefaultConfig().Table
	}
	return &DataReader{
		filePath: cfg.FilePath,
		format:   format,
		table:    table,
		logger:   logger,
		now:      time.Now,
	}
}

// Describe names the snapshot file
func (r *DataReader) Describe() string {
	return r.filePath
}

// Path returns the snapshot file path
func (r *DataReader) Path() string {
	return r.filePath
}

// Load reads, validates and types the snapshot. The dataset version is the
// sha256 of the file bytes, so an unchanged file always yields the same version.
func (r *DataReader) Load(ctx context.Context) (*loan.Dataset, error) {
	startTime := time.Now()

	content, err := r.readFile()
	if err != nil {
		return nil, err
	}

	raw, format, err := r.parse(ctx, content)
	if err != nil {
		return nil, err
	}

	records, err := DecodeRows(r.filePath, raw)
	if err != nil {
		return nil, err
	}

	ds := loan.NewDataset(records, core.NewHash(content), r.filePath, r.now().UTC())
	r.logger.Info("[DataReader] loaded %s snapshot %s (%d columns, %d records) in %.2fms",
		format, r.filePath, len(raw.Headers), ds.Len(), float64(time.Since(startTime).Nanoseconds())/1e6)
	return ds, nil
}

func (r *DataReader) readFile() ([]byte, error) {
	info, err := os.Stat(r.filePath)
	if os.IsNotExist(err) {
		return nil, errors.DatasetNotFound(r.filePath)
	}
	if err != nil {
		return nil, errors.DatasetUnreadable(r.filePath, err)
	}
	if info.IsDir() {
		return nil, errors.DatasetUnreadable(r.filePath, fmt.Errorf("%s is a directory", r.filePath))
	}

	content, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.DatasetUnreadable(r.filePath, err)
	}
	return content, nil
}

func (r *DataReader) parse(ctx context.Context, content []byte) (*RawData, Format, error) {
	format := r.format
	if format == FormatAuto {
		format = DetectFormat(r.filePath, content)
		r.logger.Debug("[DataReader] detected %s format for %s", format, r.filePath)
	}

	var (
		raw *RawData
		err error
	)
	switch format {
	case FormatXLSX:
		raw, err = readExcel(content)
	case FormatCSV:
		raw, err = readCSV(content, csvDelimiter(r.filePath))
	case FormatJSON:
		raw, err = readJSON(content)
	case FormatSQLite:
		raw, err = readSQLite(ctx, r.filePath, r.table)
	default:
		err = fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		if errors.IsAppError(err) {
			return nil, format, err
		}
		return nil, format, errors.DatasetUnreadable(r.filePath, err)
	}
	return raw, format, nil
}

// readExcel reads the first worksheet. Cells are read raw so dates arrive as
// serial numbers instead of locale-formatted text.
func readExcel(content []byte) (*RawData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return processRows(rows)
}

func readCSV(content []byte, delimiter rune) (*RawData, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return processRows(rows)
}

func csvDelimiter(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// processRows converts string rows with a header row into RawData. A file
// with a header and no data rows is valid and yields zero rows.
func processRows(rows [][]string) (*RawData, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("snapshot has no header row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowData := make(RawRow, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &RawData{Headers: headers, Rows: dataRows}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
