package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"loanlens/adapters/sqlstore"
	"loanlens/internal/errors"
	"loanlens/internal/export"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seeded(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loan_clean.csv")
	out, err := execute(t, "seed", "--out", path, "--records", "200", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 200 synthetic loans")
	return path
}

func TestSummary(t *testing.T) {
	out, err := execute(t, "summary", "--data", seeded(t))
	require.NoError(t, err)

	assert.Contains(t, out, "200 records")
	assert.Contains(t, out, "Total Loans")
	assert.Contains(t, out, "Average Interest Rate")
	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "Good Loan")
	assert.Contains(t, out, "Grade")
}

func TestSummaryMissingSnapshot(t *testing.T) {
	_, err := execute(t, "summary", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetNotFound, errors.GetCode(err))
}

func TestExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.xlsx")
	_, err := execute(t, "export", "--data", seeded(t), "--out", out)
	require.NoError(t, err)

	wb, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, export.Sheets, wb.GetSheetList())
}

func TestRender(t *testing.T) {
	data := seeded(t)
	out := filepath.Join(t.TempDir(), "bad.png")
	_, err := execute(t, "render", "--data", data, "--chart", "histogram", "--condition", "bad loan", "--out", out)
	require.NoError(t, err)

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()
	_, err = png.Decode(file)
	assert.NoError(t, err)

	_, err = execute(t, "render", "--data", data, "--chart", "radar")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "render", "--data", data, "--chart", "histogram", "--condition", "meh")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestImportIntoSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "loans.db")

	out, err := execute(t, "import", "--data", seeded(t), "--driver", sqlstore.DriverSQLite, "--dsn", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 200 loans")

	repo, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dbPath, "loan_clean")
	require.NoError(t, err)
	defer repo.Close()
	ds, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, ds.Len())
}

func TestImportRequiresDSN(t *testing.T) {
	_, err := execute(t, "import", "--data", seeded(t))
	assert.Error(t, err)
}

func TestSeedRejectsNegativeCount(t *testing.T) {
	_, err := execute(t, "seed", "--out", filepath.Join(t.TempDir(), "x.csv"), "--records", "-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
