package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"loanlens/adapters/sqlstore"
	"loanlens/internal/charts"
	"loanlens/internal/config"
	"loanlens/internal/testkit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "loanlens-cli",
		Short:         "Loan dashboard tooling: summaries, exports, chart renders and dataset loading",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSummaryCmd(),
		newExportCmd(),
		newRenderCmd(),
		newImportCmd(),
		newSeedCmd(),
	)
	return rootCmd
}

// snapshotFlags are shared by every command that reads a cleaned snapshot
type snapshotFlags struct {
	path   string
	format string
	table  string
}

func (f *snapshotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "data", config.DefaultDataFile, "Path to the cleaned loan snapshot")
	cmd.Flags().StringVar(&f.format, "format", "auto", "Snapshot format: auto, xlsx, csv, json or sqlite")
	cmd.Flags().StringVar(&f.table, "table", "loan_clean", "Table name for sqlite snapshots")
}

func newSummaryCmd() *cobra.Command {
	var data snapshotFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the headline metrics and category breakdowns",
		Long: `Print the four headline metrics followed by the weekday, condition and grade tables.

Example: loanlens-cli summary --data data_input/loan_clean.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.Context(), cmd.OutOrStdout(), data)
		},
	}
	data.register(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	var data snapshotFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard figures to an Excel workbook",
		Long: `Write the overview figures and the distribution of both loan conditions to an xlsx
workbook with one sheet per breakdown.

Example: loanlens-cli export --data data_input/loan_clean.csv --out report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), data, out)
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&out, "out", "report.xlsx", "Output workbook path")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var data snapshotFlags
	var chartName, condition, out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one dashboard chart to a PNG file",
		Long: fmt.Sprintf(`Render one dashboard chart to a PNG file.

Charts: %s. The histogram honours --condition.

Example: loanlens-cli render --chart histogram --condition "Bad Loan" --out bad.png`, strings.Join(charts.PNGNames, ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = chartName + ".png"
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), data, chartName, condition, out)
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&chartName, "chart", charts.NameLoansIssued, "Chart name")
	cmd.Flags().StringVar(&condition, "condition", "", "Loan condition for the histogram (default Good Loan)")
	cmd.Flags().StringVar(&out, "out", "", "Output PNG path (default <chart>.png)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var data snapshotFlags
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a snapshot into the SQL table served with DATABASE_URL",
		Long: `Create the loan table if needed and replace its rows with the snapshot's records.

Example: loanlens-cli import --data data_input/loan_clean.csv --driver sqlite3 --dsn loans.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), data, driver, dsn)
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&driver, "driver", sqlstore.DriverSQLite, "Database driver: sqlite3 or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}

func newSeedCmd() *cobra.Command {
	defaults := testkit.DefaultLoanConfig()
	var out string
	var records int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic cleaned loan snapshot for local development",
		Long: `Write a synthetic cleaned loan snapshot. The encoding follows the extension of
--out: .xlsx writes a workbook, anything else CSV.

Example: loanlens-cli seed --out data_input/loan_clean.csv --records 5000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.OutOrStdout(), out, records, seed)
		},
	}
	cmd.Flags().StringVar(&out, "out", config.DefaultDataFile+".csv", "Output snapshot path")
	cmd.Flags().IntVar(&records, "records", defaults.RecordCount, "Number of loans to generate")
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Random seed for deterministic output")
	return cmd
}
