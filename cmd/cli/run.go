package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"loanlens/adapters/snapshot"
	"loanlens/adapters/sqlstore"
	"loanlens/domain/loan"
	"loanlens/internal/aggregate"
	"loanlens/internal/charts"
	"loanlens/internal/dashboard"
	"loanlens/internal/distribution"
	"loanlens/internal/errors"
	"loanlens/internal/export"
	"loanlens/internal/format"
	"loanlens/internal/store"
	"loanlens/internal/testkit"
)

// openService loads the snapshot once and returns a dashboard service over it
func openService(ctx context.Context, data snapshotFlags) (*dashboard.Service, *store.Store, error) {
	reader := snapshot.NewDataReader(snapshot.Config{
		FilePath: data.path,
		Format:   snapshot.Format(data.format),
		Table:    data.table,
	}, nil)

	st := store.New(reader, nil)
	if err := st.Load(ctx); err != nil {
		return nil, nil, err
	}
	svc := dashboard.NewService(st, dashboard.NewMemoryCache(16), dashboard.Options{
		Bins: distribution.DefaultBins,
	}, nil)
	return svc, st, nil
}

func runSummary(ctx context.Context, w io.Writer, data snapshotFlags) error {
	svc, st, err := openService(ctx, data)
	if err != nil {
		return err
	}
	ds, err := st.Current()
	if err != nil {
		return err
	}
	view, err := svc.Overview(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s records, version %s)\n\n", ds.Source(), format.Count(ds.Len()), ds.Version().Short())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range format.Metrics(view.Summary) {
		fmt.Fprintf(tw, "%s\t%s\n", m.Label, m.Value)
	}
	writeCategoryTable(tw, "Weekday", view.Weekdays)
	writeCategoryTable(tw, "Condition", view.Conditions)
	writeCategoryTable(tw, "Grade", view.Grades)
	return tw.Flush()
}

func writeCategoryTable(tw *tabwriter.Writer, label string, counts []aggregate.CategoryCount) {
	fmt.Fprintf(tw, "\n%s\tLoans\tShare\n", label)
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Category, format.Count(c.Count), format.Share(c.Share))
	}
}

func runExport(ctx context.Context, w io.Writer, data snapshotFlags, out string) error {
	svc, _, err := openService(ctx, data)
	if err != nil {
		return err
	}
	overview, err := svc.Overview(ctx)
	if err != nil {
		return err
	}

	report := export.Report{Overview: overview}
	for _, condition := range loan.Conditions {
		view, err := svc.Distribution(ctx, condition)
		if err != nil {
			return err
		}
		report.Distributions = append(report.Distributions, *view)
	}

	file, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", out)
	}
	if err := export.WriteReport(file, report); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", out)
	}

	fmt.Fprintf(w, "wrote %s\n", out)
	return nil
}

func runRender(ctx context.Context, w io.Writer, data snapshotFlags, name, rawCondition, out string) error {
	if !charts.ValidPNGName(name) {
		return charts.UnknownChart(name)
	}
	condition, err := dashboard.ParseCondition(rawCondition)
	if err != nil {
		return err
	}

	svc, _, err := openService(ctx, data)
	if err != nil {
		return err
	}
	var chartData charts.Data
	if name == charts.NameHistogram {
		view, err := svc.Distribution(ctx, condition)
		if err != nil {
			return err
		}
		chartData.Histogram = view.Histogram
	} else {
		view, err := svc.Overview(ctx)
		if err != nil {
			return err
		}
		chartData = charts.Data{
			LoansIssued: view.LoansIssued,
			LoanAmount:  view.LoanAmount,
			Weekdays:    view.Weekdays,
			Conditions:  view.Conditions,
			Grades:      view.Grades,
		}
	}

	img, err := charts.NewPNG().Bytes(name, chartData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	fmt.Fprintf(w, "wrote %s\n", out)
	return nil
}

func runImport(ctx context.Context, w io.Writer, data snapshotFlags, driver, dsn string) error {
	_, st, err := openService(ctx, data)
	if err != nil {
		return err
	}
	ds, err := st.Current()
	if err != nil {
		return err
	}

	repo, err := sqlstore.Open(ctx, driver, dsn, data.table)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	n, err := repo.ReplaceAll(ctx, ds.Records())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "imported %s loans into %s\n", format.Count(n), repo.Describe())
	return nil
}

func runSeed(w io.Writer, out string, records int, seed int64) error {
	if records < 0 {
		return errors.InvalidInput("--records must not be negative")
	}
	cfg := testkit.DefaultLoanConfig()
	cfg.RecordCount = records
	cfg.Seed = seed

	if err := snapshot.WriteFile(out, testkit.NewLoanGenerator(cfg).Generate()); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	fmt.Fprintf(w, "wrote %s synthetic loans to %s\n", format.Count(records), out)
	return nil
}
