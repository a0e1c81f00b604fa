package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/analytics"
)

const dateLayout = "2006-01-02"

type reportFunc func(ctx context.Context, mgr *services.Manager, w io.Writer, drug string) error

func newReportCmd(f *flags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report without starting the dashboard",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	sub := []struct {
		use, short string
		run        reportFunc
		args       cobra.PositionalArgs
	}{
		{"top", "Rank the most reported drugs in the latest reports", reportTop, cobra.NoArgs},
		{"search DRUG", "Summarize reports mentioning a drug", reportSearch, cobra.ExactArgs(1)},
		{"roles DRUG", "Count the reported roles of a drug", reportRoles, cobra.ExactArgs(1)},
		{"trend DRUG", "Chart daily report counts for a drug", reportTrend, cobra.ExactArgs(1)},
	}
	for _, s := range sub {
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  s.args,
			RunE: func(c *cobra.Command, args []string) error {
				var drug string
				if len(args) > 0 {
					drug = args[0]
				}
				run := s.run
				if asJSON {
					run = jsonReport(run)
				}
				return runReport(c.Context(), f, c.OutOrStdout(), drug, run)
			},
		})
	}

	return cmd
}

func runReport(ctx context.Context, f *flags, w io.Writer, drug string, run reportFunc) error {
	cfg, logCloser, err := f.setup()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := services.NewManager(cfg,
		services.WithoutWatchlist(),
		services.WithNotifier(func(string, string) error { return nil }),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer mgr.Close()

	return run(ctx, mgr, w, drug)
}

// jsonReport swaps the text writer of run for JSON output. It relies on
// the report functions returning their data through jsonSink.
func jsonReport(run reportFunc) reportFunc {
	return func(ctx context.Context, mgr *services.Manager, w io.Writer, drug string) error {
		sink := &jsonSink{}
		if err := run(ctx, mgr, sink, drug); err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sink.value)
	}
}

// jsonSink collects the value a report would print.
type jsonSink struct {
	value any
}

func (*jsonSink) Write(p []byte) (int, error) { return len(p), nil }

// emit hands v to a jsonSink, or prints it with text otherwise.
func emit(w io.Writer, v any, text func(io.Writer) error) error {
	if sink, ok := w.(*jsonSink); ok {
		sink.value = v
		return nil
	}
	return text(w)
}

func reportTop(ctx context.Context, mgr *services.Manager, w io.Writer, _ string) error {
	top, err := mgr.TopDrugs(ctx)
	if err != nil {
		return err
	}
	return emit(w, top, func(w io.Writer) error { return writeTop(w, top) })
}

func reportSearch(ctx context.Context, mgr *services.Manager, w io.Writer, drug string) error {
	report, err := mgr.SearchDrug(ctx, drug, 0)
	if err != nil {
		return err
	}
	return emit(w, report, func(w io.Writer) error { return writeReport(w, report) })
}

func reportRoles(ctx context.Context, mgr *services.Manager, w io.Writer, drug string) error {
	roles, err := mgr.RoleDistribution(ctx, drug)
	if err != nil {
		return err
	}
	return emit(w, roles, func(w io.Writer) error { return writeRoles(w, roles) })
}

func reportTrend(ctx context.Context, mgr *services.Manager, w io.Writer, drug string) error {
	days := mgr.Config().TrendDays
	trend, err := mgr.Trend(ctx, drug, days)
	if err != nil {
		return err
	}
	return emit(w, trend, func(w io.Writer) error { return writeTrend(w, drug, days, trend) })
}

func writeTop(w io.Writer, top []models.DrugCount) error {
	if len(top) == 0 {
		_, err := fmt.Fprintln(w, "No reports in the recent feed")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDRUG\tREPORTS")
	for i, dc := range top {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, dc.Drug, dc.Count)
	}
	return tw.Flush()
}

func writeReport(w io.Writer, r *models.DrugReport) error {
	if r.Empty() {
		_, err := fmt.Fprintf(w, "No reports found for %s\n", r.Drug)
		return err
	}

	s := r.Summary
	if s.HasDateRange() {
		fmt.Fprintf(w, "%s: %d reports spanning %s to %s\n\n",
			r.Drug, s.Total, s.First.Format(dateLayout), s.Last.Format(dateLayout))
	} else {
		fmt.Fprintf(w, "%s: %d reports, none with a receipt date\n\n", r.Drug, s.Total)
	}

	if err := writeRoles(w, r.Roles); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nRecent reports (%d)\n", len(r.Recent))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tDRUG\tROLE")
	for _, f := range r.Recent {
		received := "-"
		if f.HasDate() {
			received = f.Date.Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", received, f.Drug, f.Role.Label())
	}
	return tw.Flush()
}

func writeRoles(w io.Writer, roles []models.RoleCount) error {
	total := 0
	for _, rc := range roles {
		total += rc.Count
	}
	if total == 0 {
		_, err := fmt.Fprintln(w, "No reports found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tCOUNT\tSHARE")
	for _, rc := range roles {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", rc.Role.Label(), rc.Count, float64(rc.Count)/float64(total)*100)
	}
	return tw.Flush()
}

func writeTrend(w io.Writer, drug string, days int, trend []models.DayCount) error {
	if len(trend) == 0 {
		_, err := fmt.Fprintf(w, "No dated reports for %s in the last %d days\n", drug, days)
		return err
	}

	filled := analytics.FillDays(trend)
	data := make([]float64, len(filled))
	for i, d := range filled {
		data[i] = float64(d.Count)
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}

	_, err := fmt.Fprintln(w, asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(min(len(data), 80)),
		asciigraph.Caption(fmt.Sprintf("%s: reports per day, %s to %s", drug,
			trend[0].Date.Format(dateLayout), trend[len(trend)-1].Date.Format(dateLayout))),
	))
	return err
}
