package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/config"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/logger"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/tabs/roles"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/tabs/search"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/tabs/top"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/tabs/trend"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/version"
)

// flags override values loaded from the environment.
type flags struct {
	drug        string
	logFile     string
	logLevel    string
	metricsAddr string
	days        int
}

func (f *flags) apply(cfg *config.Config) error {
	if f.drug != "" {
		cfg.DefaultDrug = f.drug
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.metricsAddr != "" {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.days != 0 {
		cfg.TrendDays = f.days
	}
	return cfg.Validate()
}

// setup loads configuration and opens the log file.
func (f *flags) setup() (*config.Config, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := f.apply(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid flags: %w", err)
	}

	closer, err := logger.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "dsd",
		Short: "Drug safety dashboard for public adverse-event reports",
		Long: `dsd browses recent adverse-event reports from the openFDA drug event feed.

It ranks the most reported drugs, searches reports for one drug, breaks
them down by reported role and charts daily report counts.

Keyboard Shortcuts:
  1-5             Switch tabs (Top Drugs, Search, Roles, Trend, Info)
  Tab/Shift+Tab   Navigate between tabs
  /               Focus the search box
  [ ]             Cycle through watched drugs
  a / x           Watch / unwatch the current drug
  t               Toggle the trend window
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  FDA_BASE_URL     Event feed endpoint
  FDA_API_KEY      Optional feed API key
  DEFAULT_DRUG     Drug shown before any search
  DATABASE_PATH    SQLite fetch log path (default: in memory)
  WATCHLIST_PATH   Watchlist YAML file
  METRICS_ADDR     Prometheus listen address (default: disabled)
  LOG_FILE         Log file path (default: discard)
  TREND_DAYS       Trend window in days (default: 180)`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(f)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.IntVar(&f.days, "days", 0, "trend window in days")
	cmd.Flags().StringVarP(&f.drug, "drug", "d", "", "drug to show on start")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	cmd.AddCommand(newReportCmd(f), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// runTUI contains the interactive application logic.
func runTUI(f *flags) error {
	cfg, logCloser, err := f.setup()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Tab order must match the app.Tab* identifiers.
	state, cmds := model.GetState(), model.GetCommands()
	model.SetTabs([]app.Tab{
		top.New(state, cmds),
		search.New(state, cmds),
		roles.New(state, cmds),
		trend.New(state, cmds),
		info.New(state, cmds),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
