package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/debtfolio/internal/config"
	"github.com/aristath/debtfolio/internal/database"
	"github.com/aristath/debtfolio/internal/modules/debt"
	"github.com/aristath/debtfolio/internal/modules/rates"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/aristath/debtfolio/pkg/logger"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	dbPath    string
	filePath  string
	alias     string
	year      int
	month     int
	clients   string
	products  string
	inflation string
	logLevel  string

	cfg *config.Config
	log zerolog.Logger
	now func() time.Time
}

// NewRootCmd creates the debtfolio command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "debtfolio",
		Short: "Debt portfolio carry reports",
		Long: `debtfolio values a month of debt positions: it normalizes yields, resolves
ratings, computes the annualized carry of every instrument and aggregates the
market-value weighted portfolio figures.

Positions are read from the warehouse database (--db) or a YAML snapshot file
(--file) written by the export command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := opts.logLevel
			if level == "" {
				level = cfg.LogLevel
			}
			opts.log = logger.New(logger.Config{
				Level:  level,
				Pretty: true,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", "", "Warehouse database path (defaults to WAREHOUSE_DB_PATH)")
	flags.StringVar(&opts.filePath, "file", "", "Read positions from a YAML snapshot file instead of the database")
	flags.StringVar(&opts.alias, "alias", "", "Portfolio alias (defaults to DEFAULT_ALIAS)")
	flags.IntVar(&opts.year, "year", 0, "Report year (defaults to the current year)")
	flags.IntVar(&opts.month, "month", 0, "Report month 1-12 (defaults to the current month)")
	flags.StringVar(&opts.clients, "clients", "", "Comma-separated client ids")
	flags.StringVar(&opts.products, "products", "", "Comma-separated product ids")
	flags.StringVar(&opts.inflation, "inflation", "", "Annual inflation for real-rate carry, e.g. 0.035 or 3.5%")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newReportCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newVersionCmd(version))

	return rootCmd
}

// newReportCmd creates the report command
func newReportCmd(opts *globalOptions) *cobra.Command {
	var (
		filter string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the carry report for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, q, reportOpts, closeSource, err := opts.prepare()
			if err != nil {
				return err
			}
			defer closeSource()

			report, err := service.Report(cmd.Context(), q, reportOpts)
			if errors.Is(err, debt.ErrNoData) {
				fmt.Fprintf(cmd.ErrOrStderr(), "No debt positions for %s %04d-%02d\n", q.Alias, q.Year, q.Month)
				return err
			}
			if err != nil {
				return err
			}

			rows := report.Filter(filter)
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, map[string]interface{}{
					"report":         report,
					"rows":           rows,
					"risk_by_rating": report.RiskByRating(),
				})
			case "table":
				if err := RenderReport(out, report, rows); err != nil {
					return err
				}
				if err := RenderCompositions(out, "Por tipo de papel", report.CompositionByPaperType()); err != nil {
					return err
				}
				return RenderCompositions(out, "Riesgo por calificación", report.RiskByRating())
			default:
				return fmt.Errorf("unknown format %q (use table or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&filter, "query", "q", "", "Only show rows whose instrument, paper type or rating contains this text")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

// newHistoryCmd creates the history command
func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the monthly portfolio aggregates ending at the selected month",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, q, reportOpts, closeSource, err := opts.prepare()
			if err != nil {
				return err
			}
			defer closeSource()

			if months == 0 {
				months = opts.cfg.HistoryMonths
			}
			points, err := service.History(cmd.Context(), q, months, reportOpts)
			if err != nil {
				return err
			}
			return RenderHistory(cmd.OutOrStdout(), points)
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "Number of trailing months (defaults to HISTORY_MONTHS)")

	return cmd
}

// newExportCmd creates the export command
func newExportCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the month's positions as a YAML snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, closeSource, err := opts.openSource()
			if err != nil {
				return err
			}
			defer closeSource()

			q, err := opts.query()
			if err != nil {
				return err
			}

			snap, err := source.Snapshot(cmd.Context(), q)
			if err != nil {
				return err
			}
			if snap.IsEmpty() {
				return fmt.Errorf("%w: %s %04d-%02d", debt.ErrNoData, q.Alias, q.Year, q.Month)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := snapshots.WriteFile(w, snap); err != nil {
				return err
			}
			opts.log.Info().
				Str("alias", q.Alias).
				Int("positions", len(snap.Positions)).
				Str("output", output).
				Msg("Exported snapshot")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file (- for stdout)")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "debtfolio %s\n", version)
		},
	}
}

// prepare opens the position source and builds the report service, query and
// options from the flags.
func (o *globalOptions) prepare() (*debt.Service, snapshots.Query, debt.Options, func(), error) {
	q, err := o.query()
	if err != nil {
		return nil, q, debt.Options{}, nil, err
	}

	reportOpts := debt.Options{}
	if o.inflation != "" {
		reportOpts.InflationAnnual = rates.ParseRate(o.inflation)
		if reportOpts.InflationAnnual == nil {
			return nil, q, reportOpts, nil, fmt.Errorf("%w: inflation %q", snapshots.ErrInvalidParam, o.inflation)
		}
	}

	source, closeSource, err := o.openSource()
	if err != nil {
		return nil, q, reportOpts, nil, err
	}

	return debt.NewService(source, o.cfg.InflationAnnual, o.log), q, reportOpts, closeSource, nil
}

// query builds the month query from the flags, defaulting the alias and
// period the same way the HTTP API does.
func (o *globalOptions) query() (snapshots.Query, error) {
	values := url.Values{}
	values.Set("alias", o.alias)
	if o.year != 0 {
		values.Set("year", strconv.Itoa(o.year))
	}
	if o.month != 0 {
		values.Set("month", strconv.Itoa(o.month))
	}
	values.Set("clients", o.clients)
	values.Set("products", o.products)
	return snapshots.ParseQueryParams(values, o.cfg.DefaultAlias, o.now())
}

// openSource returns the YAML file source when --file is set, otherwise the
// warehouse repository.
func (o *globalOptions) openSource() (snapshots.Source, func(), error) {
	if o.filePath != "" {
		src, err := snapshots.LoadFile(o.filePath)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	path := o.dbPath
	if path == "" {
		path = o.cfg.WarehouseDBPath
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("warehouse database not found at %s: %w", path, err)
	}

	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileWarehouse,
		Name:    database.NameWarehouse,
	})
	if err != nil {
		return nil, nil, err
	}

	return snapshots.NewRepository(db.Conn(), o.log), func() { _ = db.Close() }, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command with a background context.
func Execute(version string) error {
	return NewRootCmd(version).ExecuteContext(context.Background())
}
