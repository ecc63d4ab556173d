package main

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"colprofile/adapters/excel"
	"colprofile/adapters/report"
	"colprofile/app"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/internal/config"
	"colprofile/internal/container"
)

// options are the flags shared by every command
type options struct {
	columns      []string
	sample       int
	significance string
	workers      int
	sheet        string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "colprofile",
		Short:         "Column profiling: type detection, statistics, correlation and bulk fill",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&opts.columns, "columns", nil, "Columns to profile (default: all)")
	flags.IntVar(&opts.sample, "sample", -1, "Type inference sample size; 0 uses the full column (default from STATS_INFERENCE_SAMPLE)")
	flags.StringVar(&opts.significance, "significance", "", "Correlation significance mode: legacy or students_t")
	flags.IntVar(&opts.workers, "workers", 0, "Columns profiled in parallel (default from STATS_MAX_WORKERS)")
	flags.StringVar(&opts.sheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(
		newProfileCmd(opts),
		newCorrelateCmd(opts),
		newTypesCmd(opts),
		newFillCmd(opts),
	)
	return rootCmd
}

func newProfileCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Profile every column of a CSV, TSV, XLSX or JSON file",
		Long: `Detect each column's type and compute its statistics, the dataset summary
and the Pearson correlation matrix of the numeric columns.

Example: colprofile profile sales.csv --columns price,quantity --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			c, ds, err := setup(opts, args[0], nil)
			if err != nil {
				return err
			}
			profile, err := c.Profiles.Profile(cmd.Context(), ds, opts.columns)
			if err != nil {
				return err
			}

			title := filepath.Base(args[0])
			switch f {
			case report.FormatMarkdown:
				_, err = cmd.OutOrStdout().Write(report.Markdown(title, profile))
			case report.FormatHTML:
				_, err = cmd.OutOrStdout().Write(report.HTML(title, profile))
			default:
				err = writeJSON(cmd.OutOrStdout(), profile)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, markdown or html")
	return cmd
}

func newCorrelateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "correlate [file]",
		Short: "Print the correlation and significance matrices of the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ds, err := setup(opts, args[0], nil)
			if err != nil {
				return err
			}
			profile, err := c.Profiles.Profile(cmd.Context(), ds, opts.columns)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), profile.Correlation)
		},
	}
}

func newTypesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types [file]",
		Short: "Print the detected type of each column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ds, err := setup(opts, args[0], func(cfg *profiling.ProfilingConfig) {
				cfg.SkipCorrelation = true
			})
			if err != nil {
				return err
			}
			profile, err := c.Profiles.Profile(cmd.Context(), ds, opts.columns)
			if err != nil {
				return err
			}

			types := make(map[string]string, len(profile.Statistics))
			for _, s := range profile.Statistics {
				label := string(s.Type)
				if s.IsBinary {
					label += " (binary)"
				}
				types[s.Column] = label
			}
			return writeJSON(cmd.OutOrStdout(), types)
		},
	}
}

func newFillCmd(opts *options) *cobra.Command {
	var row int
	var stat string
	var all bool
	var preview int

	cmd := &cobra.Command{
		Use:   "fill [file]",
		Short: "Fill a row's fields with a column statistic",
		Long: `Replace the fields of one row (or every row with --all) with a statistic of
each column: mean, median or mode for numbers, mostCommon for booleans and text,
earliest, latest or mostCommon for dates. Identifier fields are never touched; the
detected entity column is reserved along with STATS_RESERVED_FIELDS.

Example: colprofile fill customers.xlsx --row 12 --stat median`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := profiling.ParseStatKind(stat)
			if err != nil {
				return err
			}
			c, ds, err := setup(opts, args[0], func(cfg *profiling.ProfilingConfig) {
				cfg.SkipCorrelation = true
			})
			if err != nil {
				return err
			}

			reserved := append([]string(nil), c.Config.Stats.ReservedFields...)
			if column, ok := excel.DetectEntityColumn(ds); ok {
				reserved = append(reserved, column)
			}
			bulk := app.NewBulkUpdateService(c.Profiles, app.NewBulkValueResolver(reserved), c.Logger)

			switch {
			case all:
				filled, total, err := bulk.ApplyAll(cmd.Context(), ds, kind)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"rows": filled.Rows, "updated_fields": total})
			case preview > 0:
				previews, err := bulk.Preview(cmd.Context(), ds, kind, preview)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), previews)
			default:
				result, err := bulk.FillRow(cmd.Context(), ds, row, kind)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			}
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "Zero-based index of the row to fill")
	cmd.Flags().StringVar(&stat, "stat", "mean", "Statistic: mean, median, mode, mostCommon, earliest, latest")
	cmd.Flags().BoolVar(&all, "all", false, "Fill every row")
	cmd.Flags().IntVar(&preview, "preview", 0, "Show the first N rows before and after, without --all")
	return cmd
}

// setup loads config, applies flag overrides, wires the container and reads the file
func setup(opts *options, path string, tweak func(*profiling.ProfilingConfig)) (*container.Container, *dataset.Dataset, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.sample >= 0 {
		cfg.Stats.InferenceSample = opts.sample
	}
	if opts.significance != "" {
		cfg.Stats.SignificanceMode = profiling.SignificanceMode(opts.significance)
	}
	if opts.workers > 0 {
		cfg.Stats.MaxWorkers = opts.workers
	}

	pc := cfg.ProfilingConfig()
	if tweak != nil {
		tweak(&pc)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(opts.logLevel))
	c, err := container.New(cfg, logger, container.WithProfilingConfig(pc))
	if err != nil {
		return nil, nil, err
	}

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = opts.sheet
	ds, err := excel.NewDataReader(readerConfig, logger).ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return c, ds, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
