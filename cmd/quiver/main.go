package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quiverdb/quiver/pkg/compress"
	"github.com/quiverdb/quiver/pkg/config"
	"github.com/quiverdb/quiver/pkg/frame"
	"github.com/quiverdb/quiver/pkg/groupby"
	"github.com/quiverdb/quiver/pkg/kernel"
	"github.com/quiverdb/quiver/pkg/logger"
	"github.com/quiverdb/quiver/pkg/parallel"
	"github.com/quiverdb/quiver/pkg/pool"
)

var version = "0.1.0"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "quiver",
		Short: "Quiver - in-process columnar aggregation engine",
		Long: `Quiver is an in-process columnar data-processing engine with an
adaptive group-by engine, vectorized kernels, and pooled aligned memory.
The CLI wraps the engine for ad-hoc aggregation over CSV input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quiver v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newAggregateCmd(&configPath))
	root.AddCommand(newConvertCmd(&configPath))

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	_ = logger.Sync()
}

// setup loads configuration and initializes logging, returning the config
// and an engine built from it.
func setup(configPath string) (*config.Config, *groupby.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
	}); err != nil {
		return nil, nil, err
	}
	if cfg.Kernel.ForceScalar {
		kernel.SetFastPath(false)
		logger.Warn("vectorized kernels disabled, using scalar fallbacks")
	}

	engine := groupby.New(
		groupby.WithConfig(cfg.GroupBy),
		groupby.WithExecutor(parallel.New(
			parallel.WithWorkers(cfg.Parallel.Workers),
			parallel.WithChunkSize(cfg.Parallel.ChunkSize),
			parallel.WithMinChunkSize(cfg.Parallel.MinChunkSize),
			parallel.WithLogger(logger.Get()),
		)),
		groupby.WithPool(pool.NewAlignedPool(cfg.Pool.FreeListCap)),
		groupby.WithLogger(logger.Get()),
	)
	return cfg, engine, nil
}

func newAggregateCmd(configPath *string) *cobra.Command {
	var (
		groupColumn string
		aggSpecs    []string
		outputJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate [input.csv]",
		Short: "Group and aggregate a CSV file",
		Long: `Reads CSV from the given file (or stdin), groups by --by, and
computes the aggregations given as --agg column:function pairs
(function: sum, mean, min, max, count, median, std).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := setup(*configPath)
			if err != nil {
				return err
			}
			log := logger.With(zap.String("command", "aggregate"))

			aggs, err := parseAggSpecs(aggSpecs)
			if err != nil {
				return err
			}
			logger.Debug("parsed aggregations", zap.Int("count", len(aggs)))

			in, closeIn, err := openInput(args)
			if err != nil {
				return err
			}
			defer closeIn()

			f, err := frame.ReadCSV(in)
			if err != nil {
				return err
			}
			log.Info("loaded input",
				zap.Int("rows", f.NumRows()),
				zap.Int("columns", f.NumColumns()))

			out, err := f.GroupByWith(engine, groupColumn, aggs)
			if err != nil {
				return err
			}
			log.Info("aggregation complete", zap.Int("groups", out.NumRows()))

			if outputJSON {
				return out.WriteJSON(cmd.OutOrStdout())
			}
			return out.WriteCSV(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&groupColumn, "by", "", "group column name (required)")
	cmd.Flags().StringArrayVar(&aggSpecs, "agg", nil, "aggregation as column:function (repeatable, required)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "emit JSON rows instead of CSV")
	_ = cmd.MarkFlagRequired("by")
	_ = cmd.MarkFlagRequired("agg")
	return cmd
}

func newConvertCmd(configPath *string) *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "snapshot [input.csv] [output.qvs]",
		Short: "Convert a CSV file to a compressed columnar snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := setup(*configPath); err != nil {
				return err
			}

			codec, err := compress.NewCodec(compress.Algorithm(algorithm))
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			f, err := frame.ReadCSV(in)
			if err != nil {
				return err
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()

			if err := f.WriteSnapshot(out, codec); err != nil {
				return err
			}
			logger.Info("snapshot written",
				zap.String("path", args[1]),
				zap.Int("rows", f.NumRows()),
				zap.String("algorithm", algorithm))
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "compression", "zstd", "snapshot compression: none, lz4, zstd")
	return cmd
}

// parseAggSpecs parses repeated column:function flags.
func parseAggSpecs(specs []string) ([]groupby.Aggregation, error) {
	aggs := make([]groupby.Aggregation, 0, len(specs))
	for _, spec := range specs {
		column, token, ok := strings.Cut(spec, ":")
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid aggregation %q, want column:function", spec)
		}
		fn, err := groupby.ParseFunc(token)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, groupby.Aggregation{Column: column, Func: fn})
	}
	return aggs, nil
}

func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
