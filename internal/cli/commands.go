package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vegasq/tibble/internal/logging"
	"github.com/vegasq/tibble/output"
	"github.com/vegasq/tibble/pipeline"
	"github.com/vegasq/tibble/reader"
	"github.com/vegasq/tibble/tibble"
)

func (a *app) headCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "head FILE",
		Short: "Print the first rows of a file or glob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 0 {
				return fmt.Errorf("-n must be non-negative, got %d", n)
			}
			t, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t, err = t.SliceHead(n); err != nil {
				return err
			}
			return a.write(cmd, t)
		},
	}
	cmd.Flags().IntVarP(&n, "rows", "n", 10, "number of rows to print")
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema FILE",
		Short: "Show column names and types",
		Long: `Show column names and types. Parquet files are described from their
footer without reading rows. For a glob the first match is described.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := firstMatch(args[0])
			if err != nil {
				return err
			}
			if path != args[0] {
				a.logger.Info("showing schema of first match", zap.String("path", path))
			}
			infos, err := reader.DescribeFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			t, err := schemaTibble(infos)
			if err != nil {
				return err
			}
			return a.write(cmd, t)
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Print summary statistics for each column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t, err = t.Describe(); err != nil {
				return err
			}
			return a.write(cmd, t)
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run PIPELINE.yaml",
		Short: "Run a pipeline file",
		Long: `Run a pipeline file. The result is written to the pipeline's output
file when it names one, else printed in the selected format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			ctx := context.WithValue(cmd.Context(), logging.PipelineKey, p.Name)
			logger := logging.WithContext(ctx)

			start := time.Now()
			t, err := pipeline.Run(ctx, p, logger)
			if err != nil {
				return err
			}
			logger.Info("pipeline finished",
				zap.Int("steps", len(p.Steps)),
				zap.Int("rows", t.Nrow()),
				zap.Duration("elapsed", time.Since(start)))
			if p.Output != "" {
				return nil
			}
			return a.write(cmd, t)
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert between CSV, parquet and JSON Lines",
		Long: `Convert between CSV, parquet and JSON Lines. Formats follow the file
extensions; a trailing .gz, .zst, .lz4 or .sz compresses the output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := output.WriteFile(args[1], t); err != nil {
				return err
			}
			a.logger.Info("converted",
				zap.String("from", args[0]),
				zap.String("to", args[1]),
				zap.Int("rows", t.Nrow()))
			return nil
		},
	}
}

func (a *app) read(ctx context.Context, pattern string) (*tibble.Tibble, error) {
	t, err := reader.ReadMultipleFiles(ctx, pattern)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("input loaded",
		zap.String("input", pattern),
		zap.Int("rows", t.Nrow()),
		zap.Int("cols", t.Ncol()))
	return t, nil
}

// firstMatch resolves a glob to its first match; plain paths pass through
func firstMatch(pattern string) (string, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return pattern, nil
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no files match pattern: %s", pattern)
	}
	return matches[0], nil
}

func schemaTibble(infos []reader.SchemaInfo) (*tibble.Tibble, error) {
	names := []string{"name", "type", "physical_type", "logical_type", "required", "optional", "repeated"}
	rows := make([][]interface{}, len(infos))
	for i, f := range infos {
		rows[i] = []interface{}{f.Name, f.Type, f.PhysicalType, f.LogicalType, f.Required, f.Optional, f.Repeated}
	}
	return tibble.FromRows(names, rows)
}
