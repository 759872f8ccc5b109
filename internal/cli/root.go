// Package cli implements the tibble command line tool
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vegasq/tibble/internal/logging"
	"github.com/vegasq/tibble/output"
	"github.com/vegasq/tibble/tibble"
)

// Version is set at build time
var Version = "dev"

// EnvPrefix prefixes environment overrides, as in TIBBLE_OUTPUT_FORMAT
const EnvPrefix = "TIBBLE"

// Config keys
const (
	keyFormat      = "output.format"
	keyLogLevel    = "log.level"
	keyLogEncoding = "log.encoding"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
}

// NewRootCmd builds the command tree. Settings come from flags, then
// TIBBLE_* environment variables, then the config file.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tibble",
		Short: "Inspect, transform and convert tabular files",
		Long: `tibble reads CSV, parquet and JSON Lines files (optionally compressed)
and applies dplyr-style verbs to them.

Examples:
  tibble head -n 5 data.parquet
  tibble schema "logs/*.jsonl.gz"
  tibble --format csv describe data.csv
  tibble run pipeline.yaml
  tibble convert data.csv data.parquet`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.init() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./.tibble.yaml)")
	flags.StringP("format", "f", "table", "output format: "+strings.Join(output.Formats, ", "))
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-encoding", "console", "log encoding (console, json)")
	_ = a.v.BindPFlag(keyFormat, flags.Lookup("format"))
	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(keyLogEncoding, flags.Lookup("log-encoding"))

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.headCmd(),
		a.schemaCmd(),
		a.describeCmd(),
		a.runCmd(),
		a.convertCmd(),
		versionCmd(),
	)
	return root
}

// init reads .env and the config file, then sets up logging
func (a *app) init() error {
	// a missing .env is fine
	_ = godotenv.Load()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName(".tibble")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "tibble"))
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := logging.Init(logging.Config{
		Level:    a.v.GetString(keyLogLevel),
		Encoding: a.v.GetString(keyLogEncoding),
	}); err != nil {
		return err
	}
	a.logger = logging.Get()
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", zap.String("path", used))
	}
	return nil
}

// write prints t to the command's output in the configured format
func (a *app) write(cmd *cobra.Command, t *tibble.Tibble) error {
	formatter, err := output.NewFormatter(a.v.GetString(keyFormat), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return formatter.Format(t)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tibble %s\n", Version)
		},
	}
}

// Execute runs the root command and returns the process exit code
func Execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	defer func() { _ = logging.Sync() }()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
