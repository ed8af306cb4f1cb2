package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dwhload/internal/config"
	"dwhload/internal/observability"
	"dwhload/internal/ui"
	"dwhload/pkg/errors"
	"dwhload/pkg/models"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	dryRun    bool
	logFormat = logFormatFlag("text")

	logger *observability.Logger

	rootCmd = &cobra.Command{
		Use:   "dwhload",
		Short: "Provision and load the song play star schema on Redshift",
		Long: `dwhload builds a star-schema data warehouse on Amazon Redshift.

create-tables drops and recreates the staging, dimension and fact tables.
etl bulk-loads the raw JSON event and song logs from S3 into staging and
then populates users, songs, artists, time and songplays from it.

Connection settings, the IAM role and the S3 locations are read from dwh.cfg.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}
)

// Execute runs the combined dwhload command
func Execute() {
	execute(os.Args[1:])
}

// ExecuteCreateTables runs create-tables as a standalone program
func ExecuteCreateTables() {
	execute(append([]string{createTablesCmd.Name()}, os.Args[1:]...))
}

// ExecuteETL runs etl as a standalone program
func ExecuteETL() {
	execute(append([]string{etlCmd.Name()}, os.Args[1:]...))
}

func execute(args []string) {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err once; the log line only shows with --verbose
func reportError(w io.Writer, err error) {
	if logger != nil {
		logger.DebugWithFields("Command failed", map[string]interface{}{
			"code": string(errors.GetErrorCode(err)),
		})
	}
	ui.NewUI(w, false, false).ShowError(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", fmt.Sprintf("config file (default %q, or $%s)", config.DefaultConfigFile, config.EnvConfigFile))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and per-statement results")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print errors")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print the statement progress without connecting")
	rootCmd.PersistentFlags().Var(&logFormat, "log-format", "log format: text or json")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := observability.WarnLevel
	if verbose {
		level = observability.DebugLevel
	}

	logger = observability.NewLogger(observability.LoggerConfig{
		Level:   level,
		Output:  cmd.ErrOrStderr(),
		Service: "dwhload",
		Version: Version,
		Encoder: observability.EncoderFromString(logFormat.String()),
	}).WithRunID()
	observability.SetDefaultLogger(logger)

	ui.SetColor(ui.IsTerminal(cmd.OutOrStdout()))
	return nil
}

// logFormatFlag restricts --log-format to the known encoders
type logFormatFlag string

var _ pflag.Value = (*logFormatFlag)(nil)

func (f *logFormatFlag) String() string { return string(*f) }

func (f *logFormatFlag) Set(v string) error {
	switch v = strings.ToLower(v); v {
	case "text", "json":
		*f = logFormatFlag(v)
		return nil
	}
	return fmt.Errorf("must be text or json")
}

func (f *logFormatFlag) Type() string { return "format" }

// loadConfig reads the config file selected by --config or $DWH_CONFIG
func loadConfig() (*models.Config, error) {
	path := config.GetConfigFile(cfgFile)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger.DebugWithFields("Configuration loaded", map[string]interface{}{
		"path":   path,
		"host":   cfg.Cluster.Host,
		"driver": cfg.Cluster.Driver,
	})
	return cfg, nil
}

func newUI(cmd *cobra.Command) *ui.UI {
	return ui.NewUI(cmd.OutOrStdout(), verbose, quiet)
}

// signalContext is cancelled on SIGINT or SIGTERM; the runner stops before the next statement
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
