package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dwhload/internal/pipeline"
	"dwhload/internal/preflight"
	"dwhload/internal/ui"
)

var checkSources bool

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Load staging tables from S3 and populate the star schema",
	Long: `Load staging_events and staging_songs with COPY from the S3 locations in
dwh.cfg, then populate users, songs, artists, time and songplays from staging.

Loads append: running etl twice without create-tables in between duplicates
the staged rows and the songs, artists, time and songplays rows built from
them. Run create-tables first for a clean load.`,
	Args: cobra.NoArgs,
	RunE: runETL,
}

func init() {
	rootCmd.AddCommand(etlCmd)

	etlCmd.Flags().BoolVar(&checkSources, "preflight", false, "verify the S3 sources exist before running COPY")
}

func runETL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	u := newUI(cmd)
	opts := pipeline.Options{
		DryRun: dryRun,
		UI:     u,
		Logger: logger,
	}

	if checkSources && !dryRun {
		checker, err := preflight.NewS3Checker(ctx, cfg.S3.Region, logger)
		if err != nil {
			return err
		}
		opts.Preflight = checker.Check
	}

	reports, err := pipeline.Load(ctx, cfg, opts)
	u.Summary(reports...)
	if err != nil {
		return err
	}

	if dryRun {
		u.Info(fmt.Sprintf("Dry run: %s statements executed", ui.Totals(reports...)))
		return nil
	}
	u.Success(fmt.Sprintf("Load complete (%s statements)", ui.Totals(reports...)))
	return nil
}
