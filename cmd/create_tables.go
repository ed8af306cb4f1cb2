package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dwhload/internal/pipeline"
	"dwhload/internal/ui"
	"dwhload/pkg/errors"
)

var confirmDrop bool

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Drop and recreate every warehouse table",
	Long: `Drop and recreate the staging, helper, dimension and fact tables.

Every DROP runs first (DROP TABLE IF EXISTS), then every CREATE in an order
that satisfies the foreign keys. Each statement is committed on its own, so a
failure leaves the statements before it applied.`,
	Args: cobra.NoArgs,
	RunE: runCreateTables,
}

func init() {
	rootCmd.AddCommand(createTablesCmd)

	createTablesCmd.Flags().BoolVar(&confirmDrop, "confirm", false, "ask for confirmation before dropping tables (terminal only)")
}

func runCreateTables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	u := newUI(cmd)
	if confirmDrop && !dryRun && ui.IsInteractive() {
		ok, err := ui.Confirm(fmt.Sprintf("Drop and recreate all tables in %s on %s?", cfg.Cluster.DBName, cfg.Cluster.Host), false)
		if err != nil {
			return errors.AbortedError(err)
		}
		if !ok {
			u.Warning("Nothing dropped")
			return nil
		}
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	reports, err := pipeline.Provision(ctx, cfg, pipeline.Options{
		DryRun: dryRun,
		UI:     u,
		Logger: logger,
	})
	u.Summary(reports...)
	if err != nil {
		return err
	}

	if dryRun {
		u.Info(fmt.Sprintf("Dry run: %s statements executed", ui.Totals(reports...)))
		return nil
	}
	u.Success(fmt.Sprintf("Tables created (%s statements)", ui.Totals(reports...)))
	return nil
}
