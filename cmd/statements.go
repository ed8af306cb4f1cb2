package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dwhload/internal/catalog"
	"dwhload/pkg/errors"
)

var statementsCmd = &cobra.Command{
	Use:   "statements [sequence]",
	Short: "Print the resolved SQL statements as YAML",
	Long: `Print the statements each program runs, in execution order, as YAML.

Without an argument every sequence is printed: drop, create, copy and insert.
The IAM role account id in the COPY credentials is masked.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"drop", "create", "copy", "insert"},
	RunE:      runStatements,
}

func init() {
	rootCmd.AddCommand(statementsCmd)
}

func runStatements(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.NewRedacted(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "Failed to build statement catalog")
	}

	var doc interface{} = cat
	if len(args) == 1 {
		name, err := catalog.ParseSequenceName(args[0])
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, "Invalid sequence").
				WithSuggestions("Use one of drop, create, copy, insert")
		}
		stmts, err := cat.Sequence(name)
		if err != nil {
			return err
		}
		doc = map[string][]catalog.Statement{string(name): stmts}
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode statements: %w", err)
	}
	return enc.Close()
}
