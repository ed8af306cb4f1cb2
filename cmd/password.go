package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dwhload/internal/config"
	"dwhload/internal/ui"
	"dwhload/pkg/errors"
)

var passwordCmd = &cobra.Command{
	Use:   "password DB_USER",
	Short: "Store the cluster password in the system keyring",
	Long: `Prompt for the cluster password of DB_USER and store it in the system keyring.

When DB_PASSWORD is empty in dwh.cfg and not set through the environment,
the password is read from the keyring entry for DB_USER.`,
	Args: cobra.ExactArgs(1),
	RunE: runPassword,
}

func init() {
	rootCmd.AddCommand(passwordCmd)
}

func runPassword(cmd *cobra.Command, args []string) error {
	user := args[0]
	if !ui.IsInteractive() {
		return errors.ConfigError("password requires an interactive terminal", "DB_PASSWORD").
			WithSuggestions("Set DWH_CLUSTER_DB_PASSWORD in the environment instead")
	}

	password, err := ui.Password(fmt.Sprintf("Password for %s:", user), "Stored in the system keyring, never written to dwh.cfg")
	if err != nil {
		return errors.AbortedError(err)
	}

	if err := config.StorePassword(user, password); err != nil {
		return err
	}

	newUI(cmd).Success(fmt.Sprintf("Password for %s stored in the keyring", user))
	return nil
}
