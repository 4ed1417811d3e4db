package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"lab-notebook-client/internal/bootstrap"
	"lab-notebook-client/internal/config"
)

var (
	container *bootstrap.Container
	validate  = validator.New()
)

var rootCmd = &cobra.Command{
	Use:   "labnote",
	Short: "A command-line client for the lab notebook service",
	Long: `labnote drives the lab notebook REST API from the terminal:
sign in once, then create and edit notes and experiments with their
steps and attachments. The session cookie persists across invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// withContainer wires the stores before a command body runs and flushes
// cookies and logs after it returns.
func withContainer(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := bootstrap.NewContainer(config.Load())
		if err != nil {
			return err
		}
		container = c
		defer func() {
			if closeErr := container.Close(context.Background()); closeErr != nil {
				fmt.Fprintln(os.Stderr, closeErr)
			}
		}()
		return fn(cmd, args)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(experimentsCmd)
}
