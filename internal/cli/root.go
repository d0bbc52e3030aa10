package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/logger"
	"github.com/ksyq12/sitectl/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	serverFlag string
	configPath string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Site deployment for Nginx and Apache",
	Long: `sitectl renders, deploys and manages virtual-host configurations for
Nginx and Apache.

Every change goes through the same pipeline: the file is staged, activated,
checked with the server's own syntax test and either committed with a
reload or rolled back to exactly what was there before.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		reportError(err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// reportError prints a failure once. Commands that already rendered their
// result set reported.
func reportError(err error) {
	if reported {
		return
	}
	if jsonOutput {
		_ = output.JSON(CommandResult{Success: false, Error: err.Error()})
		return
	}
	output.Error("%v", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "Web server: nginx or apache (default from config)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $SITECTL_CONFIG or /etc/sitectl/config.yaml)")
}
