package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/input"
	"github.com/ksyq12/sitectl/internal/output"
)

var forceDelete bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name|domain>",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a site",
	Long: `Disable a site, delete its file and reload the server. The document
root is left alone.

Examples:
  sitectl delete app.example.com
  sitectl rm blog_example_com.conf --server apache --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Delete without confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, mgr, server, err := loadManager()
	if err != nil {
		return err
	}
	if err := requireRoot(cfg, server); err != nil {
		return err
	}
	name, err := siteName(mgr, server, args[0])
	if err != nil {
		return err
	}

	if !forceDelete && !jsonOutput {
		ok, err := input.Confirm(deps.StdinReader, output.Writer(), fmt.Sprintf("Delete site %s from %s?", name, server))
		if err != nil {
			return err
		}
		if !ok {
			output.Info("Deletion cancelled")
			return nil
		}
	}

	res, err := mgr.Delete(commandContext(cmd), server, name)
	return reportDeployment(res, err, "Site %s deleted", name)
}
