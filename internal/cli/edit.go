package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/output"
)

var editCmd = &cobra.Command{
	Use:   "edit <name|domain>",
	Short: "Edit a site configuration and redeploy it",
	Long: `Open a copy of the site file in an editor. When the editor exits the
new content is deployed through the staged pipeline, so a change the
server rejects is rolled back.

Uses $VISUAL, then $EDITOR, and defaults to vi.

Examples:
  sitectl edit app.example.com
  EDITOR=nano sitectl edit blog_example_com.conf --server apache`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
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

	site, err := mgr.Get(server, name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "sitectl-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(site.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if !jsonOutput {
		output.Info("Editing %s", site.Path)
	}
	if err := deps.Editor.Edit(tmp.Name()); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return fmt.Errorf("failed to read edited file: %w", err)
	}
	if string(data) == site.Content {
		return outputResult(CommandResult{Success: true, Message: "no changes"}, "No changes to %s", name)
	}

	res, err := mgr.Save(commandContext(cmd), server, name, string(data))
	return reportDeployment(res, err, "Site %s updated", name)
}
