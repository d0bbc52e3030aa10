package cli

import (
	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <name|domain>",
	Short: "Enable a disabled site or disable an enabled one",
	Long: `Flip a site between enabled and disabled and reload the server. The
site file itself is kept either way.

Examples:
  sitectl toggle app.example.com
  sitectl toggle blog_example_com.conf --server apache`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
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

	res, err := mgr.Toggle(commandContext(cmd), server, name)
	state := "disabled"
	if res != nil && res.Enabled {
		state = "enabled"
	}
	return reportDeployment(res, err, "Site %s %s", name, state)
}
