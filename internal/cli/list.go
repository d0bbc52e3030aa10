package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/output"
	"github.com/ksyq12/sitectl/internal/store"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List deployed sites",
	Long: `List the site files of a server, or of every server when --server is
not given. Server name, root and proxy target are read back from the files.

Examples:
  sitectl list
  sitectl list --server apache
  sitectl list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr, err := deps.ManagerFactory.Create(cfg)
	if err != nil {
		return err
	}

	servers := mgr.Servers()
	if serverFlag != "" {
		server, err := config.ParseFamily(serverFlag)
		if err != nil {
			return err
		}
		servers = []config.Family{server}
	}

	records := []store.SiteRecord{}
	for _, server := range servers {
		recs, err := mgr.List(commandContext(cmd), server)
		if err != nil {
			return err
		}
		records = append(records, recs...)
	}

	if jsonOutput {
		return output.JSON(records)
	}

	if len(records) == 0 {
		output.Info("No sites found")
		return nil
	}

	table := make([][]string, 0, len(records))
	for _, r := range records {
		target := r.Root
		if r.Kind == config.KindProxy {
			target = r.Proxy
		}
		table = append(table, []string{
			r.Name,
			string(r.Server),
			r.ServerName,
			string(r.Kind),
			target,
			output.YesNo(r.TLS),
			output.YesNo(r.Enabled),
		})
	}
	output.Table([]string{"NAME", "SERVER", "DOMAIN", "TYPE", "TARGET", "TLS", "ENABLED"}, table)
	return nil
}
