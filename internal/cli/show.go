package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/output"
	"github.com/ksyq12/sitectl/internal/store"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show <name|domain>",
	Short: "Show a site's configuration file",
	Long: `Show where a site file lives, what it serves and its content.

Examples:
  sitectl show app_example_com
  sitectl show app.example.com --raw > backup.conf
  sitectl show blog.example.com --server apache --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print only the file content")
	rootCmd.AddCommand(showCmd)
}

type showDetail struct {
	store.SiteRecord
	Content string `json:"content"`
}

func runShow(cmd *cobra.Command, args []string) error {
	_, mgr, server, err := loadManager()
	if err != nil {
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

	if showRaw {
		output.Raw(site.Content)
		return nil
	}

	detail := showDetail{SiteRecord: store.Parse(server, site.Content), Content: site.Content}
	detail.Name = site.Name
	detail.Path = site.Path
	records, err := mgr.List(commandContext(cmd), server)
	if err != nil {
		output.Warn("Could not determine enabled state: %v", err)
	}
	for _, r := range records {
		if r.Name == name {
			detail.Enabled = r.Enabled
		}
	}

	if jsonOutput {
		return output.JSON(detail)
	}

	output.Print("Name:     %s", detail.Name)
	output.Print("Path:     %s", detail.Path)
	output.Print("Server:   %s", detail.Server)
	if detail.ServerName != "" {
		output.Print("Domain:   %s", detail.ServerName)
	}
	output.Print("Type:     %s", detail.Kind)
	if detail.Root != "" {
		output.Print("Root:     %s", detail.Root)
	}
	if detail.Proxy != "" {
		output.Print("Proxy:    %s", detail.Proxy)
	}
	output.Print("TLS:      %s", output.YesNo(detail.TLS))
	output.Print("Enabled:  %s", output.YesNo(detail.Enabled))
	output.Print("")
	output.Raw(detail.Content)
	return nil
}
