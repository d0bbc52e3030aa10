package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/input"
)

var saveFile string

var saveCmd = &cobra.Command{
	Use:   "save <name|domain>",
	Short: "Deploy a hand-written configuration file",
	Long: `Deploy raw configuration content under a site name. The content goes
through the same staged pipeline as create and is rolled back if the
server rejects it. An existing site keeps its enabled state.

Examples:
  sitectl save app_example_com --file app.conf
  sitectl show app.example.com --raw | sed 's/3000/4000/' | sitectl save app.example.com --file -`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "File to read the configuration from, - for stdin")
	_ = saveCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	content, err := readContent(saveFile)
	if err != nil {
		return err
	}

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

	res, err := mgr.Save(commandContext(cmd), server, name, content)
	return reportDeployment(res, err, "Site %s saved", name)
}

func readContent(path string) (string, error) {
	if path == "-" {
		return input.ReadAll(deps.StdinReader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
