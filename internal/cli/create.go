package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/output"
	"github.com/ksyq12/sitectl/internal/template"
)

var (
	siteLocation   string
	siteKind       string
	sitePort       int
	siteRepo       string
	siteBuild      string
	siteTLS        bool
	siteRuntime    string
	siteDirectives []string
	siteCert       string
	siteKey        string
)

var createCmd = &cobra.Command{
	Use:     "create <domain>",
	Aliases: []string{"add"},
	Short:   "Create and deploy a site",
	Long: `Render a site configuration and deploy it.

The document root is <www_root>/<location>. With --repo the repository is
cloned there (or pulled if it is already a checkout) and --build runs in
it afterwards. --tls requests a certificate once the plain HTTP site is
live; a failed request leaves the HTTP site in place.

A site file with the same name is overwritten (last writer wins). Run
'sitectl list' first if that matters.

Examples:
  sitectl create app.example.com --kind proxy --port 3000
  sitectl create blog.example.com --location blog --server apache
  sitectl create docs.example.com --location docs --runtime none \
      --repo https://github.com/acme/docs.git --build "npm ci && npm run build"
  sitectl create shop.example.com --kind proxy --port 8080 --tls`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&siteLocation, "location", "l", "", "Directory under the web root (default: the domain)")
	createCmd.Flags().StringVarP(&siteKind, "kind", "k", string(config.KindStatic), "Site kind ("+kindNames()+")")
	createCmd.Flags().IntVarP(&sitePort, "port", "p", 0, "Local port to proxy to (proxy sites)")
	createCmd.Flags().StringVar(&siteRepo, "repo", "", "Git repository to deploy into the document root")
	createCmd.Flags().StringVar(&siteBuild, "build", "", "Build command run in the document root after cloning")
	createCmd.Flags().BoolVar(&siteTLS, "tls", false, "Request a certificate after deployment")
	createCmd.Flags().StringVar(&siteRuntime, "runtime", config.RuntimePHP, "Script runtime for static sites (php, none)")
	createCmd.Flags().StringArrayVar(&siteDirectives, "directive", nil, "Extra directive appended to the server block (repeatable)")
	createCmd.Flags().StringVar(&siteCert, "cert", "", "Existing certificate file (with --key)")
	createCmd.Flags().StringVar(&siteKey, "key", "", "Existing private key file (with --cert)")

	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, mgr, server, err := loadManager()
	if err != nil {
		return err
	}

	def := &config.SiteDefinition{
		Domain:       args[0],
		Location:     siteLocation,
		Kind:         config.SiteKind(siteKind),
		Port:         sitePort,
		SourceRepo:   siteRepo,
		BuildCommand: siteBuild,
		TLS:          siteTLS || siteCert != "",
		Server:       server,
		Runtime:      siteRuntime,
		Directives:   siteDirectives,
		TLSCert:      siteCert,
		TLSKey:       siteKey,
	}
	if def.Location == "" {
		def.Location = def.Domain
	}

	// Reject bad input before asking for privileges
	if err := def.Validate(); err != nil {
		return err
	}
	if err := requireRoot(cfg, server); err != nil {
		return err
	}
	// The ACME client writes challenge and certificate files itself
	if cfg.Sudo && def.TLS && !def.HasCertificate() && cfg.TLS.Provider == "acme" {
		if err := deps.RootChecker.RequireWritable(cfg.TLS.CertDir, cfg.TLS.Webroot); err != nil {
			return err
		}
	}

	if !jsonOutput {
		output.Info("Deploying %s", template.Describe(def))
	}
	res, err := mgr.Create(commandContext(cmd), def)
	return reportDeployment(res, err, "Site %s deployed to %s", def.Domain, server)
}

func kindNames() string {
	var names []string
	for _, k := range template.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
