package template

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
)

// Fallbacks used when a family has no explicit setting.
const (
	DefaultPHPSocket = "/var/run/php/php-fpm.sock"
	DefaultLogDir    = "${APACHE_LOG_DIR}"
)

// TemplateData contains data for rendering templates
type TemplateData struct {
	Domain      string
	Root        string
	Upstream    string
	PHP         bool
	PHPSocket   string
	LogDir      string
	ACMEWebroot string
	TLS         bool
	TLSCert     string
	TLSKey      string
	Directives  []string
}

// ServerOptions are per-family rendering settings.
type ServerOptions struct {
	PHPSocket string
	LogDir    string
}

// Options configure a Renderer.
type Options struct {
	WWWRoot     string
	ACMEWebroot string // served at /.well-known/acme-challenge/ when set
	Servers     map[config.Family]ServerOptions
}

// Renderer turns site definitions into virtual-host files. It holds no
// mutable state; Render is safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.WWWRoot == "" {
		opts.WWWRoot = "/var/www"
	}
	return &Renderer{opts: opts}
}

// FromConfig creates a Renderer from the application configuration.
func FromConfig(cfg *config.Config) *Renderer {
	return New(Options{
		WWWRoot:     cfg.WWWRoot,
		ACMEWebroot: cfg.TLS.Webroot,
		Servers: map[config.Family]ServerOptions{
			config.FamilyNginx:  {PHPSocket: cfg.Nginx.PHPSocket, LogDir: cfg.Nginx.LogDir},
			config.FamilyApache: {PHPSocket: cfg.Apache.PHPSocket, LogDir: cfg.Apache.LogDir},
		},
	})
}

// WWWRoot returns the base directory for document roots.
func (r *Renderer) WWWRoot() string {
	return r.opts.WWWRoot
}

// Render renders the virtual host for def. The definition is validated
// first; an invalid definition never reaches a template.
func (r *Renderer) Render(def *config.SiteDefinition) (string, error) {
	if err := def.Validate(); err != nil {
		return "", err
	}

	tmpl, err := getTemplates(def.Server)
	if err != nil {
		return "", siteerrors.InvalidDefinition(err.Error())
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, string(def.Kind)+".tmpl", r.data(def)); err != nil {
		return "", siteerrors.Wrap(siteerrors.ErrCodeInternal, "failed to render template", err)
	}

	return buf.String(), nil
}

func (r *Renderer) data(def *config.SiteDefinition) TemplateData {
	srv := r.opts.Servers[def.Server]
	if srv.PHPSocket == "" {
		srv.PHPSocket = DefaultPHPSocket
	}
	if srv.LogDir == "" {
		srv.LogDir = DefaultLogDir
	}

	data := TemplateData{
		Domain:      def.Domain,
		Root:        def.DocumentRoot(r.opts.WWWRoot),
		PHP:         def.UsesPHP(),
		PHPSocket:   srv.PHPSocket,
		LogDir:      srv.LogDir,
		ACMEWebroot: r.opts.ACMEWebroot,
		TLS:         def.HasCertificate(),
		TLSCert:     def.TLSCert,
		TLSKey:      def.TLSKey,
		Directives:  def.Directives,
	}
	if def.Kind == config.KindProxy {
		data.Upstream = Upstream(def.Port)
	}
	return data
}

// Upstream returns the proxy target for a local port.
func Upstream(port int) string {
	return "http://127.0.0.1:" + strconv.Itoa(port)
}

// Kinds returns the site kinds templates exist for.
func Kinds() []config.SiteKind {
	return []config.SiteKind{config.KindStatic, config.KindProxy}
}

// Describe summarises a definition for log lines.
func Describe(def *config.SiteDefinition) string {
	if def.Kind == config.KindProxy {
		return fmt.Sprintf("%s %s -> %s", def.Server, def.Domain, Upstream(def.Port))
	}
	return fmt.Sprintf("%s %s (%s)", def.Server, def.Domain, def.Kind)
}
