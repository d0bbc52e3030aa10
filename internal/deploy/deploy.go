package deploy

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/driver"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
	"github.com/ksyq12/sitectl/internal/ssl"
	"github.com/ksyq12/sitectl/internal/store"
	"github.com/ksyq12/sitectl/internal/template"
	"github.com/ksyq12/sitectl/internal/workspace"
)

// State is a step of the deployment pipeline.
type State string

// Pipeline states, in order.
const (
	StateIdle       State = "idle"
	StateRendered   State = "rendered"
	StateStaged     State = "staged"
	StateActivated  State = "activated"
	StateValidated  State = "validated"
	StateRejected   State = "rejected"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// Outcome is the final result of a pipeline run.
type Outcome string

// Outcomes
const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Action names the operation a Result belongs to.
type Action string

// Actions
const (
	ActionCreate Action = "create"
	ActionSave   Action = "save"
	ActionToggle Action = "toggle"
	ActionDelete Action = "delete"
)

// Result reports what a mutating operation did. It is returned alongside
// the error, so callers can show how far the pipeline got.
type Result struct {
	ID       string        `json:"id"`
	Server   config.Family `json:"server"`
	Name     string        `json:"name"`
	Domain   string        `json:"domain,omitempty"`
	Action   Action        `json:"action"`
	State    State         `json:"state"`
	Outcome  Outcome       `json:"outcome,omitempty"`
	Enabled  bool          `json:"enabled"`
	TLS      bool          `json:"tls,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

func (r *Result) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s: %s", r.Name, msg)
	r.Warnings = append(r.Warnings, msg)
}

// SiteConfig is the raw content of a site file.
type SiteConfig struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Family bundles the store and driver of one server family.
type Family struct {
	Store  *store.Store
	Driver driver.Driver
	Suffix string // appended to derived file names
}

// Preparer readies a site's document root.
type Preparer interface {
	Prepare(ctx context.Context, def *config.SiteDefinition) (string, error)
}

// Options configure a Controller. Workspace and TLS are optional.
type Options struct {
	Renderer  *template.Renderer
	Workspace Preparer
	TLS       ssl.Provisioner
	Families  map[config.Family]Family
}

// Controller runs deployments against the site stores.
type Controller struct {
	renderer  *template.Renderer
	workspace Preparer
	tls       ssl.Provisioner
	families  map[config.Family]Family
}

// New creates a Controller.
func New(opts Options) *Controller {
	if opts.Renderer == nil {
		opts.Renderer = template.New(template.Options{})
	}
	return &Controller{
		renderer:  opts.Renderer,
		workspace: opts.Workspace,
		tls:       opts.TLS,
		families:  opts.Families,
	}
}

// FromConfig wires a Controller for every configured family.
func FromConfig(cfg *config.Config, exec executor.CommandExecutor) (*Controller, error) {
	provisioner, err := ssl.FromConfig(cfg, exec)
	if err != nil {
		return nil, err
	}

	families := make(map[config.Family]Family, 2)
	for _, f := range config.Families() {
		srv, err := cfg.Server(f)
		if err != nil {
			return nil, err
		}
		families[f] = Family{
			Store:  store.FromConfig(f, srv, exec),
			Driver: driver.New(f, srv, exec),
			Suffix: srv.FileSuffix,
		}
	}

	return New(Options{
		Renderer:  template.FromConfig(cfg),
		Workspace: workspace.FromConfig(cfg, exec),
		TLS:       provisioner,
		Families:  families,
	}), nil
}

// Servers returns the configured families in a stable order.
func (c *Controller) Servers() []config.Family {
	out := make([]config.Family, 0, len(c.families))
	for f := range c.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Controller) family(f config.Family) (Family, error) {
	fam, ok := c.families[f]
	if !ok {
		return Family{}, siteerrors.InvalidDefinition(fmt.Sprintf("server %q is not configured", f))
	}
	return fam, nil
}

// FileName returns the site file name a domain deploys to.
func (c *Controller) FileName(server config.Family, domain string) (string, error) {
	fam, err := c.family(server)
	if err != nil {
		return "", err
	}
	return config.FileName(domain, fam.Suffix), nil
}

func newResult(action Action, server config.Family, name string) *Result {
	return &Result{
		ID:     uuid.NewString(),
		Server: server,
		Name:   name,
		Action: action,
		State:  StateIdle,
	}
}

// Create renders def and deploys it. An existing file of the same name is
// overwritten. A TLS request is served after the plain site is committed
// and never undoes it.
func (c *Controller) Create(ctx context.Context, def *config.SiteDefinition) (*Result, error) {
	if def == nil {
		return newResult(ActionCreate, "", ""), siteerrors.InvalidDefinition("site definition is required")
	}
	res := newResult(ActionCreate, def.Server, "")
	res.Domain = def.Domain

	content, err := c.renderer.Render(def)
	if err != nil {
		return res, err
	}
	fam, err := c.family(def.Server)
	if err != nil {
		return res, err
	}
	res.Name = config.FileName(def.Domain, fam.Suffix)
	res.State = StateRendered

	if c.workspace != nil {
		root, err := c.workspace.Prepare(ctx, def)
		if err != nil {
			return res, err
		}
		logger.Debug("document root ready at %s", root)
	}

	if def.Kind == config.KindProxy {
		if err := fam.Driver.EnableProxy(ctx); err != nil {
			res.warn("failed to enable proxy modules: %v", err)
		}
	}

	if err := c.apply(ctx, fam, res, content, true); err != nil {
		return res, err
	}
	res.TLS = def.HasCertificate()

	if def.TLS && !def.HasCertificate() {
		if err := c.secure(ctx, fam, res, def); err != nil {
			return res, err
		}
	}

	logger.InfoFields("site created", map[string]interface{}{
		"id":      res.ID,
		"server":  res.Server,
		"name":    res.Name,
		"domain":  res.Domain,
		"outcome": res.Outcome,
		"tls":     res.TLS,
	})
	return res, nil
}

// secure issues a certificate for a committed site and redeploys it with
// HTTPS. Only store failures are returned; everything else is a warning.
func (c *Controller) secure(ctx context.Context, fam Family, res *Result, def *config.SiteDefinition) error {
	if c.tls == nil {
		res.warn("TLS requested but no certificate provisioner is configured")
		return nil
	}
	if err := fam.Driver.EnableTLS(ctx); err != nil {
		res.warn("failed to enable TLS modules: %v", err)
	}

	cert, err := c.tls.Issue(ctx, def.Domain)
	if err != nil {
		res.warn("certificate not issued, site stays on HTTP: %v", err)
		return nil
	}

	secured := *def
	secured.TLSCert = cert.CertPath
	secured.TLSKey = cert.KeyPath
	content, err := c.renderer.Render(&secured)
	if err != nil {
		res.warn("failed to render HTTPS configuration: %v", err)
		return nil
	}

	attempt := newResult(ActionCreate, res.Server, res.Name)
	if err := c.apply(ctx, fam, attempt, content, true); err != nil {
		if siteerrors.Is(err, siteerrors.ErrStoreIO) {
			res.State = attempt.State
			return err
		}
		res.warn("HTTPS configuration rejected, site stays on HTTP: %s", attempt.Reason)
		return nil
	}
	res.Warnings = append(res.Warnings, attempt.Warnings...)
	res.TLS = true
	return nil
}

// Save deploys caller-provided content under name through the same
// pipeline. An existing site keeps its enabled state; a new one is
// enabled.
func (c *Controller) Save(ctx context.Context, server config.Family, name, content string) (*Result, error) {
	res := newResult(ActionSave, server, name)
	fam, err := c.family(server)
	if err != nil {
		return res, err
	}
	if err := store.ValidateName(name); err != nil {
		return res, err
	}
	res.State = StateRendered

	if err := c.apply(ctx, fam, res, content, false); err != nil {
		return res, err
	}
	logger.InfoFields("site saved", map[string]interface{}{
		"id":      res.ID,
		"server":  res.Server,
		"name":    res.Name,
		"enabled": res.Enabled,
	})
	return res, nil
}

// Get returns a site file's content and absolute path.
func (c *Controller) Get(server config.Family, name string) (*SiteConfig, error) {
	fam, err := c.family(server)
	if err != nil {
		return nil, err
	}
	content, err := fam.Store.Read(name)
	if err != nil {
		return nil, err
	}
	return &SiteConfig{Name: name, Path: fam.Store.Path(name), Content: content}, nil
}

// List returns the sites of one family.
func (c *Controller) List(ctx context.Context, server config.Family) ([]store.SiteRecord, error) {
	fam, err := c.family(server)
	if err != nil {
		return nil, err
	}
	return fam.Store.List(ctx)
}

// Toggle flips a site between enabled and disabled, then reloads the
// server. A reload failure is a warning.
func (c *Controller) Toggle(ctx context.Context, server config.Family, name string) (*Result, error) {
	res := newResult(ActionToggle, server, name)
	fam, err := c.family(server)
	if err != nil {
		return res, err
	}

	unlock, err := fam.Store.Lock(name)
	if err != nil {
		return res, err
	}
	defer unlock()

	enabled, err := fam.Store.IsEnabled(ctx, name)
	if err != nil {
		return res, err
	}
	if enabled {
		err = fam.Store.Deactivate(ctx, name)
	} else {
		err = fam.Store.Enable(ctx, name)
	}
	if err != nil {
		return res, err
	}
	res.Enabled = !enabled
	res.State = StateCommitted
	res.Outcome = OutcomeCommitted

	c.reload(ctx, fam, res)
	logger.InfoFields("site toggled", map[string]interface{}{
		"id":      res.ID,
		"server":  res.Server,
		"name":    res.Name,
		"enabled": res.Enabled,
	})
	return res, nil
}

// Delete removes a site's enabled marker and file, then reloads the
// server.
func (c *Controller) Delete(ctx context.Context, server config.Family, name string) (*Result, error) {
	res := newResult(ActionDelete, server, name)
	fam, err := c.family(server)
	if err != nil {
		return res, err
	}

	unlock, err := fam.Store.Lock(name)
	if err != nil {
		return res, err
	}
	defer unlock()

	exists, err := fam.Store.Exists(name)
	if err != nil {
		return res, err
	}
	if !exists {
		return res, siteerrors.NotFound(name)
	}
	if err := fam.Store.Remove(ctx, name); err != nil {
		return res, err
	}
	res.State = StateCommitted
	res.Outcome = OutcomeCommitted

	c.reload(ctx, fam, res)
	logger.InfoFields("site deleted", map[string]interface{}{
		"id":     res.ID,
		"server": res.Server,
		"name":   res.Name,
	})
	return res, nil
}

func (c *Controller) reload(ctx context.Context, fam Family, res *Result) {
	if err := fam.Driver.Reload(ctx); err != nil {
		res.warn("%v", err)
	}
}
