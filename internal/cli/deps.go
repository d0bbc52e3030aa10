package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/deploy"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/input"
	"github.com/ksyq12/sitectl/internal/store"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader   ConfigLoader
	ManagerFactory ManagerFactory
	RootChecker    RootChecker
	StdinReader    input.Reader
	Editor         Editor
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config, path string) error
}

// SiteManager is the deployment surface the commands drive.
type SiteManager interface {
	Create(ctx context.Context, def *config.SiteDefinition) (*deploy.Result, error)
	Save(ctx context.Context, server config.Family, name, content string) (*deploy.Result, error)
	Get(server config.Family, name string) (*deploy.SiteConfig, error)
	Toggle(ctx context.Context, server config.Family, name string) (*deploy.Result, error)
	Delete(ctx context.Context, server config.Family, name string) (*deploy.Result, error)
	List(ctx context.Context, server config.Family) ([]store.SiteRecord, error)
	FileName(server config.Family, domain string) (string, error)
	Servers() []config.Family
}

var _ SiteManager = (*deploy.Controller)(nil)

// ManagerFactory creates the SiteManager for a configuration
type ManagerFactory interface {
	Create(cfg *config.Config) (SiteManager, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error

	// RequireWritable succeeds for root or when every path (or its
	// closest existing parent) is writable by the current user.
	RequireWritable(paths ...string) error
}

// Editor opens a file in an interactive editor
type Editor interface {
	Edit(path string) error
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:   &realConfigLoader{},
	ManagerFactory: &realManagerFactory{},
	RootChecker:    &realRootChecker{},
	StdinReader:    input.NewStdinReader(),
	Editor:         &realEditor{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.LoadFrom(path)
}

func (r *realConfigLoader) Save(cfg *config.Config, path string) error {
	return cfg.Save(path)
}

type realManagerFactory struct{}

func (r *realManagerFactory) Create(cfg *config.Config) (SiteManager, error) {
	exec := &executor.SystemExecutor{Timeout: cfg.Timeout(), Sudo: cfg.Sudo}
	return deploy.FromConfig(cfg, exec)
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return siteerrors.ErrRootRequired
	}
	return nil
}

func (r *realRootChecker) RequireWritable(paths ...string) error {
	if os.Geteuid() == 0 {
		return nil
	}
	for _, p := range paths {
		dir := existingParent(p)
		if err := unix.Access(dir, unix.W_OK); err != nil {
			return siteerrors.Wrap(siteerrors.ErrCodePermission,
				fmt.Sprintf("sudo mode needs write access to %s", dir), err)
		}
	}
	return nil
}

// existingParent walks up from p to the first path that exists.
func existingParent(p string) string {
	p = filepath.Clean(p)
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}

type realEditor struct{}

func (r *realEditor) Edit(path string) error {
	editor := getEditor()
	editorPath, err := exec.LookPath(editor)
	if err != nil {
		return siteerrors.Wrap(siteerrors.ErrCodeConfig, "editor not found: "+editor, err)
	}

	cmd := exec.Command(editorPath, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// getEditor returns $VISUAL, then $EDITOR, then vi.
func getEditor() string {
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}
