package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
)

// Driver validates and reloads one web server family.
type Driver interface {
	// Name returns the server family name (nginx, apache)
	Name() string

	// Validate checks the server's whole configuration. A rejected
	// configuration yields a SYNTAX error carrying the checker output.
	Validate(ctx context.Context) error

	// Reload asks the running server to pick up the configuration.
	Reload(ctx context.Context) error

	// EnableProxy enables the modules reverse-proxy sites need.
	EnableProxy(ctx context.Context) error

	// EnableTLS enables the modules HTTPS sites need.
	EnableTLS(ctx context.Context) error
}

// CommandDriver implements Driver with configured commands.
type CommandDriver struct {
	name string
	srv  config.ServerConfig
	exec executor.CommandExecutor
}

// New creates a driver for a family from its settings.
func New(family config.Family, srv *config.ServerConfig, exec executor.CommandExecutor) *CommandDriver {
	return &CommandDriver{name: string(family), srv: *srv, exec: exec}
}

// NewNginx creates a driver with the default Nginx commands.
func NewNginx(exec executor.CommandExecutor) *CommandDriver {
	return New(config.FamilyNginx, &config.New().Nginx, exec)
}

// NewApache creates a driver with the default Apache commands.
func NewApache(exec executor.CommandExecutor) *CommandDriver {
	return New(config.FamilyApache, &config.New().Apache, exec)
}

// Name returns the driver name
func (d *CommandDriver) Name() string {
	return d.name
}

// Validate runs the syntax check. It passes only when the command exits
// zero and its combined output contains the family's success marker.
func (d *CommandDriver) Validate(ctx context.Context) error {
	cmd, err := executor.FromArgv(d.srv.ValidateCmd)
	if err != nil {
		return siteerrors.Wrap(siteerrors.ErrCodeConfig, d.name+" validate command", err)
	}

	output, err := d.exec.Execute(ctx, cmd)
	text := strings.TrimSpace(string(output))
	if err != nil {
		return siteerrors.Syntax("", text, fmt.Errorf("%s: %w", cmd, err))
	}
	if !strings.Contains(text, d.srv.ValidateMarker) {
		return siteerrors.Syntax("", text, fmt.Errorf("%s: output lacks %q", cmd, d.srv.ValidateMarker))
	}
	logger.Debug("%s: %s", cmd, text)
	return nil
}

// Reload reloads the server, trying the fallback command if the primary
// one fails
func (d *CommandDriver) Reload(ctx context.Context) error {
	output, err := d.run(ctx, d.srv.ReloadCmd)
	if err == nil {
		return nil
	}
	if len(d.srv.ReloadFallbackCmd) == 0 {
		return siteerrors.Wrap(siteerrors.ErrCodeReload, "failed to reload "+d.name, withOutput(err, output))
	}

	logger.Debug("reload failed, trying fallback: %v", err)
	output, err = d.run(ctx, d.srv.ReloadFallbackCmd)
	if err != nil {
		return siteerrors.Wrap(siteerrors.ErrCodeReload, "failed to reload "+d.name, withOutput(err, output))
	}
	return nil
}

// EnableProxy runs the proxy module command, if any.
func (d *CommandDriver) EnableProxy(ctx context.Context) error {
	return d.enableModules(ctx, d.srv.ProxyModulesCmd)
}

// EnableTLS runs the TLS module command, if any.
func (d *CommandDriver) EnableTLS(ctx context.Context) error {
	return d.enableModules(ctx, d.srv.TLSModulesCmd)
}

func (d *CommandDriver) enableModules(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	output, err := d.run(ctx, argv)
	if err != nil {
		return siteerrors.Wrap(siteerrors.ErrCodeInternal, "failed to enable "+d.name+" modules", withOutput(err, output))
	}
	return nil
}

func (d *CommandDriver) run(ctx context.Context, argv []string) ([]byte, error) {
	cmd, err := executor.FromArgv(argv)
	if err != nil {
		return nil, err
	}
	logger.Debug("running %s", cmd)
	return d.exec.Execute(ctx, cmd)
}

func withOutput(err error, output []byte) error {
	if out := strings.TrimSpace(string(output)); out != "" {
		return fmt.Errorf("%w: %s", err, out)
	}
	return err
}
