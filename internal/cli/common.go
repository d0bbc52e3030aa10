package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/deploy"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/output"
)

// reported is set once a command has printed its own failure.
var reported bool

// CommandResult is the JSON shape of every mutating command
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Output  string `json:"output,omitempty"`
	*deploy.Result
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadManager loads config, picks the server family and builds the
// manager for it.
func loadManager() (*config.Config, SiteManager, config.Family, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}
	server, err := resolveServer(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	mgr, err := deps.ManagerFactory.Create(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	return cfg, mgr, server, nil
}

func resolveServer(cfg *config.Config) (config.Family, error) {
	if serverFlag == "" {
		return cfg.DefaultServer, nil
	}
	return config.ParseFamily(serverFlag)
}

// requireRoot checks that the site files of server can be changed. With
// sudo set only external commands are elevated, so a non-root user must
// be able to write the site directories the store touches itself.
func requireRoot(cfg *config.Config, server config.Family) error {
	if !cfg.Sudo {
		return deps.RootChecker.RequireRoot()
	}
	srv, err := cfg.Server(server)
	if err != nil {
		return err
	}
	paths := []string{srv.Available, srv.StagingDir()}
	if !srv.UsesCommands() {
		paths = append(paths, srv.Enabled)
	}
	return deps.RootChecker.RequireWritable(paths...)
}

// siteName accepts either a file name or a domain. An existing file name
// wins; otherwise the name is derived from the domain.
func siteName(mgr SiteManager, server config.Family, arg string) (string, error) {
	if _, err := mgr.Get(server, arg); err == nil {
		return arg, nil
	}
	return mgr.FileName(server, arg)
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// reportDeployment prints the outcome of a mutating operation. On failure
// the error is returned unchanged after being reported.
func reportDeployment(res *deploy.Result, err error, successMsg string, args ...interface{}) error {
	if jsonOutput {
		cr := CommandResult{Success: err == nil, Result: res}
		if err != nil {
			cr.Error = err.Error()
			cr.Output = siteerrors.DetailOf(err)
		} else {
			cr.Message = fmt.Sprintf(successMsg, args...)
		}
		if jerr := output.JSON(cr); jerr != nil {
			return jerr
		}
		reported = true
		return err
	}

	if err != nil {
		if siteerrors.Is(err, siteerrors.ErrSyntax) {
			output.Error("Configuration rejected, changes rolled back")
			output.Block("syntax check", siteerrors.DetailOf(err))
			reported = true
		} else if res != nil && res.State != "" && res.State != deploy.StateIdle && siteerrors.Is(err, siteerrors.ErrStoreIO) {
			output.Warn("Pipeline halted in state %s without rollback, check the site files", res.State)
		}
		return err
	}

	output.Success(successMsg, args...)
	for _, w := range res.Warnings {
		output.Warn("%s", w)
	}
	return nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
