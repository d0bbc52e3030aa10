// Package workspace prepares the document root of a site: it creates the
// directory, clones the optional source repository, runs the optional
// build command and hands ownership to the web server user.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
)

// Preparer creates document roots through the executor, so that the
// same sudo and timeout settings apply as for every other command.
type Preparer struct {
	exec    executor.CommandExecutor
	wwwRoot string
	webUser string
}

// New creates a Preparer. An empty webUser skips the ownership change.
func New(exec executor.CommandExecutor, wwwRoot, webUser string) *Preparer {
	return &Preparer{exec: exec, wwwRoot: wwwRoot, webUser: webUser}
}

// FromConfig creates a Preparer from the application configuration.
func FromConfig(cfg *config.Config, exec executor.CommandExecutor) *Preparer {
	return New(exec, cfg.WWWRoot, cfg.WebUser)
}

// Prepare readies the document root for def and returns its path.
//
// A repository is cloned only into an empty directory; an existing
// checkout is updated with a fast-forward pull instead. Anything else in
// the way is an error, never deleted.
func (p *Preparer) Prepare(ctx context.Context, def *config.SiteDefinition) (string, error) {
	root := def.DocumentRoot(p.wwwRoot)
	name := def.Domain

	if err := p.run(ctx, name, executor.New("mkdir", "-p", root)); err != nil {
		return "", err
	}

	if def.SourceRepo != "" {
		if err := p.fetch(ctx, name, root, def.SourceRepo); err != nil {
			return "", err
		}
	}

	if def.BuildCommand != "" {
		if err := p.build(ctx, name, root, def.BuildCommand); err != nil {
			return "", err
		}
	}

	if p.webUser != "" {
		owner := p.webUser + ":" + p.webUser
		if err := p.run(ctx, name, executor.New("chown", "-R", owner, root)); err != nil {
			return "", err
		}
	}

	return root, nil
}

func (p *Preparer) fetch(ctx context.Context, name, root, repo string) error {
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		logger.Info("updating existing checkout in %s", root)
		return p.run(ctx, name, gitCommand("pull", "--ff-only").InDir(root))
	}

	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return siteerrors.WrapName(siteerrors.ErrCodeWorkspace, name, "failed to read document root", err)
	}
	if len(entries) > 0 {
		return siteerrors.WrapName(siteerrors.ErrCodeWorkspace, name,
			fmt.Sprintf("document root %s is not empty, refusing to clone into it", root), nil)
	}

	return p.run(ctx, name, gitCommand("clone", "--depth", "1", "--", repo, ".").InDir(root))
}

func gitCommand(args ...string) executor.Command {
	return executor.New("git", args...).WithEnv("GIT_TERMINAL_PROMPT=0")
}

// build runs the build command in root. Steps may be chained with &&;
// other shell operators are rejected since nothing runs through a shell.
func (p *Preparer) build(ctx context.Context, name, root, line string) error {
	steps, err := SplitCommand(line)
	if err != nil {
		return siteerrors.WrapName(siteerrors.ErrCodeWorkspace, name, "invalid build command", err)
	}
	for _, step := range steps {
		if err := p.run(ctx, name, step.InDir(root)); err != nil {
			return err
		}
	}
	return nil
}

// SplitCommand splits a command line into commands joined by &&. Leading
// NAME=value words become environment entries of their command.
func SplitCommand(line string) ([]executor.Command, error) {
	var cmds []executor.Command
	rest := []rune(line)

	for {
		parser := shellwords.NewParser()
		envs, args, err := parser.ParseWithEnvs(string(rest))
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("empty command in %q", line)
		}
		cmds = append(cmds, executor.New(args[0], args[1:]...).WithEnv(envs...))

		if parser.Position < 0 {
			return cmds, nil
		}
		op := string(rest[parser.Position:])
		if !strings.HasPrefix(op, "&&") {
			return nil, fmt.Errorf("unsupported shell operator at %q", op)
		}
		rest = rest[parser.Position+2:]
	}
}

func (p *Preparer) run(ctx context.Context, name string, cmd executor.Command) error {
	logger.Debug("running %s", cmd)
	output, err := p.exec.Execute(ctx, cmd)
	if err != nil {
		return siteerrors.WrapName(siteerrors.ErrCodeWorkspace, name, cmd.Name+" failed",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))))
	}
	return nil
}
