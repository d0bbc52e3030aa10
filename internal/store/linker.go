package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
)

// Linker manages the enabled marker of a site file.
type Linker interface {
	// Link marks name as enabled. Linking an enabled name is a no-op.
	Link(ctx context.Context, name string) error

	// Unlink removes the enabled marker. Unlinking a disabled name is a no-op.
	Unlink(ctx context.Context, name string) error

	// IsLinked reports whether name carries an enabled marker.
	IsLinked(ctx context.Context, name string) (bool, error)
}

// SymlinkLinker marks sites enabled with a symlink from the enabled
// directory into the available directory.
type SymlinkLinker struct {
	Available string
	Enabled   string
}

// Link creates the symlink if it is missing.
func (l *SymlinkLinker) Link(ctx context.Context, name string) error {
	source := filepath.Join(l.Available, name)
	target := filepath.Join(l.Enabled, name)

	if _, err := os.Lstat(target); err == nil {
		return nil
	}
	if err := os.MkdirAll(l.Enabled, 0755); err != nil {
		return fmt.Errorf("failed to create enabled directory: %w", err)
	}
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("failed to link %s: %w", name, err)
	}
	return nil
}

// Unlink removes the symlink. A regular file in its place is left alone.
func (l *SymlinkLinker) Unlink(ctx context.Context, name string) error {
	target := filepath.Join(l.Enabled, name)

	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check link state: %w", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("%s is not a symlink, refusing to remove", target)
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to unlink %s: %w", name, err)
	}
	return nil
}

// IsLinked reports whether the enabled entry exists.
func (l *SymlinkLinker) IsLinked(ctx context.Context, name string) (bool, error) {
	_, err := os.Lstat(filepath.Join(l.Enabled, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check link state: %w", err)
	}
	return true, nil
}

// CommandLinker enables and disables sites with external commands keyed
// by file name, such as a2ensite and a2dissite.
type CommandLinker struct {
	Exec       executor.CommandExecutor
	EnableCmd  []string
	DisableCmd []string

	// QueryCmd is run with the name minus Suffix and succeeds for enabled
	// sites. When empty, the entry in Enabled is checked instead.
	QueryCmd []string
	Suffix   string
	Enabled  string
}

// Link runs the enable command.
func (l *CommandLinker) Link(ctx context.Context, name string) error {
	return l.run(ctx, l.EnableCmd, name)
}

// Unlink runs the disable command.
func (l *CommandLinker) Unlink(ctx context.Context, name string) error {
	return l.run(ctx, l.DisableCmd, name)
}

// IsLinked runs the query command. Only the command's own "not enabled"
// answer (exit status 32, "No site matches") means false; any other
// failure is returned so that callers never mistake an enabled site for a
// disabled one.
func (l *CommandLinker) IsLinked(ctx context.Context, name string) (bool, error) {
	if len(l.QueryCmd) == 0 {
		_, err := os.Lstat(filepath.Join(l.Enabled, name))
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to check link state: %w", err)
		}
		return true, nil
	}

	cmd, err := executor.FromArgv(l.QueryCmd, strings.TrimSuffix(name, l.Suffix))
	if err != nil {
		return false, err
	}
	out, err := l.Exec.Execute(ctx, cmd)
	if err == nil {
		return true, nil
	}
	if notEnabled(out, err) {
		logger.Debug("%s: not enabled", cmd)
		return false, nil
	}
	return false, fmt.Errorf("%s failed: %w: %s", cmd, err, strings.TrimSpace(string(out)))
}

// notEnabledStatus is the exit status a2query uses for a site that is not
// enabled.
const notEnabledStatus = 32

func notEnabled(out []byte, err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == notEnabledStatus {
		return true
	}
	return strings.Contains(string(out), "No site matches")
}

func (l *CommandLinker) run(ctx context.Context, argv []string, name string) error {
	cmd, err := executor.FromArgv(argv, name)
	if err != nil {
		return err
	}
	logger.Debug("running %s", cmd)
	if out, err := l.Exec.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("%s failed: %w: %s", cmd, err, strings.TrimSpace(string(out)))
	}
	return nil
}
