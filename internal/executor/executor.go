// Package executor runs external commands for the rest of sitectl.
//
// Commands are always described as an argument vector (Command) and are
// never passed through a shell, so user-supplied values such as domain
// names or file names cannot be interpreted as shell syntax.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single command when no timeout is configured.
const DefaultTimeout = 120 * time.Second

// Command is a typed external command.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory, empty for the current one
	Env  []string // extra KEY=VALUE pairs appended to the process environment
}

// New builds a command from a program name and its arguments.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// FromArgv builds a command from a configured argument vector, appending
// extra arguments. It fails on an empty vector.
func FromArgv(argv []string, extra ...string) (Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Command{}, errors.New("empty command")
	}
	args := make([]string, 0, len(argv)-1+len(extra))
	args = append(args, argv[1:]...)
	args = append(args, extra...)
	return Command{Name: argv[0], Args: args}, nil
}

// InDir returns a copy of the command that runs in dir.
func (c Command) InDir(dir string) Command {
	c.Dir = dir
	return c
}

// WithEnv returns a copy of the command with extra environment entries.
func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string{}, c.Env...), env...)
	return c
}

// String renders the command for logs, quoting arguments that need it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'\\$`") {
		return strconv.Quote(s)
	}
	return s
}

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Execute runs the command and returns its combined stdout and stderr.
	// A non-zero exit status or a timeout is reported as an error.
	Execute(ctx context.Context, cmd Command) ([]byte, error)

	// LookPath searches for an executable in the directories named by the PATH
	LookPath(file string) (string, error)
}

// SystemExecutor implements CommandExecutor using os/exec
type SystemExecutor struct {
	Timeout time.Duration
	Sudo    bool // prefix every command with sudo -n
}

// NewSystemExecutor creates a SystemExecutor with the default timeout
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{Timeout: DefaultTimeout}
}

// Execute runs a command and returns combined output
func (e *SystemExecutor) Execute(ctx context.Context, c Command) ([]byte, error) {
	if c.Name == "" {
		return nil, errors.New("empty command")
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := c.Name, c.Args
	if e.Sudo {
		args = append([]string{"-n", name}, args...)
		name = "sudo"
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%s: timed out after %s", c.Name, timeout)
	}
	return out, err
}

// LookPath searches for an executable
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	ExecuteFunc  func(cmd Command) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []Command
}

// Execute records the call and invokes the mock function
func (m *MockExecutor) Execute(ctx context.Context, cmd Command) ([]byte, error) {
	m.Calls = append(m.Calls, cmd)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(cmd)
	}
	return []byte(""), nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// Called reports whether a command with the given name was executed.
func (m *MockExecutor) Called(name string) bool {
	for _, c := range m.Calls {
		if c.Name == name {
			return true
		}
	}
	return false
}
