package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSystemExecutor_Execute(t *testing.T) {
	exec := NewSystemExecutor()
	ctx := context.Background()

	t.Run("echo command", func(t *testing.T) {
		output, err := exec.Execute(ctx, New("echo", "hello"))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if string(output) != "hello\n" {
			t.Errorf("expected 'hello\\n', got '%s'", string(output))
		}
	})

	t.Run("arguments are not shell-expanded", func(t *testing.T) {
		output, err := exec.Execute(ctx, New("echo", "$HOME;", "rm", "-rf"))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if string(output) != "$HOME; rm -rf\n" {
			t.Errorf("unexpected output %q", string(output))
		}
	})

	t.Run("stderr is merged", func(t *testing.T) {
		output, err := exec.Execute(ctx, New("sh", "-c", "echo oops >&2"))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !strings.Contains(string(output), "oops") {
			t.Errorf("expected stderr in output, got %q", string(output))
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		output, err := exec.Execute(ctx, New("sh", "-c", "echo test is successful; exit 1"))
		if err == nil {
			t.Fatal("expected error for non-zero exit")
		}
		if !strings.Contains(string(output), "successful") {
			t.Errorf("expected output to be returned, got %q", string(output))
		}
	})

	t.Run("working directory and env", func(t *testing.T) {
		dir := t.TempDir()
		output, err := exec.Execute(ctx, New("sh", "-c", "pwd; echo $SITECTL_TEST").InDir(dir).WithEnv("SITECTL_TEST=yes"))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !strings.Contains(string(output), dir) || !strings.Contains(string(output), "yes") {
			t.Errorf("unexpected output %q", string(output))
		}
	})

	t.Run("nonexistent command", func(t *testing.T) {
		_, err := exec.Execute(ctx, New("nonexistent-command-xyz-12345"))
		if err == nil {
			t.Error("expected error for nonexistent command")
		}
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := exec.Execute(ctx, Command{})
		if err == nil {
			t.Error("expected error for empty command")
		}
	})
}

func TestSystemExecutor_Timeout(t *testing.T) {
	exec := &SystemExecutor{Timeout: 100 * time.Millisecond}

	start := time.Now()
	_, err := exec.Execute(context.Background(), New("sleep", "5"))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("command was not killed on timeout")
	}
}

func TestSystemExecutor_LookPath(t *testing.T) {
	exec := NewSystemExecutor()

	t.Run("find sh", func(t *testing.T) {
		path, err := exec.LookPath("sh")
		if err != nil {
			t.Fatalf("LookPath failed: %v", err)
		}
		if path == "" {
			t.Error("expected non-empty path")
		}
	})

	t.Run("nonexistent command", func(t *testing.T) {
		_, err := exec.LookPath("nonexistent-command-xyz-12345")
		if err == nil {
			t.Error("expected error for nonexistent command")
		}
	})
}

func TestFromArgv(t *testing.T) {
	cmd, err := FromArgv([]string{"a2query", "-s"}, "example_com")
	if err != nil {
		t.Fatalf("FromArgv failed: %v", err)
	}
	if cmd.Name != "a2query" {
		t.Errorf("expected a2query, got %s", cmd.Name)
	}
	if strings.Join(cmd.Args, " ") != "-s example_com" {
		t.Errorf("unexpected args %v", cmd.Args)
	}

	if _, err := FromArgv(nil); err == nil {
		t.Error("expected error for empty argv")
	}
}

func TestCommand_String(t *testing.T) {
	cmd := New("git", "clone", "--depth", "1", "https://example.com/a b.git", ".")
	want := `git clone --depth 1 "https://example.com/a b.git" .`
	if cmd.String() != want {
		t.Errorf("expected %s, got %s", want, cmd.String())
	}
}

func TestMockExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("default behavior", func(t *testing.T) {
		mock := &MockExecutor{}
		output, err := mock.Execute(ctx, New("test", "arg1", "arg2"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if string(output) != "" {
			t.Errorf("expected empty output, got '%s'", string(output))
		}
		if len(mock.Calls) != 1 {
			t.Errorf("expected 1 call, got %d", len(mock.Calls))
		}
		if !mock.Called("test") {
			t.Errorf("expected command 'test' to be recorded")
		}
	})

	t.Run("error case", func(t *testing.T) {
		mock := &MockExecutor{
			ExecuteFunc: func(cmd Command) ([]byte, error) {
				return []byte("error output"), errors.New("mock error")
			},
		}
		output, err := mock.Execute(ctx, New("test"))
		if err == nil {
			t.Error("expected error")
		}
		if string(output) != "error output" {
			t.Errorf("expected 'error output', got '%s'", string(output))
		}
	})
}

func TestMockExecutor_LookPath(t *testing.T) {
	mock := &MockExecutor{}
	path, err := mock.LookPath("certbot")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if path != "/usr/bin/certbot" {
		t.Errorf("expected '/usr/bin/certbot', got '%s'", path)
	}
}
