package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
)

func commands(m *executor.MockExecutor) []string {
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.String())
	}
	return out
}

func TestPrepare(t *testing.T) {
	ctx := context.Background()

	t.Run("document root only", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		p := New(mock, "/var/www", "www-data")
		root, err := p.Prepare(ctx, &config.SiteDefinition{Domain: "a.example.com", Location: "a"})
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		if root != "/var/www/a" {
			t.Errorf("unexpected root %s", root)
		}
		want := []string{"mkdir -p /var/www/a", "chown -R www-data:www-data /var/www/a"}
		if strings.Join(commands(mock), "\n") != strings.Join(want, "\n") {
			t.Errorf("unexpected commands %v", commands(mock))
		}
	})

	t.Run("clone and build", func(t *testing.T) {
		wwwRoot := t.TempDir()
		mock := &executor.MockExecutor{}
		p := New(mock, wwwRoot, "")
		_, err := p.Prepare(ctx, &config.SiteDefinition{
			Domain:       "a.example.com",
			Location:     "a",
			SourceRepo:   "https://github.com/acme/a.git",
			BuildCommand: "NODE_ENV=production npm ci && npm run build",
		})
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}

		root := filepath.Join(wwwRoot, "a")
		cmds := commands(mock)
		want := []string{
			"mkdir -p " + root,
			"git clone --depth 1 -- https://github.com/acme/a.git .",
			"npm ci",
			"npm run build",
		}
		if strings.Join(cmds, "\n") != strings.Join(want, "\n") {
			t.Fatalf("unexpected commands:\n%s", strings.Join(cmds, "\n"))
		}

		clone := mock.Calls[1]
		if clone.Dir != root || len(clone.Env) != 1 || clone.Env[0] != "GIT_TERMINAL_PROMPT=0" {
			t.Errorf("unexpected clone command %+v", clone)
		}
		if mock.Calls[2].Dir != root || len(mock.Calls[2].Env) != 1 || mock.Calls[2].Env[0] != "NODE_ENV=production" {
			t.Errorf("unexpected build command %+v", mock.Calls[2])
		}
	})

	t.Run("refuses non-empty directory", func(t *testing.T) {
		wwwRoot := t.TempDir()
		root := filepath.Join(wwwRoot, "a")
		if err := os.MkdirAll(root, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("keep me"), 0644); err != nil {
			t.Fatal(err)
		}

		mock := &executor.MockExecutor{}
		_, err := New(mock, wwwRoot, "").Prepare(ctx, &config.SiteDefinition{
			Domain: "a.example.com", Location: "a", SourceRepo: "https://github.com/acme/a.git",
		})
		if !siteerrors.Is(err, siteerrors.ErrWorkspace) {
			t.Fatalf("expected workspace error, got %v", err)
		}
		if mock.Called("git") {
			t.Error("git must not run against a non-empty directory")
		}
		if data, _ := os.ReadFile(filepath.Join(root, "index.html")); string(data) != "keep me" {
			t.Error("existing content was modified")
		}
	})

	t.Run("pulls existing checkout", func(t *testing.T) {
		wwwRoot := t.TempDir()
		if err := os.MkdirAll(filepath.Join(wwwRoot, "a", ".git"), 0755); err != nil {
			t.Fatal(err)
		}
		mock := &executor.MockExecutor{}
		_, err := New(mock, wwwRoot, "").Prepare(ctx, &config.SiteDefinition{
			Domain: "a.example.com", Location: "a", SourceRepo: "https://github.com/acme/a.git",
		})
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		if got := mock.Calls[1].String(); got != "git pull --ff-only" {
			t.Errorf("expected pull, got %s", got)
		}
	})

	t.Run("command failure", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(cmd executor.Command) ([]byte, error) {
				if cmd.Name == "npm" {
					return []byte("npm ERR! missing script: build"), errors.New("exit status 1")
				}
				return nil, nil
			},
		}
		_, err := New(mock, t.TempDir(), "www-data").Prepare(ctx, &config.SiteDefinition{
			Domain: "a.example.com", Location: "a", BuildCommand: "npm run build",
		})
		if !siteerrors.Is(err, siteerrors.ErrWorkspace) {
			t.Fatalf("expected workspace error, got %v", err)
		}
		if !strings.Contains(err.Error(), "missing script") {
			t.Errorf("expected command output in error, got %v", err)
		}
		if mock.Called("chown") {
			t.Error("chown should not run after a failed build")
		}
	})
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "composer install --no-dev", want: []string{"composer install --no-dev"}},
		{line: "npm ci && npm run build", want: []string{"npm ci", "npm run build"}},
		{line: `sh -c "echo a; echo b"`, want: []string{`sh -c "echo a; echo b"`}},
		{line: "make; rm -rf /", wantErr: true},
		{line: "make | tee log", wantErr: true},
		{line: "make &&", wantErr: true},
		{line: `echo "unterminated`, wantErr: true},
		{line: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmds, err := SplitCommand(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitCommand(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := make([]string, 0, len(cmds))
			for _, c := range cmds {
				got = append(got, c.String())
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("SplitCommand(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.New()
	p := FromConfig(cfg, &executor.MockExecutor{})
	if p.wwwRoot != "/var/www" || p.webUser != "www-data" {
		t.Errorf("unexpected preparer %+v", p)
	}
}
