package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
)

func TestCommandDriver_Validate(t *testing.T) {
	tests := []struct {
		name       string
		family     config.Family
		output     string
		execErr    error
		wantErr    bool
		wantDetail string
	}{
		{
			name:   "nginx ok",
			family: config.FamilyNginx,
			output: "nginx: the configuration file /etc/nginx/nginx.conf syntax is ok\nnginx: configuration file /etc/nginx/nginx.conf test is successful\n",
		},
		{
			name:   "apache ok with warning",
			family: config.FamilyApache,
			output: "AH00558: apache2: Could not reliably determine the server's fully qualified domain name\nSyntax OK\n",
		},
		{
			name:       "nginx rejected",
			family:     config.FamilyNginx,
			output:     "nginx: [emerg] unknown directive \"bogus_directive\" in /etc/nginx/sites-enabled/a:3\nnginx: configuration file /etc/nginx/nginx.conf test failed\n",
			execErr:    errors.New("exit status 1"),
			wantErr:    true,
			wantDetail: "unknown directive \"bogus_directive\"",
		},
		{
			name:       "exit zero without marker",
			family:     config.FamilyApache,
			output:     "something unexpected",
			wantErr:    true,
			wantDetail: "something unexpected",
		},
		{
			name:       "marker with non-zero exit",
			family:     config.FamilyNginx,
			output:     "test is successful",
			execErr:    errors.New("signal: killed"),
			wantErr:    true,
			wantDetail: "test is successful",
		},
	}

	cfg := config.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &executor.MockExecutor{
				ExecuteFunc: func(cmd executor.Command) ([]byte, error) {
					return []byte(tt.output), tt.execErr
				},
			}
			srv, _ := cfg.Server(tt.family)
			drv := New(tt.family, srv, mock)

			err := drv.Validate(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !siteerrors.Is(err, siteerrors.ErrSyntax) {
				t.Errorf("expected syntax error, got %v", err)
			}
			if !strings.Contains(siteerrors.DetailOf(err), tt.wantDetail) {
				t.Errorf("detail %q does not contain %q", siteerrors.DetailOf(err), tt.wantDetail)
			}
		})
	}
}

func TestCommandDriver_ValidateCommand(t *testing.T) {
	mock := &executor.MockExecutor{}
	NewApache(mock).Validate(context.Background())

	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(mock.Calls))
	}
	if got := mock.Calls[0].String(); got != "apache2ctl configtest" {
		t.Errorf("unexpected command %s", got)
	}
}

func TestCommandDriver_Reload(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		if err := NewNginx(mock).Reload(context.Background()); err != nil {
			t.Fatalf("Reload failed: %v", err)
		}
		if len(mock.Calls) != 1 || mock.Calls[0].Name != "systemctl" {
			t.Errorf("unexpected calls %v", mock.Calls)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(cmd executor.Command) ([]byte, error) {
				if cmd.Name == "systemctl" {
					return []byte("System has not been booted with systemd"), errors.New("exit status 1")
				}
				return nil, nil
			},
		}
		if err := NewNginx(mock).Reload(context.Background()); err != nil {
			t.Fatalf("Reload failed: %v", err)
		}
		if len(mock.Calls) != 2 || mock.Calls[1].String() != "nginx -s reload" {
			t.Errorf("expected fallback call, got %v", mock.Calls)
		}
	})

	t.Run("both fail", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(cmd executor.Command) ([]byte, error) {
				return []byte("apache2 is not running"), errors.New("exit status 1")
			},
		}
		err := NewApache(mock).Reload(context.Background())
		if !siteerrors.Is(err, siteerrors.ErrReload) {
			t.Fatalf("expected reload error, got %v", err)
		}
		if !strings.Contains(err.Error(), "apache2 is not running") {
			t.Errorf("expected command output in error, got %v", err)
		}
	})
}

func TestCommandDriver_Modules(t *testing.T) {
	t.Run("apache enables modules", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		drv := NewApache(mock)
		if err := drv.EnableProxy(context.Background()); err != nil {
			t.Fatal(err)
		}
		if err := drv.EnableTLS(context.Background()); err != nil {
			t.Fatal(err)
		}
		if got := mock.Calls[0].String(); got != "a2enmod -q proxy proxy_http headers" {
			t.Errorf("unexpected proxy command %s", got)
		}
		if got := mock.Calls[1].String(); got != "a2enmod -q ssl" {
			t.Errorf("unexpected tls command %s", got)
		}
	})

	t.Run("nginx has nothing to enable", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		drv := NewNginx(mock)
		if err := drv.EnableProxy(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(mock.Calls) != 0 {
			t.Errorf("expected no calls, got %v", mock.Calls)
		}
	})
}

func TestCommandDriver_Name(t *testing.T) {
	if NewNginx(&executor.MockExecutor{}).Name() != "nginx" {
		t.Error("expected nginx")
	}
	if NewApache(&executor.MockExecutor{}).Name() != "apache" {
		t.Error("expected apache")
	}
}

func TestMockDriver(t *testing.T) {
	m := NewMockDriver("nginx")
	m.ValidateFunc = func() error { return siteerrors.Syntax("", "bad", nil) }

	if err := m.Validate(context.Background()); err == nil {
		t.Error("expected error")
	}
	m.Reload(context.Background())
	if m.ValidateCalls != 1 || m.ReloadCalls != 1 {
		t.Errorf("unexpected call counts %d %d", m.ValidateCalls, m.ReloadCalls)
	}
	m.Reset()
	if m.ValidateCalls != 0 {
		t.Error("Reset did not clear calls")
	}
}

var _ Driver = (*CommandDriver)(nil)
var _ Driver = (*MockDriver)(nil)
