package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/sitectl/internal/config"
)

func TestRunConfigInit(t *testing.T) {
	t.Run("writes defaults", func(t *testing.T) {
		loader := &MockConfigLoader{}
		buf := setupTest(t, NewMockDeps().WithConfigLoader(loader).Build())
		configPath = filepath.Join(t.TempDir(), "config.yaml")

		if err := runConfigInit(configInitCmd, nil); err != nil {
			t.Fatalf("runConfigInit failed: %v", err)
		}
		if loader.SaveCalls != 1 || loader.SavedPath != configPath {
			t.Errorf("expected one save to %s, got %d to %s", configPath, loader.SaveCalls, loader.SavedPath)
		}
		if loader.Cfg.WWWRoot != "/var/www" {
			t.Errorf("expected defaults, got %+v", loader.Cfg)
		}
		if !strings.Contains(buf.String(), configPath) {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		loader := &MockConfigLoader{}
		setupTest(t, NewMockDeps().WithConfigLoader(loader).Build())
		configPath = filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("www_root: /srv\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := runConfigInit(configInitCmd, nil); err == nil {
			t.Error("expected error")
		}
		if loader.SaveCalls != 0 {
			t.Error("config should not be saved")
		}

		forceInit = true
		if err := runConfigInit(configInitCmd, nil); err != nil {
			t.Fatalf("runConfigInit with --force failed: %v", err)
		}
	})
}

func TestRunConfigShow(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		cfg := config.New()
		cfg.WWWRoot = "/srv/www"
		buf := setupTest(t, NewMockDeps().WithConfig(cfg).Build())

		if err := runConfigShow(configShowCmd, nil); err != nil {
			t.Fatalf("runConfigShow failed: %v", err)
		}
		if !strings.Contains(buf.String(), "www_root: /srv/www") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("load error", func(t *testing.T) {
		setupTest(t, NewMockDeps().WithConfigLoader(&MockConfigLoader{LoadErr: errors.New("bad yaml")}).Build())
		err := runConfigShow(configShowCmd, nil)
		if err == nil || !strings.Contains(err.Error(), "bad yaml") {
			t.Errorf("expected load error, got %v", err)
		}
	})
}
