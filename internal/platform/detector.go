// Package platform inspects the host for installed web server layouts.
package platform

import (
	"os"
	"path/filepath"

	"github.com/ksyq12/sitectl/internal/config"
)

// Installed returns the families whose configuration directory (the parent
// of the available directory, e.g. /etc/nginx) exists, in the order of
// config.Families.
func Installed(cfg *config.Config) []config.Family {
	var found []config.Family
	for _, f := range config.Families() {
		srv, err := cfg.Server(f)
		if err != nil {
			continue
		}
		if pathExists(filepath.Dir(filepath.Clean(srv.Available))) {
			found = append(found, f)
		}
	}
	return found
}

// PreferredServer returns the configured default server if it is
// installed, else the first installed family, else the configured default.
func PreferredServer(cfg *config.Config) config.Family {
	installed := Installed(cfg)
	for _, f := range installed {
		if f == cfg.DefaultServer {
			return f
		}
	}
	if len(installed) > 0 {
		return installed[0]
	}
	return cfg.DefaultServer
}

// pathExists checks if a path exists.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
