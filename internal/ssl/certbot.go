package ssl

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
)

// Cert represents an SSL certificate
type Cert struct {
	Domain   string
	CertPath string
	KeyPath  string
}

// Provisioner issues certificates for domains served from a webroot.
type Provisioner interface {
	Name() string
	Issue(ctx context.Context, domain string) (*Cert, error)
}

// FromConfig returns the provisioner selected in the configuration.
func FromConfig(cfg *config.Config, exec executor.CommandExecutor) (Provisioner, error) {
	switch cfg.TLS.Provider {
	case "", "certbot":
		return NewCertbot(exec, cfg.TLS.Webroot, cfg.TLS.Email, cfg.TLS.Staging), nil
	case "acme":
		return NewACME(cfg.TLS.Email, cfg.TLS.Webroot, cfg.TLS.CertDir, cfg.TLS.Staging), nil
	}
	return nil, siteerrors.Wrap(siteerrors.ErrCodeConfig, fmt.Sprintf("unknown TLS provider %q", cfg.TLS.Provider), nil)
}

// letsencryptDir is the base directory for Let's Encrypt certificates
const letsencryptDir = "/etc/letsencrypt/live"

// CertbotProvisioner runs certbot in webroot mode.
type CertbotProvisioner struct {
	exec    executor.CommandExecutor
	webroot string
	email   string
	staging bool
}

// NewCertbot creates a certbot provisioner.
func NewCertbot(exec executor.CommandExecutor, webroot, email string, staging bool) *CertbotProvisioner {
	return &CertbotProvisioner{exec: exec, webroot: webroot, email: email, staging: staging}
}

// Name returns the provisioner name
func (c *CertbotProvisioner) Name() string { return "certbot" }

// IsInstalled checks if certbot is installed
func (c *CertbotProvisioner) IsInstalled() bool {
	_, err := c.exec.LookPath("certbot")
	return err == nil
}

// GetCertPaths returns the certificate paths for a domain
func GetCertPaths(domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(letsencryptDir, domain, "fullchain.pem"),
		KeyPath:  filepath.Join(letsencryptDir, domain, "privkey.pem"),
	}
}

// Issue obtains a certificate using certbot webroot mode. The webroot
// must already be served at /.well-known/acme-challenge/ for domain.
func (c *CertbotProvisioner) Issue(ctx context.Context, domain string) (*Cert, error) {
	if !c.IsInstalled() {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "certbot is not installed. Install it with: apt install certbot", nil)
	}
	if c.webroot == "" {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "no ACME webroot configured", nil)
	}

	if out, err := c.exec.Execute(ctx, executor.New("mkdir", "-p", c.webroot)); err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to create webroot",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))))
	}

	args := []string{
		"certonly",
		"--webroot",
		"-w", c.webroot,
		"-d", domain,
		"--cert-name", domain,
		"--agree-tos",
		"--non-interactive",
		"--keep-until-expiring",
	}
	if c.email != "" {
		args = append(args, "--email", c.email)
	} else {
		args = append(args, "--register-unsafely-without-email")
	}
	if c.staging {
		args = append(args, "--staging")
	}

	cmd := executor.New("certbot", args...)
	logger.Debug("running %s", cmd)
	output, err := c.exec.Execute(ctx, cmd)
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "certbot failed",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))))
	}

	return GetCertPaths(domain), nil
}
