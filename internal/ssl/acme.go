package ssl

import (
	"context"
	"crypto"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/http/webroot"
	"github.com/go-acme/lego/v4/registration"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/logger"
)

// acmeUser is the ACME account lego acts for.
type acmeUser struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *acmeUser) GetEmail() string                        { return u.email }
func (u *acmeUser) GetRegistration() *registration.Resource { return u.registration }
func (u *acmeUser) GetPrivateKey() crypto.PrivateKey        { return u.key }

// ACMEProvisioner obtains certificates in-process with lego, answering
// HTTP-01 challenges from the webroot.
type ACMEProvisioner struct {
	email    string
	webroot  string
	certDir  string
	caDirURL string
}

// NewACME creates an ACME provisioner writing to certDir. Staging selects
// the Let's Encrypt staging directory.
func NewACME(email, webroot, certDir string, staging bool) *ACMEProvisioner {
	ca := lego.LEDirectoryProduction
	if staging {
		ca = lego.LEDirectoryStaging
	}
	return &ACMEProvisioner{email: email, webroot: webroot, certDir: certDir, caDirURL: ca}
}

// Name returns the provisioner name
func (a *ACMEProvisioner) Name() string { return "acme" }

// CertPaths returns where the certificate for domain is written.
func (a *ACMEProvisioner) CertPaths(domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(a.certDir, domain, "fullchain.pem"),
		KeyPath:  filepath.Join(a.certDir, domain, "privkey.pem"),
	}
}

// Issue registers (or re-registers) the account and obtains a bundled
// certificate for domain.
func (a *ACMEProvisioner) Issue(ctx context.Context, domain string) (*Cert, error) {
	if a.webroot == "" {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "no ACME webroot configured", nil)
	}

	key, err := a.accountKey()
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to load account key", err)
	}
	user := &acmeUser{email: a.email, key: key}

	cfg := lego.NewConfig(user)
	cfg.CADirURL = a.caDirURL
	cfg.Certificate.KeyType = certcrypto.EC256

	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to create ACME client", err)
	}

	provider, err := webroot.NewHTTPProvider(a.webroot)
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to set up webroot", err)
	}
	if err := client.Challenge.SetHTTP01Provider(provider); err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to set HTTP-01 provider", err)
	}

	reg, err := client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to register ACME account", err)
	}
	user.registration = reg

	if err := ctx.Err(); err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "cancelled", err)
	}

	logger.Info("requesting certificate for %s from %s", domain, a.caDirURL)
	res, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{domain},
		Bundle:  true,
	})
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to obtain certificate", err)
	}

	cert, err := a.install(domain, res.Certificate, res.PrivateKey)
	if err != nil {
		return nil, siteerrors.WrapName(siteerrors.ErrCodeTLS, domain, "failed to install certificate", err)
	}
	return cert, nil
}

// accountKey loads the account key from certDir, generating it on first
// use.
func (a *ACMEProvisioner) accountKey() (crypto.PrivateKey, error) {
	path := filepath.Join(a.certDir, "account.key")

	data, err := os.ReadFile(path)
	if err == nil {
		return certcrypto.ParsePEMPrivateKey(data)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}
	if err := os.MkdirAll(a.certDir, 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, certcrypto.PEMEncode(key), 0600); err != nil {
		return nil, err
	}
	return key, nil
}

func (a *ACMEProvisioner) install(domain string, certPEM, keyPEM []byte) (*Cert, error) {
	cert := a.CertPaths(domain)
	if err := os.MkdirAll(filepath.Dir(cert.CertPath), 0755); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(cert.KeyPath, keyPEM, 0600); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(cert.CertPath, certPEM, 0644); err != nil {
		return nil, err
	}
	return cert, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
