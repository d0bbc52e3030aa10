package config

import (
	"strings"
	"testing"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
)

func validProxy() *SiteDefinition {
	return &SiteDefinition{
		Domain:   "app.example.com",
		Location: "app",
		Kind:     KindProxy,
		Port:     3000,
		Server:   FamilyNginx,
	}
}

func TestSiteDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *SiteDefinition)
		wantErr string
	}{
		{"valid proxy", func(d *SiteDefinition) {}, ""},
		{"valid static", func(d *SiteDefinition) { d.Kind = KindStatic; d.Port = 0 }, ""},
		{"valid ssh repo", func(d *SiteDefinition) { d.SourceRepo = "git@github.com:acme/app.git" }, ""},
		{"valid https repo", func(d *SiteDefinition) { d.SourceRepo = "https://github.com/acme/app.git" }, ""},
		{"nested location", func(d *SiteDefinition) { d.Location = "clients/app" }, ""},
		{"location with config syntax", func(d *SiteDefinition) { d.Location = "app; include x" }, "relative path"},
		{"empty domain", func(d *SiteDefinition) { d.Domain = "" }, "domain is required"},
		{"bad domain", func(d *SiteDefinition) { d.Domain = "app example.com" }, "not a valid host name"},
		{"empty location", func(d *SiteDefinition) { d.Location = "" }, "location is required"},
		{"absolute location", func(d *SiteDefinition) { d.Location = "/etc" }, "relative path"},
		{"escaping location", func(d *SiteDefinition) { d.Location = "app/../../etc" }, "relative path"},
		{"missing port", func(d *SiteDefinition) { d.Port = 0 }, "port is required for proxy sites"},
		{"port too large", func(d *SiteDefinition) { d.Port = 70000 }, "port must be at most 65535"},
		{"unknown kind", func(d *SiteDefinition) { d.Kind = "node" }, "kind must be one of"},
		{"unknown server", func(d *SiteDefinition) { d.Server = "caddy" }, "server must be one of"},
		{"option as repo", func(d *SiteDefinition) { d.SourceRepo = "--upload-pack=touch /tmp/x" }, "not a valid repository URL"},
		{"cert without key", func(d *SiteDefinition) { d.TLSCert = "/etc/cert.pem" }, "tls_key is required"},
		{"unknown runtime", func(d *SiteDefinition) { d.Runtime = "ruby" }, "runtime must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validProxy()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !siteerrors.Is(err, siteerrors.ErrInvalidDefinition) {
				t.Errorf("expected InvalidDefinition, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSiteDefinition_Nil(t *testing.T) {
	var d *SiteDefinition
	if !siteerrors.Is(d.Validate(), siteerrors.ErrInvalidDefinition) {
		t.Error("expected InvalidDefinition for nil definition")
	}
}

func TestSiteDefinition_Helpers(t *testing.T) {
	d := validProxy()
	if got := d.DocumentRoot("/var/www"); got != "/var/www/app" {
		t.Errorf("DocumentRoot = %s", got)
	}
	d.Location = "clients/app/"
	if got := d.DocumentRoot("/var/www"); got != "/var/www/clients/app" {
		t.Errorf("DocumentRoot = %s", got)
	}

	if d.UsesPHP() {
		t.Error("proxy sites never use PHP")
	}
	d.Kind = KindStatic
	if !d.UsesPHP() {
		t.Error("static sites default to PHP")
	}
	d.Runtime = RuntimeNone
	if d.UsesPHP() {
		t.Error("runtime none disables PHP")
	}

	if d.HasCertificate() {
		t.Error("no certificate expected")
	}
	d.TLSCert, d.TLSKey = "/c", "/k"
	if !d.HasCertificate() {
		t.Error("certificate expected")
	}
}
