package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
)

// SiteKind selects how a site answers requests.
type SiteKind string

// Site kinds
const (
	KindStatic SiteKind = "static"
	KindProxy  SiteKind = "proxy"
)

// Script runtimes for static sites.
const (
	RuntimePHP  = "php"
	RuntimeNone = "none"
)

// SiteDefinition is the desired state of one site.
type SiteDefinition struct {
	Domain       string   `yaml:"domain" json:"domain" validate:"required,hostname_rfc1123"`
	Location     string   `yaml:"location" json:"location" validate:"required,sitepath"`
	Kind         SiteKind `yaml:"kind" json:"kind" validate:"required,oneof=static proxy"`
	Port         int      `yaml:"port,omitempty" json:"port,omitempty" validate:"required_if=Kind proxy,omitempty,min=1,max=65535"`
	SourceRepo   string   `yaml:"source_repo,omitempty" json:"source_repo,omitempty" validate:"omitempty,repo"`
	BuildCommand string   `yaml:"build_command,omitempty" json:"build_command,omitempty"`
	TLS          bool     `yaml:"tls,omitempty" json:"tls,omitempty"`
	Server       Family   `yaml:"server" json:"server" validate:"required,oneof=nginx apache"`

	Runtime    string   `yaml:"runtime,omitempty" json:"runtime,omitempty" validate:"omitempty,oneof=php none"`
	Directives []string `yaml:"directives,omitempty" json:"directives,omitempty"`
	TLSCert    string   `yaml:"tls_cert,omitempty" json:"tls_cert,omitempty" validate:"required_with=TLSKey"`
	TLSKey     string   `yaml:"tls_key,omitempty" json:"tls_key,omitempty" validate:"required_with=TLSCert"`
}

// Validate checks the definition. Any violation is an InvalidDefinition
// error naming the first offending field.
func (d *SiteDefinition) Validate() error {
	if d == nil {
		return siteerrors.InvalidDefinition("site definition is required")
	}
	if err := validate.Struct(d); err != nil {
		return siteerrors.InvalidDefinition(describe(err))
	}
	return nil
}

// DocumentRoot returns the directory the site serves from.
func (d *SiteDefinition) DocumentRoot(wwwRoot string) string {
	return path.Join(wwwRoot, path.Clean(d.Location))
}

// UsesPHP reports whether a static site gets a PHP-FPM handler.
func (d *SiteDefinition) UsesPHP() bool {
	return d.Kind == KindStatic && d.Runtime != RuntimeNone
}

// HasCertificate reports whether certificate paths are set.
func (d *SiteDefinition) HasCertificate() bool {
	return d.TLSCert != "" && d.TLSKey != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("sitepath", isSitePath); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("repo", isRepo); err != nil {
		panic(err)
	}
	return v
}

// isSitePath accepts relative paths that stay below their base directory.
func isSitePath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if !pathChars.MatchString(p) || strings.HasPrefix(p, "/") {
		return false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return false
		}
	}
	return path.Clean(p) != "."
}

var pathChars = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)

var scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[A-Za-z0-9._~/-]+$`)

// isRepo accepts URLs with a scheme and scp-like git addresses. Values
// starting with '-' would be read as git options and are refused.
func isRepo(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.HasPrefix(s, "-") {
		return false
	}
	if scpLike.MatchString(s) {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Scheme == "file")
}

// describe turns validator errors into a single readable message.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required for proxy sites"
	case "required_with":
		return fmt.Sprintf("%s is required with %s", field, strings.ToLower(fe.Param()))
	case "hostname_rfc1123":
		return fmt.Sprintf("%s %q is not a valid host name", field, fe.Value())
	case "sitepath":
		return fmt.Sprintf("%s %q must be a relative path of letters, digits, '.', '_', '-' and '/' without '..'", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "repo":
		return fmt.Sprintf("%s %q is not a valid repository URL", field, fe.Value())
	case "email":
		return fmt.Sprintf("%s %q is not a valid email address", field, fe.Value())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
