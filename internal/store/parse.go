package store

import (
	"regexp"
	"strings"

	"github.com/ksyq12/sitectl/internal/config"
)

// SiteRecord is the on-disk view of one site file. Everything except
// Name, Server, Enabled and Path is parsed back out of the file text.
type SiteRecord struct {
	Name       string          `json:"name"`
	Server     config.Family   `json:"server"`
	Enabled    bool            `json:"enabled"`
	ServerName string          `json:"server_name,omitempty"`
	Root       string          `json:"root,omitempty"`
	Proxy      string          `json:"proxy,omitempty"`
	Kind       config.SiteKind `json:"type"`
	TLS        bool            `json:"tls"`
	Path       string          `json:"path"`
}

type parseRules struct {
	serverName *regexp.Regexp
	root       *regexp.Regexp
	proxy      *regexp.Regexp
	tls        *regexp.Regexp
}

var rules = map[config.Family]parseRules{
	config.FamilyNginx: {
		serverName: regexp.MustCompile(`(?m)^\s*server_name\s+([^;]+);`),
		root:       regexp.MustCompile(`(?m)^\s*root\s+([^;]+);`),
		proxy:      regexp.MustCompile(`(?m)^\s*proxy_pass\s+([^;]+);`),
		tls:        regexp.MustCompile(`(?m)^\s*ssl_certificate\s`),
	},
	config.FamilyApache: {
		serverName: regexp.MustCompile(`(?mi)^\s*ServerName\s+(\S+)`),
		root:       regexp.MustCompile(`(?mi)^\s*DocumentRoot\s+(\S+)`),
		proxy:      regexp.MustCompile(`(?mi)^\s*ProxyPass\s+/\s+(\S+)`),
		tls:        regexp.MustCompile(`(?mi)^\s*SSLCertificateFile\s`),
	},
}

// Parse fills the derived fields of a record from file content. Missing
// fields stay empty.
func Parse(family config.Family, content string) SiteRecord {
	rec := SiteRecord{Server: family, Kind: config.KindStatic}
	r, ok := rules[family]
	if !ok {
		return rec
	}

	rec.ServerName = firstMatch(r.serverName, content)
	rec.Root = strings.Trim(firstMatch(r.root, content), `"`)
	rec.Proxy = firstMatch(r.proxy, content)
	rec.TLS = r.tls.MatchString(content)
	if rec.Proxy != "" {
		rec.Kind = config.KindProxy
	}
	return rec
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
