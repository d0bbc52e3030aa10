// Package template renders web server virtual-host files from embedded Go
// templates.
//
// Templates are organized by server family and site kind:
//
//	nginx/static.tmpl
//	nginx/proxy.tmpl
//	nginx/common.tmpl   shared blocks (ACME challenge, TLS, redirect, extra directives)
//	apache/ (same structure)
//
// Rendering is pure: the same definition and options always produce the
// same text, and nothing is written anywhere.
//
//	r := template.FromConfig(cfg)
//	content, err := r.Render(&config.SiteDefinition{
//	    Domain:   "app.example.com",
//	    Location: "app",
//	    Kind:     config.KindProxy,
//	    Port:     3000,
//	    Server:   config.FamilyNginx,
//	})
//
// When TLSCert and TLSKey are set, the output carries an HTTPS block plus
// a plain HTTP block that redirects everything except ACME challenges.
package template
