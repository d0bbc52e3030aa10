// Package config holds the sitectl application configuration and the
// SiteDefinition type describing a desired site.
//
// The configuration is a YAML file, by default /etc/sitectl/config.yaml
// (override with --config or SITECTL_CONFIG). Values are merged over
// Debian-style defaults. An optional sitectl.env file beside the config is
// loaded into the environment, after which SITECTL_* variables override
// the file.
//
// Example config.yaml:
//
//	default_server: nginx
//	www_root: /var/www
//	web_user: www-data
//	command_timeout: 120
//	nginx:
//	  available: /etc/nginx/sites-available
//	  enabled: /etc/nginx/sites-enabled
//	  validate_cmd: [nginx, -t]
//	  validate_marker: successful
//	  reload_cmd: [systemctl, reload, nginx]
//	apache:
//	  available: /etc/apache2/sites-available
//	  enabled: /etc/apache2/sites-enabled
//	  file_suffix: .conf
//	  enable_cmd: [a2ensite, -q]
//	  disable_cmd: [a2dissite, -q]
//	  query_cmd: [a2query, -s]
//	tls:
//	  provider: certbot
//	  webroot: /var/www/_letsencrypt
//
// Commands are argument vectors, never shell strings.
//
// # Site definitions
//
// SiteDefinition is validated with go-playground/validator struct tags.
// Validate returns an INVALID_DEFINITION error naming the first offending
// field by its YAML name.
//
//	def := &config.SiteDefinition{
//	    Domain:   "app.example.com",
//	    Location: "app",
//	    Kind:     config.KindProxy,
//	    Port:     3000,
//	    Server:   config.FamilyNginx,
//	}
//	if err := def.Validate(); err != nil {
//	    return err
//	}
package config
