// Package driver validates and reloads web servers.
//
// A Driver wraps a family's syntax-check and reload commands. Validation
// is a textual check: the command must exit zero and its combined
// stdout/stderr must contain the family's success marker ("successful"
// for nginx -t, "Syntax OK" for apache2ctl configtest), since both tools
// print warnings while still passing.
//
//	drv := driver.New(config.FamilyNginx, &cfg.Nginx, exec)
//	if err := drv.Validate(ctx); err != nil {
//	    fmt.Println(errors.DetailOf(err)) // checker output
//	}
//
// Reload tries the configured reload command and then the fallback
// (nginx -s reload, apache2ctl graceful). The fallback is a different
// command, not a retry.
package driver
