// Package deploy runs site deployments as a small state machine:
//
//	idle -> rendered -> staged -> activated -> validated -> committed
//	                                       \-> rejected  -> rolled_back
//
// A new or edited site file is written to a staging directory, renamed
// into place and enabled, and only then checked by the web server's own
// syntax test. A rejected configuration is rolled back to exactly what
// was on disk before: a new site is removed, an existing one gets its old
// bytes and link state back. The server is reloaded only after a passing
// check, and a reload failure is reported as a warning.
//
// Filesystem failures stop the pipeline where it stands. No rollback is
// attempted, since the same failure would likely hit the rollback too;
// Result.State tells how far the run got.
//
// Each run holds a per-site lock (see store.Store.Lock) from the snapshot
// to commit or rollback, so two requests for the same site name are
// serialised, also across processes.
//
// # Usage
//
//	ctrl, err := deploy.FromConfig(cfg, executor.NewSystemExecutor())
//	res, err := ctrl.Create(ctx, &config.SiteDefinition{
//	    Domain:   "app.example.com",
//	    Location: "app",
//	    Kind:     config.KindProxy,
//	    Port:     3000,
//	    Server:   config.FamilyNginx,
//	})
//	if errors.Is(err, siteerrors.ErrSyntax) {
//	    fmt.Println(res.Reason)
//	}
package deploy
