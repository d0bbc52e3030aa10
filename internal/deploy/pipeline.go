package deploy

import (
	"context"
	"errors"
	"os"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/logger"
	"github.com/ksyq12/sitectl/internal/store"
)

// snapshot is the state of a site file before a pipeline run touched it.
type snapshot struct {
	existed bool
	content string
	mode    os.FileMode
	enabled bool
}

// apply runs stage, activate, validate and then commit or rollback for
// res.Name. With link set the site always ends up enabled; otherwise an
// existing disabled site is replaced in place and stays disabled. A
// replaced file keeps its permission bits.
//
// A store failure halts the run where it is; res.State tells how far it
// got.
func (c *Controller) apply(ctx context.Context, fam Family, res *Result, content string, link bool) error {
	s := fam.Store
	name := res.Name

	unlock, err := s.Lock(name)
	if err != nil {
		return err
	}
	defer unlock()

	var prev snapshot
	if prev.existed, err = s.Exists(name); err != nil {
		return err
	}
	if prev.existed {
		if prev.content, err = s.Read(name); err != nil {
			return err
		}
		if prev.mode, err = s.Mode(name); err != nil {
			return err
		}
		if prev.enabled, err = s.IsEnabled(ctx, name); err != nil {
			return err
		}
	}

	mode := store.DefaultMode
	if prev.existed {
		mode = prev.mode
	}
	staged, err := s.StageMode(name, content, mode)
	if err != nil {
		return err
	}
	res.State = StateStaged

	activate := link || !prev.existed || prev.enabled
	if activate {
		err = s.Activate(ctx, staged, name)
	} else {
		err = s.Replace(staged, name)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotLinked) {
			res.State = StateActivated
		}
		return err
	}
	res.State = StateActivated
	logger.Debug("%s activated, validating", name)

	if verr := fam.Driver.Validate(ctx); verr != nil {
		res.State = StateRejected
		res.Reason = siteerrors.DetailOf(verr)
		if err := c.rollback(ctx, fam, name, prev, activate); err != nil {
			logger.LogError(err, "rollback of "+name+" failed")
			return err
		}
		res.State = StateRolledBack
		res.Outcome = OutcomeRolledBack
		res.Enabled = prev.enabled

		var se *siteerrors.SiteError
		if siteerrors.As(verr, &se) {
			se.Name = name
		}
		return verr
	}
	res.State = StateValidated

	c.reload(ctx, fam, res)
	res.State = StateCommitted
	res.Outcome = OutcomeCommitted
	res.Enabled = activate
	return nil
}

// rollback restores prev exactly. A site that did not exist is removed; an
// existing one gets its old bytes and mode back and the link state it had. The
// link is undone only if activation created it.
func (c *Controller) rollback(ctx context.Context, fam Family, name string, prev snapshot, linked bool) error {
	s := fam.Store
	logger.Info("rolling back %s", name)

	if !prev.existed {
		return s.Remove(ctx, name)
	}

	staged, err := s.StageMode(name, prev.content, prev.mode)
	if err != nil {
		return err
	}
	if err := s.Replace(staged, name); err != nil {
		return err
	}
	if linked && !prev.enabled {
		return s.Deactivate(ctx, name)
	}
	return nil
}
