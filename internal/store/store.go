package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/ksyq12/sitectl/internal/config"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/executor"
	"github.com/ksyq12/sitectl/internal/logger"
)

// Options configure a Store.
type Options struct {
	Family    config.Family
	Available string
	Enabled   string
	Staging   string
	Linker    Linker // defaults to a SymlinkLinker over Available and Enabled
}

// Store owns the site files of one server family.
type Store struct {
	family    config.Family
	available string
	enabled   string
	staging   string
	linker    Linker
}

// New creates a Store.
func New(opts Options) *Store {
	if opts.Staging == "" {
		opts.Staging = filepath.Join(filepath.Dir(filepath.Clean(opts.Available)), ".sitectl-staging")
	}
	if opts.Linker == nil {
		opts.Linker = &SymlinkLinker{Available: opts.Available, Enabled: opts.Enabled}
	}
	return &Store{
		family:    opts.Family,
		available: opts.Available,
		enabled:   opts.Enabled,
		staging:   opts.Staging,
		linker:    opts.Linker,
	}
}

// FromConfig creates the Store for one family. Families with an enable
// command get a CommandLinker, the rest a SymlinkLinker.
func FromConfig(family config.Family, srv *config.ServerConfig, exec executor.CommandExecutor) *Store {
	var linker Linker
	if srv.UsesCommands() {
		linker = &CommandLinker{
			Exec:       exec,
			EnableCmd:  srv.EnableCmd,
			DisableCmd: srv.DisableCmd,
			QueryCmd:   srv.QueryCmd,
			Suffix:     srv.FileSuffix,
			Enabled:    srv.Enabled,
		}
	}
	return New(Options{
		Family:    family,
		Available: srv.Available,
		Enabled:   srv.Enabled,
		Staging:   srv.StagingDir(),
		Linker:    linker,
	})
}

// Family returns the server family the store belongs to.
func (s *Store) Family() config.Family { return s.family }

// Path returns the absolute path of a site file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.available, name)
}

// ValidateName checks that name is a plain file name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return siteerrors.InvalidDefinition("site name is required")
	case name == "." || name == "..":
		return siteerrors.InvalidDefinition(fmt.Sprintf("invalid site name %q", name))
	case strings.ContainsAny(name, "/\\\x00"):
		return siteerrors.InvalidDefinition(fmt.Sprintf("site name %q must not contain path separators", name))
	case strings.HasPrefix(name, "."):
		return siteerrors.InvalidDefinition(fmt.Sprintf("site name %q must not be hidden", name))
	}
	return nil
}

// Staged is a written, synced file in the staging directory that the
// server cannot see yet.
type Staged struct {
	path string
}

// Path returns the staged file's location.
func (st *Staged) Path() string { return st.path }

// DefaultMode is the permission of newly created site files.
const DefaultMode os.FileMode = 0644

// ErrNotLinked marks an Activate failure that happened after the site file
// was already installed.
var ErrNotLinked = errors.New("site file installed but not enabled")

// Stage writes content to a fresh file in the staging directory.
func (s *Store) Stage(name, content string) (*Staged, error) {
	return s.StageMode(name, content, DefaultMode)
}

// StageMode is Stage with explicit permission bits, used to keep the mode
// of a file that is being replaced.
func (s *Store) StageMode(name, content string, perm os.FileMode) (*Staged, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.staging, 0755); err != nil {
		return nil, siteerrors.StoreIO(name, "failed to create staging directory", err)
	}

	f, err := os.CreateTemp(s.staging, "."+name+".*.tmp")
	if err != nil {
		return nil, siteerrors.StoreIO(name, "failed to create staged file", err)
	}
	st := &Staged{path: f.Name()}

	_, err = f.WriteString(content)
	if err == nil {
		err = f.Sync()
	}
	if err == nil {
		err = f.Chmod(perm.Perm())
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.Discard(st)
		return nil, siteerrors.StoreIO(name, "failed to write staged file", err)
	}

	logger.Debug("staged %s at %s", name, st.path)
	return st, nil
}

// Discard removes a staged file that will not be activated.
func (s *Store) Discard(st *Staged) {
	if st == nil {
		return
	}
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to discard staged file %s: %v", st.path, err)
	}
}

// Activate renames the staged file over the site file and enables it. A
// failure after the rename wraps ErrNotLinked.
func (s *Store) Activate(ctx context.Context, st *Staged, name string) error {
	if err := s.Replace(st, name); err != nil {
		return err
	}
	if err := s.linker.Link(ctx, name); err != nil {
		return siteerrors.StoreIO(name, "failed to enable site", fmt.Errorf("%w: %v", ErrNotLinked, err))
	}
	return nil
}

// Replace renames the staged file over the site file without touching
// its enabled state.
func (s *Store) Replace(st *Staged, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Rename(st.path, s.Path(name)); err != nil {
		s.Discard(st)
		return siteerrors.StoreIO(name, "failed to install site file", err)
	}
	return nil
}

// Enable links an existing site file.
func (s *Store) Enable(ctx context.Context, name string) error {
	exists, err := s.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return siteerrors.NotFound(name)
	}
	if err := s.linker.Link(ctx, name); err != nil {
		return siteerrors.StoreIO(name, "failed to enable site", err)
	}
	return nil
}

// Deactivate removes the enabled marker and keeps the file.
func (s *Store) Deactivate(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := s.linker.Unlink(ctx, name); err != nil {
		return siteerrors.StoreIO(name, "failed to disable site", err)
	}
	return nil
}

// Remove deletes the enabled marker and the site file.
func (s *Store) Remove(ctx context.Context, name string) error {
	if err := s.Deactivate(ctx, name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return siteerrors.StoreIO(name, "failed to remove site file", err)
	}
	return nil
}

// Read returns the content of a site file.
func (s *Store) Read(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return "", siteerrors.NotFound(name)
	}
	if err != nil {
		return "", siteerrors.StoreIO(name, "failed to read site file", err)
	}
	return string(data), nil
}

// Exists reports whether the site file exists.
func (s *Store) Exists(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	info, err := os.Stat(s.Path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, siteerrors.StoreIO(name, "failed to stat site file", err)
	}
	return info.Mode().IsRegular(), nil
}

// Mode returns the permission bits of a site file.
func (s *Store) Mode(name string) (os.FileMode, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	info, err := os.Stat(s.Path(name))
	if os.IsNotExist(err) {
		return 0, siteerrors.NotFound(name)
	}
	if err != nil {
		return 0, siteerrors.StoreIO(name, "failed to stat site file", err)
	}
	return info.Mode().Perm(), nil
}

// IsEnabled reports whether the site file exists and is linked.
func (s *Store) IsEnabled(ctx context.Context, name string) (bool, error) {
	exists, err := s.Exists(name)
	if err != nil || !exists {
		return false, err
	}
	linked, err := s.linker.IsLinked(ctx, name)
	if err != nil {
		return false, siteerrors.StoreIO(name, "failed to query link state", err)
	}
	return linked, nil
}

// List scans the available directory. A missing directory is an empty
// list.
func (s *Store) List(ctx context.Context) ([]SiteRecord, error) {
	entries, err := os.ReadDir(s.available)
	if os.IsNotExist(err) {
		return []SiteRecord{}, nil
	}
	if err != nil {
		return nil, siteerrors.StoreIO("", "failed to read "+s.available, err)
	}

	records := make([]SiteRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
			continue
		}

		data, err := os.ReadFile(s.Path(name))
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			continue
		}

		rec := Parse(s.family, string(data))
		rec.Name = name
		rec.Path = s.Path(name)
		linked, err := s.linker.IsLinked(ctx, name)
		if err != nil {
			logger.Warn("failed to query link state of %s: %v", name, err)
		}
		rec.Enabled = linked
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Lock takes an exclusive lock on name, shared across processes. The
// returned function releases it.
func (s *Store) Lock(name string) (func(), error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.staging, 0755); err != nil {
		return nil, siteerrors.StoreIO(name, "failed to create staging directory", err)
	}

	path := filepath.Join(s.staging, "."+name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, siteerrors.StoreIO(name, "failed to open lock file", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, siteerrors.StoreIO(name, "failed to lock site", err)
	}

	return func() {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
			logger.Warn("failed to unlock %s: %v", name, err)
		}
		f.Close()
	}, nil
}
