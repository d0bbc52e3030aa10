package cli

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/deploy"
	siteerrors "github.com/ksyq12/sitectl/internal/errors"
	"github.com/ksyq12/sitectl/internal/store"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
	SavedPath string
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config, path string) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	m.SavedPath = path
	return nil
}

// MockSiteManager is an in-memory SiteManager. Sites are keyed by
// "<server>/<name>".
type MockSiteManager struct {
	Sites   map[string]string
	Enabled map[string]bool

	CreateFunc func(def *config.SiteDefinition) (*deploy.Result, error)
	SaveFunc   func(server config.Family, name, content string) (*deploy.Result, error)

	Created []*config.SiteDefinition
	Saved   []string
	Toggled []string
	Deleted []string
}

// NewMockSiteManager creates an empty MockSiteManager
func NewMockSiteManager() *MockSiteManager {
	return &MockSiteManager{Sites: map[string]string{}, Enabled: map[string]bool{}}
}

func mockSiteKey(server config.Family, name string) string {
	return string(server) + "/" + name
}

// AddSite stores a site as if it had been deployed
func (m *MockSiteManager) AddSite(server config.Family, name, content string, enabled bool) {
	m.Sites[mockSiteKey(server, name)] = content
	m.Enabled[mockSiteKey(server, name)] = enabled
}

func (m *MockSiteManager) Create(ctx context.Context, def *config.SiteDefinition) (*deploy.Result, error) {
	m.Created = append(m.Created, def)
	if m.CreateFunc != nil {
		return m.CreateFunc(def)
	}
	if err := def.Validate(); err != nil {
		return &deploy.Result{Server: def.Server, State: deploy.StateIdle}, err
	}
	name, _ := m.FileName(def.Server, def.Domain)
	m.AddSite(def.Server, name, "server_name "+def.Domain+";\n", true)
	return committed(deploy.ActionCreate, def.Server, name, true), nil
}

func (m *MockSiteManager) Save(ctx context.Context, server config.Family, name, content string) (*deploy.Result, error) {
	m.Saved = append(m.Saved, content)
	if m.SaveFunc != nil {
		return m.SaveFunc(server, name, content)
	}
	key := mockSiteKey(server, name)
	enabled, existed := m.Enabled[key]
	if !existed {
		enabled = true
	}
	m.AddSite(server, name, content, enabled)
	return committed(deploy.ActionSave, server, name, enabled), nil
}

func (m *MockSiteManager) Get(server config.Family, name string) (*deploy.SiteConfig, error) {
	content, ok := m.Sites[mockSiteKey(server, name)]
	if !ok {
		return nil, siteerrors.NotFound(name)
	}
	return &deploy.SiteConfig{Name: name, Path: "/etc/" + string(server) + "/sites-available/" + name, Content: content}, nil
}

func (m *MockSiteManager) Toggle(ctx context.Context, server config.Family, name string) (*deploy.Result, error) {
	m.Toggled = append(m.Toggled, name)
	key := mockSiteKey(server, name)
	if _, ok := m.Sites[key]; !ok {
		return &deploy.Result{Server: server, Name: name, Action: deploy.ActionToggle}, siteerrors.NotFound(name)
	}
	m.Enabled[key] = !m.Enabled[key]
	return committed(deploy.ActionToggle, server, name, m.Enabled[key]), nil
}

func (m *MockSiteManager) Delete(ctx context.Context, server config.Family, name string) (*deploy.Result, error) {
	m.Deleted = append(m.Deleted, name)
	key := mockSiteKey(server, name)
	if _, ok := m.Sites[key]; !ok {
		return &deploy.Result{Server: server, Name: name, Action: deploy.ActionDelete}, siteerrors.NotFound(name)
	}
	delete(m.Sites, key)
	delete(m.Enabled, key)
	return committed(deploy.ActionDelete, server, name, false), nil
}

func (m *MockSiteManager) List(ctx context.Context, server config.Family) ([]store.SiteRecord, error) {
	records := []store.SiteRecord{}
	for key, content := range m.Sites {
		prefix := string(server) + "/"
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rec := store.Parse(server, content)
		rec.Name = strings.TrimPrefix(key, prefix)
		rec.Enabled = m.Enabled[key]
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (m *MockSiteManager) FileName(server config.Family, domain string) (string, error) {
	suffix := ""
	if server == config.FamilyApache {
		suffix = ".conf"
	}
	return config.FileName(domain, suffix), nil
}

func (m *MockSiteManager) Servers() []config.Family {
	return config.Families()
}

func committed(action deploy.Action, server config.Family, name string, enabled bool) *deploy.Result {
	return &deploy.Result{
		ID:      "00000000-0000-0000-0000-000000000000",
		Server:  server,
		Name:    name,
		Action:  action,
		State:   deploy.StateCommitted,
		Outcome: deploy.OutcomeCommitted,
		Enabled: enabled,
	}
}

// MockManagerFactory is a test double for ManagerFactory
type MockManagerFactory struct {
	Manager SiteManager
	Err     error
}

func (m *MockManagerFactory) Create(cfg *config.Config) (SiteManager, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Manager, nil
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot   bool
	Writable bool
	Calls    int

	WritableCalls int
	Paths         []string
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return siteerrors.ErrRootRequired
	}
	return nil
}

func (m *MockRootChecker) RequireWritable(paths ...string) error {
	m.WritableCalls++
	m.Paths = append(m.Paths, paths...)
	if !m.IsRoot && !m.Writable {
		return siteerrors.Wrap(siteerrors.ErrCodePermission, "sudo mode needs write access to "+paths[0], nil)
	}
	return nil
}

// MockStdinReader is a test double for input.Reader
type MockStdinReader struct {
	Input string
	pos   int
}

func (m *MockStdinReader) ReadString(delim byte) (string, error) {
	if m.pos >= len(m.Input) {
		return "", io.EOF
	}
	idx := strings.IndexByte(m.Input[m.pos:], delim)
	if idx == -1 {
		result := m.Input[m.pos:]
		m.pos = len(m.Input)
		return result, nil
	}
	result := m.Input[m.pos : m.pos+idx+1]
	m.pos += idx + 1
	return result, nil
}

// MockEditor replaces the edited file's content with Content
type MockEditor struct {
	Content string
	Err     error
	Paths   []string
}

func (m *MockEditor) Edit(path string) error {
	m.Paths = append(m.Paths, path)
	if m.Err != nil {
		return m.Err
	}
	if m.Content == "" {
		return nil
	}
	return os.WriteFile(path, []byte(m.Content), 0600)
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:   &MockConfigLoader{Cfg: config.New()},
			ManagerFactory: &MockManagerFactory{Manager: NewMockSiteManager()},
			RootChecker:    &MockRootChecker{IsRoot: true},
			StdinReader:    &MockStdinReader{Input: "y\n"},
			Editor:         &MockEditor{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithManager sets the site manager
func (b *MockDependenciesBuilder) WithManager(mgr SiteManager) *MockDependenciesBuilder {
	b.deps.ManagerFactory = &MockManagerFactory{Manager: mgr}
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(input string) *MockDependenciesBuilder {
	b.deps.StdinReader = &MockStdinReader{Input: input}
	return b
}

// WithEditor sets the editor
func (b *MockDependenciesBuilder) WithEditor(e Editor) *MockDependenciesBuilder {
	b.deps.Editor = e
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
