package driver

import "context"

// MockDriver is a test double for Driver interface
type MockDriver struct {
	name string

	// Function mocks - set these to customize behavior
	ValidateFunc    func() error
	ReloadFunc      func() error
	EnableProxyFunc func() error
	EnableTLSFunc   func() error

	// Call tracking - check these to verify interactions
	ValidateCalls    int
	ReloadCalls      int
	EnableProxyCalls int
	EnableTLSCalls   int
}

// NewMockDriver creates a new MockDriver with default no-op implementations
func NewMockDriver(name string) *MockDriver {
	return &MockDriver{name: name}
}

// Name returns the driver name
func (m *MockDriver) Name() string {
	return m.name
}

// Validate records the call and invokes the mock function if set
func (m *MockDriver) Validate(ctx context.Context) error {
	m.ValidateCalls++
	if m.ValidateFunc != nil {
		return m.ValidateFunc()
	}
	return nil
}

// Reload records the call and invokes the mock function if set
func (m *MockDriver) Reload(ctx context.Context) error {
	m.ReloadCalls++
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// EnableProxy records the call and invokes the mock function if set
func (m *MockDriver) EnableProxy(ctx context.Context) error {
	m.EnableProxyCalls++
	if m.EnableProxyFunc != nil {
		return m.EnableProxyFunc()
	}
	return nil
}

// EnableTLS records the call and invokes the mock function if set
func (m *MockDriver) EnableTLS(ctx context.Context) error {
	m.EnableTLSCalls++
	if m.EnableTLSFunc != nil {
		return m.EnableTLSFunc()
	}
	return nil
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.ValidateCalls = 0
	m.ReloadCalls = 0
	m.EnableProxyCalls = 0
	m.EnableTLSCalls = 0
}
