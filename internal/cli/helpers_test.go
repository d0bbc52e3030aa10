package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"

	"github.com/ksyq12/sitectl/internal/config"
	"github.com/ksyq12/sitectl/internal/output"
)

func init() {
	color.NoColor = true
}

// setupTest installs d, resets the global flags and captures output.
func setupTest(t *testing.T, d *Dependencies) *bytes.Buffer {
	t.Helper()

	old := deps
	deps = d
	resetFlags()

	var buf bytes.Buffer
	output.SetOutput(&buf)

	t.Cleanup(func() {
		deps = old
		output.SetOutput(nil)
		resetFlags()
	})
	return &buf
}

func resetFlags() {
	jsonOutput = false
	serverFlag = ""
	configPath = ""
	reported = false

	siteLocation = ""
	siteKind = string(config.KindStatic)
	sitePort = 0
	siteRepo = ""
	siteBuild = ""
	siteTLS = false
	siteRuntime = config.RuntimePHP
	siteDirectives = nil
	siteCert = ""
	siteKey = ""

	showRaw = false
	saveFile = ""
	forceDelete = false
	forceInit = false
}
