package cli

import (
	"encoding/json"
	"strings"
	"testing"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
)

func TestRunShow(t *testing.T) {
	t.Run("by domain", func(t *testing.T) {
		buf := setupTest(t, NewMockDeps().WithManager(newListManager()).Build())

		if err := runShow(showCmd, []string{"app.example.com"}); err != nil {
			t.Fatalf("runShow failed: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Name:     app_example_com",
			"Proxy:    http://127.0.0.1:3000",
			"Enabled:  yes",
			"proxy_pass http://127.0.0.1:3000;",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output should contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("raw", func(t *testing.T) {
		buf := setupTest(t, NewMockDeps().WithManager(newListManager()).Build())
		showRaw = true

		if err := runShow(showCmd, []string{"app_example_com"}); err != nil {
			t.Fatalf("runShow failed: %v", err)
		}
		if buf.String() != nginxProxyConf {
			t.Errorf("raw output should be the file content, got %q", buf.String())
		}
	})

	t.Run("json on apache", func(t *testing.T) {
		buf := setupTest(t, NewMockDeps().WithManager(newListManager()).Build())
		serverFlag = "apache"
		jsonOutput = true

		if err := runShow(showCmd, []string{"blog.example.com"}); err != nil {
			t.Fatalf("runShow failed: %v", err)
		}
		var got map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["name"] != "blog_example_com.conf" || got["root"] != "/var/www/blog" || got["enabled"] != false {
			t.Errorf("unexpected detail %v", got)
		}
		if got["content"] != apacheStaticConf {
			t.Errorf("content missing from %v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		setupTest(t, NewMockDeps().Build())
		err := runShow(showCmd, []string{"missing.example.com"})
		if !siteerrors.Is(err, siteerrors.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}
