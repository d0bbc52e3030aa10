package template

import (
	"embed"
	"fmt"
	"text/template"

	"github.com/ksyq12/sitectl/internal/config"
)

//go:embed nginx/*.tmpl
var nginxTemplates embed.FS

//go:embed apache/*.tmpl
var apacheTemplates embed.FS

var parsed = map[config.Family]*template.Template{
	config.FamilyNginx:  template.Must(template.ParseFS(nginxTemplates, "nginx/*.tmpl")),
	config.FamilyApache: template.Must(template.ParseFS(apacheTemplates, "apache/*.tmpl")),
}

// getTemplates returns the parsed template set for a server family
func getTemplates(family config.Family) (*template.Template, error) {
	t, ok := parsed[family]
	if !ok {
		return nil, fmt.Errorf("unknown server: %s", family)
	}
	return t, nil
}
