package skill

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var scaffoldTemplates *template.Template

func init() {
	scaffoldTemplates = template.Must(
		template.New("").ParseFS(templatesFS, "templates/*.tmpl"),
	)
}

// renderTemplate executes a named template with the given data and returns the result.
func renderTemplate(name string, data any) string {
	var buf bytes.Buffer
	if err := scaffoldTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are embedded and exercised by tests.
		panic("skill: failed to render template " + name + ": " + err.Error())
	}
	return buf.String()
}
