package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/chetan-code/tasktracker/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Views renders the embedded page templates
type Views struct {
	tmpl *template.Template
}

// NewViews parses every template once, creation times are shown in loc
func NewViews(loc *time.Location) *Views {
	funcs := template.FuncMap{
		"created": func(t models.Task) string {
			return t.CreatedAtIn(loc).Format("2006-01-02 15:04")
		},
	}
	tmpl := template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &Views{tmpl: tmpl}
}

// Render buffers the page so a template error never leaves half a response
func (v *Views) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template_render_failed", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck
}

// formView is a submitted form: the values to put back and one message per
// failing field
type formView struct {
	ID     int
	Values map[string]string
	Errors map[string]string
}

func newFormView(values map[string]string) formView {
	if values == nil {
		values = map[string]string{}
	}
	return formView{Values: values, Errors: map[string]string{}}
}
