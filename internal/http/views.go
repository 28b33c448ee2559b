package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"linkeats/console/internal/auth"
	"linkeats/console/internal/model"
	"linkeats/console/internal/screens"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"loading", "login", "forgot_password", "dashboard", "products", "clients",
	"staff", "tables", "tickets", "settings",
}

type views struct {
	pages map[string]*template.Template
}

// page is the data every template receives.
type page struct {
	Title   string
	User    *model.User
	Path    string
	Success string
	// Refresh is a meta refresh value such as "2;url=/login".
	Refresh string
	Data    interface{}
}

var funcs = template.FuncMap{
	"brl": screens.FormatBRL,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict: odd argument count %d", len(pairs))
		}
		m := make(map[string]interface{}, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"pct": func(v, top int) int {
		if top <= 0 {
			return 0
		}
		return v * 100 / top
	},
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/recovery_form.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.views.pages[name]
	if !ok {
		writeError(w, http.StatusInternalServerError, "unknown_view")
		return
	}
	if p.User == nil {
		p.User = auth.FromContext(r.Context()).User()
	}
	p.Path = r.URL.Path

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		s.logger.Error("render failed", "view", name, "error", err)
		writeError(w, http.StatusInternalServerError, "render_failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
