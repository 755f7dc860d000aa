package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitmint/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page templates. Each is parsed together with the shared layout.
const (
	pageLanding = "landing"
	pageLogin   = "login"
	pageGroups  = "groups"
	pageGroup   = "group"
)

// pageData is what every template receives. Only the field matching the
// page is filled.
type pageData struct {
	Title  string
	Navbar *views.Navbar

	Login  views.LoginView
	Groups views.GroupsView
	Group  views.GroupDetailView
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{pageLanding, pageLogin, pageGroups, pageGroup} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// render executes the page into a buffer first so that a template error
// never leaves a half-written response.
func (r *renderer) render(w http.ResponseWriter, page string, data pageData) {
	t, ok := r.pages[page]
	if !ok {
		slog.Error("Unknown page template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Template execution failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pageRenders.WithLabelValues(page).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Failed to write page", "page", page, "error", err)
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static dir missing: %v", err))
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
