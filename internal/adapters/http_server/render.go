package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"hbnb_web/internal/domain"
	"hbnb_web/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "place", "place_form", "login", "verify", "profile", "error"}

var funcs = template.FuncMap{
	"canEdit":         view.CanEditPlace,
	"canDeleteReview": view.CanDeleteReview,
	"price": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64) + " €"
	},
	"stars": func(n int) string {
		out := ""
		for i := 0; i < 5; i++ {
			if i < n {
				out += "★"
			} else {
				out += "☆"
			}
		}
		return out
	},
	"coord": func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	},
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// layoutData is what every page receives; Body is page-specific.
type layoutData struct {
	Title string
	User  *domain.Claims
	Flash string
	Body  any
}

// render executes into a buffer first so a template failure never leaves a
// half-written page.
func (rn *renderer) render(w http.ResponseWriter, status int, page string, data layoutData) {
	t, ok := rn.pages[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render failed")
		http.Error(w, view.MsgServer, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("page", page).Msg("write page failed")
	}
}
