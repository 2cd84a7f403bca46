package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"yatube/internal/common"
)

//go:embed templates
var embedded embed.FS

var pages = []string{
	"index.html",
	"group.html",
	"follow.html",
	"posts/profile.html",
	"posts/post.html",
	"posts/new_post.html",
	"auth/login.html",
	"auth/signup.html",
	"misc/404.html",
	"misc/500.html",
	"about/author.html",
	"about/tech.html",
}

// Renderer holds one parsed template set per page, each layered on base.html.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates, or the ones under dir when it is set.
func NewRenderer(dir string) (*Renderer, error) {
	var source fs.FS
	if dir != "" {
		source = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		source = sub
	}

	funcs := template.FuncMap{
		"date":         formatDate,
		"linebreaksbr": linebreaksbr,
		"mediaURL":     mediaURL,
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(source, "base.html", "includes/*.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render executes page into a buffer first so a template error never sends a partial page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]interface{}) error {
	tmpl, ok := rd.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Viewer"] = common.UserFromContext(r.Context())
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string][]string{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006 15:04")
}

func linebreaksbr(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func mediaURL(fileID string) string {
	return "/media/" + fileID
}
