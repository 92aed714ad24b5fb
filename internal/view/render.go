// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (tests, e-mails).
//
// Lookup precedence (first hit wins, per file):
//   1. <root>/templates/<file>.html   – deploy-time override, optional.
//   2. templates/<file>.html          – embedded in the binary.
//
// Every page is parsed together with layout.html, which defines "layout"
// and calls {{ template "content" . }}.  The page file defines "content".
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yanizio/legacyfilm/internal/cache"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
)

//go:embed templates/*.html
var embedded embed.FS

// setCapacity bounds parsed sets; there is one per page name.
const setCapacity = 32

// Page is the value every template receives as ".".
type Page struct {
	Head *Head
	Info *requestinfo.RequestInfo
	Data any
}

// Engine renders pages.  Safe for concurrent use.
type Engine struct {
	layers []fs.FS
	sets   *cache.LRU[string, *template.Template]
}

// New returns an Engine over the embedded templates.  When overrideDir is
// non-empty and exists, files in it shadow the embedded ones.
func New(overrideDir string) *Engine {
	e := &Engine{sets: cache.New[string, *template.Template](setCapacity)}
	if overrideDir != "" {
		if fi, err := os.Stat(overrideDir); err == nil && fi.IsDir() {
			e.layers = append(e.layers, os.DirFS(overrideDir))
			zap.S().Infow("template overrides enabled", "dir", overrideDir)
		}
	}
	sub, _ := fs.Sub(embedded, "templates")
	e.layers = append(e.layers, sub)
	return e
}

// Render executes page into a buffer and writes it with status.  A template
// error yields a plain 500 and nothing half-written.
func (e *Engine) Render(w http.ResponseWriter, status int, page string, p *Page) error {
	var buf bytes.Buffer
	if err := e.execute(&buf, page, p); err != nil {
		zap.S().Errorw("render failed", "page", page, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString mirrors Render but returns the markup.
func (e *Engine) RenderToString(page string, p *Page) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.execute(&buf, page, p); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (e *Engine) execute(buf *bytes.Buffer, page string, p *Page) error {
	t, err := e.load(page)
	if err != nil {
		return err
	}
	if p.Head == nil {
		p.Head = NewHead("")
	}
	return t.ExecuteTemplate(buf, "layout", p)
}

//
// internal: load
//

// load parses layout.html plus <page>.html, caching the set by page name.
func (e *Engine) load(page string) (*template.Template, error) {
	if t, ok := e.sets.Get(page); ok {
		return t, nil
	}

	t := template.New(page).Funcs(funcMap())
	for _, file := range []string{"layout.html", page + ".html"} {
		src, err := e.read(file)
		if err != nil {
			return nil, err
		}
		if _, err := t.New(file).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", file, err)
		}
	}

	e.sets.Add(page, t)
	return t, nil
}

// read returns the first layer's copy of file.
func (e *Engine) read(file string) ([]byte, error) {
	for _, layer := range e.layers {
		if b, err := fs.ReadFile(layer, filepath.ToSlash(file)); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("view: template %s: %w", file, fs.ErrNotExist)
}
