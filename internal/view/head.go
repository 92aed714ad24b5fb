// internal/view/head.go
//
// The Head collects everything that should appear inside a page’s <head>
// element.  It is scoped to a single render.  Handlers push tags into it,
// then layout.html decides where to emit each slice.
//
// Features
// --------
//   - SetTitle           – single <title> tag (last call wins).
//   - Meta, Script       – name/content pairs and external scripts, deduplicated.
//   - JSONLD             – marshals a value and wraps it in
//     <script type="application/ld+json">…</script>.
package view

import (
	"encoding/json"
	"html/template"
	"strings"
)

// Head is not safe for concurrent use; one goroutine renders one page.
type Head struct {
	title   string
	metas   []string
	scripts []string
	jsonLD  []string
	seen    map[string]struct{}
}

func NewHead(title string) *Head {
	return &Head{title: title, seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (h *Head) SetTitle(t string) { h.title = t }

// Title returns a fully formed <title> tag or an empty string.
func (h *Head) Title() template.HTML {
	if h.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(h.title) + "</title>")
}

// Meta adds <meta name="…" content="…">.
func (h *Head) Meta(name, content string) {
	tag := `<meta name="` + template.HTMLEscapeString(name) +
		`" content="` + template.HTMLEscapeString(content) + `">`
	h.add("meta:"+name, &h.metas, tag)
}

// Script adds an external script loaded with defer.
func (h *Head) Script(src string) {
	h.add("script:"+src, &h.scripts, `<script defer src="`+template.HTMLEscapeString(src)+`"></script>`)
}

// JSONLD marshals v.  encoding/json escapes <, >, and & so the block cannot
// close its own script element.
func (h *Head) JSONLD(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.add("jsonld:"+string(b), &h.jsonLD, `<script type="application/ld+json">`+string(b)+`</script>`)
	return nil
}

func (h *Head) add(key string, tgt *[]string, tag string) {
	if _, dup := h.seen[key]; dup {
		return
	}
	h.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

func (h *Head) Metas() template.HTML   { return concat(h.metas) }
func (h *Head) Scripts() template.HTML { return concat(h.scripts) }
func (h *Head) JSON() template.HTML    { return concat(h.jsonLD) }

// concat joins pre-escaped tags without a separator.
func concat(sl []string) template.HTML {
	return template.HTML(strings.Join(sl, ""))
}
