// internal/view/funcs.go
//
// Template helpers.  The request helpers accept a nil *RequestInfo so pages
// render in tests without the enrichment middleware.
package view

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/yanizio/legacyfilm/internal/pricing"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict":    dict,
		"deposit": deposit,
		"device": func(ri *requestinfo.RequestInfo) string {
			if ri == nil || ri.UA.Device == "" {
				return "unknown"
			}
			return strings.ToLower(ri.UA.Device)
		},
		"isBot": func(ri *requestinfo.RequestInfo) bool { return ri != nil && ri.UA.IsBot },
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// deposit formats a package's deposit as "$2,250" (or "$2,250.50").
func deposit(p pricing.Package) string {
	c, err := p.DepositCents()
	if err != nil {
		return ""
	}
	return FormatCents(c)
}

// FormatCents renders cents as US dollars with thousands separators.
func FormatCents(c int64) string {
	neg := c < 0
	if neg {
		c = -c
	}
	whole := strconv.FormatInt(c/100, 10)
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	out := "$" + whole
	if frac := c % 100; frac != 0 {
		out += "." + strconv.FormatInt(frac/10, 10) + strconv.FormatInt(frac%10, 10)
	}
	if neg {
		out = "-" + out
	}
	return out
}
