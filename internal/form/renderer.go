// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Server-rendered pages (the free-questions page) draw their inputs from
//   the FormDef so labels, limits, and field order live in one place.  The
//   renderer writes each field with its current raw value and any error,
//   then the hidden form token.
//
// Style
//   Output HTML is plain.  Each input gets id="fld-{name}" and is wrapped in
//   <div class="form-field">; a failing field adds the "has-error" class and
//   aria-invalid so the page can style it without JavaScript.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
)

// RenderFields returns the markup for fd's inputs.  data supplies prefill
// values and errs the per-field messages.  token is written as a hidden
// input when non-empty.
func RenderFields(fd *FormDef, data FormData, errs map[string]string, token string) (template.HTML, error) {
	var buf bytes.Buffer
	buf.WriteString(`<div class="legacy-form">` + "\n")

	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := writeField(&buf, f, data.Value(f.Name), errs[f.Name]); err != nil {
			return "", err
		}
	}

	if token != "" {
		buf.WriteString(`<input type="hidden" name="form_token" value="` + html.EscapeString(token) + `">` + "\n")
	}
	buf.WriteString(`</div>`)
	return template.HTML(buf.String()), nil
}

// writeField emits one labelled input into buf.
func writeField(buf *bytes.Buffer, f *FieldDef, val, errMsg string) error {
	name := html.EscapeString(f.Name)
	id := "fld-" + name

	class := "form-field"
	if errMsg != "" {
		class += " has-error"
	}
	buf.WriteString(`<div class="` + class + `">` + "\n")

	buf.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label))
	if f.Required {
		buf.WriteString(` <span class="req">*</span>`)
	}
	buf.WriteString(`</label>` + "\n")

	attrs := ` id="` + id + `" name="` + name + `"`
	if f.Required {
		attrs += ` required`
	}
	if f.MaxLength > 0 {
		attrs += ` maxlength="` + strconv.Itoa(f.MaxLength) + `"`
	}
	if errMsg != "" {
		attrs += ` aria-invalid="true" aria-describedby="` + id + `-err"`
	}

	switch f.Type {
	case "text", "email", "tel":
		buf.WriteString(`<input type="` + f.Type + `"` + attrs)
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea rows="3"` + attrs + `>` + html.EscapeString(val) + `</textarea>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	if errMsg != "" {
		buf.WriteString(`<p class="error" id="` + id + `-err" role="alert">` + html.EscapeString(errMsg) + `</p>` + "\n")
	}
	buf.WriteString(`</div>` + "\n")
	return nil
}
