package form

// FormField holds one input.  Clean is set only after the field passed its
// validator on the last submit attempt.
type FormField struct {
	Name  string `json:"name"`
	Raw   string `json:"value"`
	Clean string `json:"-"`
	Error string `json:"error,omitempty"`
}

// FormData is the ordered field set of one form instance.
type FormData []FormField

func newFormData(fd *FormDef) FormData {
	out := make(FormData, len(fd.Fields))
	for i, f := range fd.Fields {
		out[i] = FormField{Name: f.Name}
	}
	return out
}

func (d FormData) clearErrors() {
	for i := range d {
		d[i].Error = ""
	}
}

func (d FormData) find(name string) *FormField {
	for i := range d {
		if d[i].Name == name {
			return &d[i]
		}
	}
	return nil
}

// Value returns the raw value of name, or "" if the field does not exist.
func (d FormData) Value(name string) string {
	if f := d.find(name); f != nil {
		return f.Raw
	}
	return ""
}

func (d FormData) clean(name string) string {
	if f := d.find(name); f != nil {
		return f.Clean
	}
	return ""
}
