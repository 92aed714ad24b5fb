// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Every form the site accepts is declared in forms.yaml, embedded into the
//   binary.  A definition names the form, the source tag its payload carries,
//   the rate-limit key it shares, and an ordered field list.  Each field says
//   which sanitize validator guards it and what the visitor is told for each
//   failure kind.  The booking form additionally needs a package, a date, and
//   a time slot; those are not text fields and are flagged by `schedule`.
//
// Workflow
//   •  LoadDefs parses a YAML document and validates structural rules.
//   •  GetFormDef returns a built-in definition by ID.  The embedded document
//      is parsed once, on first use.
//
//------------------------------------------------------------------------------

package form

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/legacyfilm/internal/sanitize"
)

//go:embed forms.yaml
var builtinYAML []byte

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Payload kinds.
const (
	PayloadLead    = "lead"
	PayloadBooking = "booking"
)

// Validator kinds.
const (
	ValidateName  = "name"
	ValidateEmail = "email"
	ValidatePhone = "phone"
	ValidateText  = "text"
)

// FormDef represents one form definition.
type FormDef struct {
	ID       string     `yaml:"id"`
	Title    string     `yaml:"title"`
	Source   string     `yaml:"source"`   // Payload source tag.
	Payload  string     `yaml:"payload"`  // lead or booking.
	RateKey  string     `yaml:"rate_key"` // Shared limiter key.
	Schedule bool       `yaml:"schedule"` // Requires package, date, and time.
	Fields   []FieldDef `yaml:"fields"`
}

// FieldDef describes one text input.
type FieldDef struct {
	Name      string            `yaml:"name"`
	Label     string            `yaml:"label"`
	Type      string            `yaml:"type"` // HTML input type.
	Validator string            `yaml:"validator"`
	Required  bool              `yaml:"required"`
	MaxLength int               `yaml:"maxlength"` // 0 means the validator default.
	Messages  map[string]string `yaml:"messages"`  // Keyed by sanitize.Kind.String().
}

// Message returns the visitor-facing text for a failure of kind k.
func (f *FieldDef) Message(k sanitize.Kind, max int) string {
	msg, ok := f.Messages[k.String()]
	if !ok {
		switch k {
		case sanitize.Empty:
			msg = "This field is required"
		case sanitize.TooLong:
			msg = "Text is too long (max {max} characters)"
		default:
			msg = "Invalid input"
		}
	}
	return strings.ReplaceAll(msg, "{max}", strconv.Itoa(max))
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	builtinOnce sync.Once
	builtin     map[string]*FormDef
	builtinErr  error
)

// GetFormDef returns a built-in definition by ID.  The boolean is false when
// the ID is unknown.  A malformed embedded document panics on first use.
func GetFormDef(id string) (*FormDef, bool) {
	builtinOnce.Do(func() {
		builtin, builtinErr = LoadDefs(builtinYAML)
	})
	if builtinErr != nil {
		panic(builtinErr)
	}
	fd, ok := builtin[id]
	return fd, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadDefs parses a YAML list of form definitions keyed by ID.
func LoadDefs(raw []byte) (map[string]*FormDef, error) {
	var defs []*FormDef
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse form YAML: %w", err)
	}
	out := make(map[string]*FormDef, len(defs))
	for _, fd := range defs {
		if err := validateFormDef(fd); err != nil {
			return nil, err
		}
		if _, dup := out[fd.ID]; dup {
			return nil, fmt.Errorf("form %s: duplicate id", fd.ID)
		}
		out[fd.ID] = fd
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

func validateFormDef(fd *FormDef) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition: missing required 'id'")
	}
	if fd.Source == "" {
		return fmt.Errorf("form %s: missing 'source'", fd.ID)
	}
	switch fd.Payload {
	case PayloadLead, PayloadBooking:
	default:
		return fmt.Errorf("form %s: unknown payload %q", fd.ID, fd.Payload)
	}
	if fd.Payload == PayloadBooking && !fd.Schedule {
		return fmt.Errorf("form %s: booking payload requires 'schedule: true'", fd.ID)
	}
	if fd.RateKey == "" {
		fd.RateKey = fd.ID
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form %s: must have 'fields'", fd.ID)
	}

	names := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(fd.ID, f); err != nil {
			return err
		}
		if f.Name == ScheduleKey || f.Name == SubmitKey || f.Name == PackageKey {
			return fmt.Errorf("form %s: field name %q is reserved", fd.ID, f.Name)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", fd.ID, f.Name)
		}
		names[f.Name] = struct{}{}
	}

	for _, need := range requiredFields(fd.Payload) {
		if _, ok := names[need]; !ok {
			return fmt.Errorf("form %s: %s payload needs field %q", fd.ID, fd.Payload, need)
		}
	}
	return nil
}

func validateField(formID string, f *FieldDef) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", formID)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", formID, f.Name)
	}
	if f.Type == "" {
		f.Type = "text"
	}
	switch f.Validator {
	case ValidateName, ValidateEmail, ValidatePhone, ValidateText:
	default:
		return fmt.Errorf("form %s: field '%s' unknown validator %q", formID, f.Name, f.Validator)
	}
	if f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' maxlength cannot be negative", formID, f.Name)
	}
	if f.Validator == ValidateName && f.MaxLength > sanitize.MaxNameLength {
		return fmt.Errorf("form %s: field '%s' maxlength above %d", formID, f.Name, sanitize.MaxNameLength)
	}
	for k := range f.Messages {
		switch k {
		case "empty", "too_long", "invalid_format":
		default:
			return fmt.Errorf("form %s: field '%s' unknown message key %q", formID, f.Name, k)
		}
	}
	return nil
}

func requiredFields(payload string) []string {
	if payload == PayloadLead {
		return []string{"name", "email", "phone", "recipient"}
	}
	return []string{"name", "email"}
}
