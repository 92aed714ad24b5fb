// internal/sanitize/sanitize.go
//
// Free-text sanitizing and per-field validators.
//
// Context
//   Every value a visitor types passes through Sanitize before it is checked
//   or forwarded.  Sanitize removes markup and script vectors, then encodes
//   the characters that matter inside HTML text.  The output is safe for HTML
//   text context only.  Attribute, URL, or script contexts need their own
//   escaping downstream.
//
// Workflow
//   •  Trim, then strip <, >, "javascript:", and on*= handlers.  Stripping is
//      repeated until nothing changes so fragments cannot rejoin into a
//      pattern that was just removed (e.g. "javajavascript:script:").
//   •  Encode &, ", ', and /.  Every & is encoded, including one that already
//      opens an entity, so a second pass re-encodes.  Sanitize(Sanitize(x))
//      equals Sanitize(x) only when x holds none of those four characters.
//   •  Field validators build on Sanitize and return *Error on rejection.
//
//------------------------------------------------------------------------------

package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits shared with the form definitions.
const (
	MaxNameLength = 100
	MaxTextLength = 500
)

var (
	reScheme  = regexp.MustCompile(`(?i)javascript:`)
	reHandler = regexp.MustCompile(`(?i)on\w+=`)
	reEmail   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	rePhone   = regexp.MustCompile(`^[\d\s\-()]+$`)

	angles = strings.NewReplacer("<", "", ">", "")
)

// -----------------------------------------------------------------------------
// Sanitize
// -----------------------------------------------------------------------------

// Sanitize strips dangerous sequences from raw and HTML-encodes the rest.
func Sanitize(raw string) string {
	s := raw
	for {
		prev := s
		s = strings.TrimSpace(s)
		s = angles.Replace(s)
		s = reScheme.ReplaceAllString(s, "")
		s = reHandler.ReplaceAllString(s, "")
		if s == prev {
			break
		}
	}
	return encode(s)
}

// encode writes the entity form of &, ", ', and /.
func encode(s string) string {
	if !strings.ContainsAny(s, `&"'/`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		case '/':
			b.WriteString("&#x2F;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Field validators
// -----------------------------------------------------------------------------

// ValidateEmail sanitizes raw and requires a local@domain.tld shape.  The
// accepted address is returned lower-cased, entities included (a "/" comes
// back as "&#x2f;"), so the result is final and not meant to be sanitized
// again.
func ValidateEmail(raw string) (string, error) {
	s := Sanitize(raw)
	if s == "" {
		return "", fail(Empty)
	}
	if !reEmail.MatchString(s) {
		return "", fail(InvalidFormat)
	}
	return strings.ToLower(s), nil
}

// ValidatePhone accepts the empty string unchanged (the field is optional).
// Anything else must be digits, spaces, hyphens, or parentheses and carry at
// least ten digits.
func ValidatePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	s := Sanitize(raw)
	if !rePhone.MatchString(s) || countDigits(s) < 10 {
		return "", fail(InvalidFormat)
	}
	return s, nil
}

// ValidateName requires a non-empty value of at most MaxNameLength runes.
func ValidateName(raw string) (string, error) {
	return bounded(raw, MaxNameLength)
}

// ValidateText requires a non-empty value of at most max runes.  A max of
// zero or less selects MaxTextLength.
func ValidateText(raw string, max int) (string, error) {
	if max <= 0 {
		max = MaxTextLength
	}
	return bounded(raw, max)
}

func bounded(raw string, max int) (string, error) {
	s := Sanitize(raw)
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "", fail(Empty)
	}
	if n > max {
		return "", tooLong(max)
	}
	return s, nil
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
