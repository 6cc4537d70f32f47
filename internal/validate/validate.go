// Package validate implements declarative payload validation.
//
// Each entity declares its shape as data — a []Rule table — and one
// generic interpreter (Apply) walks the table against the untyped
// request payload. The interpreter collects EVERY violation before
// returning, so a client posting three bad fields gets three messages
// in one round trip instead of fixing them one at a time.
//
// Apply has no side effects: it either yields a typed value bag the
// service can read safely, or the full violation list.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/nadhifra/portofolio-api/internal/apperror"
)

// Kind is the expected type of a field value.
type Kind int

const (
	String Kind = iota // plain string
	Email              // string with a parseable address
	Date               // string in RFC 3339 or YYYY-MM-DD form
	Bool               // JSON boolean
	Path               // managed upload path or absolute http(s) URL
)

// Rule declares the constraints for one field. Zero values mean "no
// constraint": MinLen/MaxLen of 0 are ignored, a nil Enum allows any
// value.
//
// Clearable permits an explicit empty string, which clears the stored
// value. Without it an empty string is a value like any other and must
// satisfy the field's checks — sending "" for an enum or email field
// is a violation, not a bypass.
type Rule struct {
	Field     string
	Kind      Kind
	Required  bool
	Clearable bool
	MinLen    int
	MaxLen    int
	Enum      []string
}

// Values is the typed value bag produced by a successful Apply.
// Fields absent from the payload are absent from the bag — Has
// distinguishes "not sent" from "sent as zero value", which partial
// updates rely on.
type Values map[string]any

// Has reports whether the field was present in the payload.
func (v Values) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// String returns the field as a string, or "" if absent.
func (v Values) String(field string) string {
	s, _ := v[field].(string)
	return s
}

// Bool returns the field as a bool, or false if absent.
func (v Values) Bool(field string) bool {
	b, _ := v[field].(bool)
	return b
}

// Time returns the field as a time.Time, or the zero time if absent.
func (v Values) Time(field string) time.Time {
	t, _ := v[field].(time.Time)
	return t
}

// dateLayouts are the accepted occurred-on date forms, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Apply checks every rule against the input payload and returns the
// typed values together with all violations found. The returned Values
// is only meaningful when the violation list is empty.
func Apply(rules []Rule, input map[string]any) (Values, []apperror.Violation) {
	values := make(Values, len(rules))
	var violations []apperror.Violation

	fail := func(field, format string, args ...any) {
		violations = append(violations, apperror.Violation{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, rule := range rules {
		raw, present := input[rule.Field]
		if !present || raw == nil {
			if rule.Required {
				fail(rule.Field, "%s is required", rule.Field)
			}
			continue
		}

		switch rule.Kind {
		case Bool:
			b, ok := raw.(bool)
			if !ok {
				fail(rule.Field, "%s must be a boolean", rule.Field)
				continue
			}
			values[rule.Field] = b

		case Date:
			s, ok := raw.(string)
			if !ok {
				fail(rule.Field, "%s must be a date string", rule.Field)
				continue
			}
			parsed, err := parseDate(strings.TrimSpace(s))
			if err != nil {
				fail(rule.Field, "%s must be an RFC 3339 or YYYY-MM-DD date", rule.Field)
				continue
			}
			values[rule.Field] = parsed

		case String, Email, Path:
			s, ok := raw.(string)
			if !ok {
				fail(rule.Field, "%s must be a string", rule.Field)
				continue
			}
			s = strings.TrimSpace(s)

			// A required field sent as whitespace is still missing.
			if s == "" && rule.Required {
				fail(rule.Field, "%s is required", rule.Field)
				continue
			}
			// Only a clearable field may use "" to wipe the stored
			// value; everywhere else an empty string faces the same
			// checks as any other value.
			if s == "" && rule.Clearable {
				values[rule.Field] = s
				continue
			}

			if rule.MinLen > 0 && len(s) < rule.MinLen {
				fail(rule.Field, "%s must be at least %d characters", rule.Field, rule.MinLen)
				continue
			}
			if rule.MaxLen > 0 && len(s) > rule.MaxLen {
				fail(rule.Field, "%s must be %d characters or less", rule.Field, rule.MaxLen)
				continue
			}
			if rule.Kind == Email {
				if _, err := mail.ParseAddress(s); err != nil {
					fail(rule.Field, "%s must be a valid email address", rule.Field)
					continue
				}
			}
			if rule.Kind == Path && !isReference(s) {
				fail(rule.Field, "%s must be an uploaded file path or an absolute URL", rule.Field)
				continue
			}
			if len(rule.Enum) > 0 && !contains(rule.Enum, s) {
				fail(rule.Field, "%s must be one of: %s", rule.Field, strings.Join(rule.Enum, ", "))
				continue
			}
			values[rule.Field] = s
		}
	}

	return values, violations
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// isReference accepts the two shapes a stored file reference may take:
// a path under the managed upload prefix, or an absolute http(s) URL.
// Anything else (relative paths, other schemes, free text) is junk
// that would sit in the record as a dead pointer.
func isReference(s string) bool {
	if strings.HasPrefix(s, "/uploads/") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(set []string, s string) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
