// internal/form/validate.go
//
// Forms subsystem: per-field validation and sanitization.
//
// Context
//   On every submit attempt each field of the definition runs through the
//   sanitize validator it names.  Failures are collected, never
//   short-circuited, so the visitor sees every problem at once.  On success
//   the field's Clean value is what the payload carries.
//
// Workflow
//   •  validateFields walks FormData in definition order and fills Clean or
//      Error on each field, returning the error map.
//   •  Optional fields left empty pass with Clean == "".
//   •  checkSchedule adds the booking-only package, date, and slot checks.
//
//------------------------------------------------------------------------------

package form

import (
	"time"

	"github.com/yanizio/legacyfilm/internal/availability"
	"github.com/yanizio/legacyfilm/internal/pricing"
	"github.com/yanizio/legacyfilm/internal/sanitize"
)

// validateFields updates data in place and returns name → message for every
// failing field.  The map is empty when all fields pass.
func validateFields(fd *FormDef, data FormData) map[string]string {
	errs := make(map[string]string)
	for _, def := range fd.Fields {
		f := data.find(def.Name)
		if f == nil {
			continue
		}
		f.Clean, f.Error = "", ""

		clean, err := runValidator(&def, f.Raw)
		if err != nil {
			f.Error = def.Message(sanitize.KindOf(err), maxFor(&def))
			errs[def.Name] = f.Error
			continue
		}
		f.Clean = clean
	}
	return errs
}

func runValidator(def *FieldDef, raw string) (string, error) {
	if !def.Required && raw == "" {
		return "", nil
	}
	switch def.Validator {
	case ValidateEmail:
		return sanitize.ValidateEmail(raw)
	case ValidatePhone:
		return sanitize.ValidatePhone(raw)
	case ValidateName:
		if def.MaxLength > 0 {
			return sanitize.ValidateText(raw, def.MaxLength)
		}
		return sanitize.ValidateName(raw)
	default:
		return sanitize.ValidateText(raw, def.MaxLength)
	}
}

func maxFor(def *FieldDef) int {
	switch {
	case def.MaxLength > 0:
		return def.MaxLength
	case def.Validator == ValidateName:
		return sanitize.MaxNameLength
	default:
		return sanitize.MaxTextLength
	}
}

// schedule is the booking selection carried by the controller.
type schedule struct {
	pkg  *pricing.Package
	date availability.Date
	slot string
}

// checkSchedule adds reserved-key errors for an incomplete or unavailable
// booking selection.  now is taken in the business location.
func checkSchedule(s schedule, now time.Time, errs map[string]string) {
	if s.pkg == nil {
		errs[PackageKey] = MsgPackageNeeded
	}
	if s.date.IsZero() || s.slot == "" {
		errs[ScheduleKey] = MsgScheduleNeeded
		return
	}
	if !availability.IsDateSelectable(s.date, now) || !availability.IsSlotOffered(s.date, s.slot) {
		errs[ScheduleKey] = MsgScheduleTaken
	}
}
