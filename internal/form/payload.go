// internal/form/payload.go
//
// Normalized records sent to the submission channel.  They are built fresh
// per attempt from Clean field values and checked with validator tags before
// they leave the process; a failure there is a programming error, not
// visitor input, and is treated like a transport failure.

package form

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/legacyfilm/internal/availability"
)

// isoMillis matches the ISO-8601 form browsers emit for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// PhoneNotProvided replaces an empty optional phone in lead payloads.
const PhoneNotProvided = "Not provided"

// LeadPayload is posted by the free-questions form.
type LeadPayload struct {
	Name      string `json:"name"      validate:"required,max=100"`
	Email     string `json:"email"     validate:"required"`
	Phone     string `json:"phone"     validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
	Source    string `json:"source"    validate:"required"`
}

// BookingPayload is posted by the booking form.
type BookingPayload struct {
	Name            string `json:"name"            validate:"required,max=100"`
	Email           string `json:"email"           validate:"required"`
	SelectedDate    string `json:"selectedDate"    validate:"required,datetime=2006-01-02"`
	SelectedTime    string `json:"selectedTime"    validate:"required"`
	BookingDateTime string `json:"bookingDateTime" validate:"required"`
	Package         string `json:"package"         validate:"required"`
	PackageID       string `json:"packageId"       validate:"required"`
	PackagePrice    string `json:"packagePrice"    validate:"required"`
	Timestamp       string `json:"timestamp"       validate:"required"`
	Source          string `json:"source"          validate:"required"`
}

var (
	vOnce sync.Once
	vInst *validator.Validate
)

func payloadValidator() *validator.Validate {
	vOnce.Do(func() { vInst = validator.New() })
	return vInst
}

// buildPayload assembles the record for fd from already-validated data.
func buildPayload(fd *FormDef, data FormData, s schedule, now time.Time, loc *time.Location) (any, error) {
	ts := now.UTC().Format(isoMillis)

	var p any
	switch fd.Payload {
	case PayloadLead:
		phone := data.clean("phone")
		if phone == "" {
			phone = PhoneNotProvided
		}
		p = &LeadPayload{
			Name:      data.clean("name"),
			Email:     data.clean("email"),
			Phone:     phone,
			Recipient: data.clean("recipient"),
			Timestamp: ts,
			Source:    fd.Source,
		}

	case PayloadBooking:
		if s.pkg == nil {
			return nil, fmt.Errorf("booking payload without package")
		}
		slot, err := availability.ParseSlot(s.slot)
		if err != nil {
			return nil, err
		}
		p = &BookingPayload{
			Name:            data.clean("name"),
			Email:           data.clean("email"),
			SelectedDate:    s.date.String(),
			SelectedTime:    s.slot,
			BookingDateTime: slot.On(s.date, loc).Format(time.RFC3339),
			Package:         s.pkg.Name,
			PackageID:       s.pkg.ID,
			PackagePrice:    s.pkg.Price,
			Timestamp:       ts,
			Source:          fd.Source,
		}

	default:
		return nil, fmt.Errorf("unknown payload kind %q", fd.Payload)
	}

	if err := payloadValidator().Struct(p); err != nil {
		return nil, fmt.Errorf("payload invariant: %w", err)
	}
	return p, nil
}
