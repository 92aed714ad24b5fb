// internal/pricing/pricing.go
//
// Film package catalogue.
//
// Context
//   Three fixed packages are offered.  Prices are display strings ("$4,500")
//   because that is what the booking payload and the page show; ParsePrice
//   turns them into cents when a deposit has to be charged.
//
// Notes
//   •  The deposit is half the package price, rounded down to the cent.
//   •  All returns copies; callers cannot mutate the catalogue.
//
//------------------------------------------------------------------------------

package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Package is one bookable offering.
type Package struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Recommended bool     `json:"recommended,omitempty"`
}

var catalogue = []Package{
	{
		ID:          "essential",
		Name:        "Essential Legacy",
		Price:       "$2,000",
		Description: "Perfect for capturing a single powerful story or specific memory.",
		Features: []string{
			"1 Camera Angle (4K Cinema)",
			"60 Minute Interview Session",
			"Professional Audio Mastering",
			"5-8 Minute Edited Film",
			"Digital Delivery",
			"14-Day Delivery Window",
		},
	},
	{
		ID:          "signature",
		Name:        "Signature Story",
		Price:       "$4,500",
		Description: "Our most popular choice for a comprehensive life overview.",
		Recommended: true,
		Features: []string{
			"2 Camera Angles (Multi-cam)",
			"2 Hour Session",
			"Archival Scanning (up to 20)",
			"10-15 Minute Edited Film",
			"Digital + USB Keepsake",
			"1 Revision Round",
			"10-Day Delivery Window",
		},
	},
	{
		ID:          "masterpiece",
		Name:        "Generational Masterpiece",
		Price:       "$8,000",
		Description: "A complete cinematic documentary of a life well-lived.",
		Features: []string{
			"Multi-Day Shoot (2 Days)",
			"Archival Scanning (up to 75 photos)",
			"Location Scouting & Setup",
			"20+ Minute Documentary",
			"Director's Cut & Raw Footage",
			"Digital + USB Keepsake",
			"2 Revision Rounds",
			"7-Day Delivery Window",
		},
	},
}

// ErrUnknownPackage is returned for ids outside the catalogue.
var ErrUnknownPackage = errors.New("pricing: unknown package")

// All returns the catalogue in display order.
func All() []Package {
	out := make([]Package, len(catalogue))
	for i, p := range catalogue {
		out[i] = p.clone()
	}
	return out
}

// Lookup finds a package by id.
func Lookup(id string) (Package, error) {
	for _, p := range catalogue {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Package{}, fmt.Errorf("%w: %q", ErrUnknownPackage, id)
}

// ParsePrice reads "$4,500" or "$4,500.50" as cents.
func ParsePrice(s string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "$")
	raw = strings.ReplaceAll(raw, ",", "")
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" {
		return 0, fmt.Errorf("pricing: bad price %q", s)
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("pricing: bad price %q", s)
	}
	cents := dollars * 100
	if hasFrac {
		if len(frac) != 2 {
			return 0, fmt.Errorf("pricing: bad price %q", s)
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || c < 0 {
			return 0, fmt.Errorf("pricing: bad price %q", s)
		}
		cents += c
	}
	return cents, nil
}

// Cents is the full package price in cents.
func (p Package) Cents() (int64, error) { return ParsePrice(p.Price) }

// DepositCents is half the package price in cents.
func (p Package) DepositCents() (int64, error) {
	c, err := p.Cents()
	if err != nil {
		return 0, err
	}
	return c / 2, nil
}

func (p Package) clone() Package {
	p.Features = append([]string(nil), p.Features...)
	return p
}
