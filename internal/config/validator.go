// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch aborts startup, so the binary never runs with a malformed
// webhook URL, an unknown limiter backend, or an unloadable time zone.
//
// Notes
// -----
//   • `required_if` ties the file path and DSN to the chosen backend.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns nil on success, or one error listing every failing
// field by its config path.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
	}
	return fmt.Errorf("config invalid: %s", strings.Join(msgs, ", "))
}
