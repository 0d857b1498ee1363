// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `LoadFrom` calls `validateStruct` immediately after it unmarshals and
// defaults the merged Koanf tree.  Any tag mismatch aborts startup, so the
// binary never runs with partial or malformed configuration.

package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
