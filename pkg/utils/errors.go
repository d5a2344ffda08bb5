// Package utils provides small error-wrapping and environment-variable
// helpers shared by pkg/config and the cmd/ entrypoints.
package utils

import "fmt"

// Wrap adds context to an error message. It returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
