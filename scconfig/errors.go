package scconfig

import "fmt"

func errInvalidLength(field string, want, got int) error {
	return fmt.Errorf("scconfig: %s must decode to %d bytes, got %d", field, want, got)
}
