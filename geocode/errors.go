// geocode/errors.go
package geocode

import "fmt"

// GeocodeError marks a provider-level failure (network, bad status,
// malformed response). An address that simply could not be resolved is
// not an error; Geocode returns a nil result for that.
type GeocodeError struct {
	Address string
	Op      string
	Err     error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocode %s failed for %q: %v", e.Op, e.Address, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }
