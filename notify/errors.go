// notify/errors.go
package notify

import "fmt"

// DispatchError marks a delivery failure against one downstream
// transport. Per-subscriber failures are isolated: one subscriber's
// dispatch error never aborts the fan-out loop.
type DispatchError struct {
	Channel string
	Op      string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch via %s failed (%s): %v", e.Channel, e.Op, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
