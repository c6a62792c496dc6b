// database/errors.go
package database

import "fmt"

// PersistenceError marks a store-level failure. Mid-reconciliation it
// is fatal to the cycle: the transaction rolls back and the cycle is a
// no-op, retried on the next scheduled run.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
