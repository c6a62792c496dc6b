// scraper/errors.go
package scraper

import (
	"errors"
	"fmt"
)

// FetchError marks a failure of the scrape cycle itself: network error,
// non-2xx response, or a page that yielded no usable addresses. A fetch
// error is fatal to the current cycle; nothing downstream may treat it
// as "all cameras removed".
type FetchError struct {
	URL string
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape %s failed for %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("scrape %s failed for %s", e.Op, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Err }

type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("received status code %d", e.Code)
}

var errNoAddresses = errors.New("no addresses could be extracted from page")
