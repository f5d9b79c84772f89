package source

import "fmt"

// EntryError represents a service entry that cannot become a definition.
type EntryError struct {
	Service string
	Reason  string
	Err     error
}

func (e *EntryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s: %s: %v", e.Service, e.Reason, e.Err)
	}
	return fmt.Sprintf("service %s: %s", e.Service, e.Reason)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
