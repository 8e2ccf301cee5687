package domain

import "fmt"

// NotFoundError reports a record that does not exist. ID is zero when the
// lookup was not by id.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "record"
	}
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", resource, e.ID)
	}
	return fmt.Sprintf("%s not found", resource)
}

// Is matches any NotFoundError, whatever the resource or id.
func (e NotFoundError) Is(target error) bool {
	switch target.(type) {
	case NotFoundError, *NotFoundError:
		return true
	}
	return false
}

var ErrNotFound = NotFoundError{}
