package appointment

import "fmt"

// StorageError reports an unreadable or corrupt backing file. Callers must not
// write over the file while one of these is outstanding.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("appointment store %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
