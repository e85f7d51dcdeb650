package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Preference is one stored setting. Value holds the text encoding of the
// native value named by Kind ("bool", "int", "float" or "string").
type Preference struct {
	Namespace string
	Key       string
	Kind      string
	Value     string
	UpdatedAt time.Time
}
