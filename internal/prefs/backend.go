package prefs

import "errors"

var (
	// ErrUnknownKey is returned when a setting name is not registered.
	ErrUnknownKey = errors.New("unknown setting")
	// ErrInvalidNamespace is returned by Open for an unusable namespace.
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrUnavailable wraps backend failures that prevent opening a store.
	ErrUnavailable = errors.New("storage region cannot be opened")
	// ErrTypeMismatch is returned by a backend when a stored value has a
	// different native type than the one requested.
	ErrTypeMismatch = errors.New("stored value has a different type")
	// ErrInvalidValue is returned for values no backend can persist, such
	// as non-finite floats.
	ErrInvalidValue = errors.New("invalid setting value")
)

// Backend abstracts the durable key/value storage behind a Store.
// Getters report ok=false when the key is absent; absence is not an error.
// Implementations must be safe for concurrent use.
type Backend interface {
	GetBool(key string) (val bool, ok bool, err error)
	GetInt(key string) (val int32, ok bool, err error)
	GetFloat(key string) (val float32, ok bool, err error)
	GetString(key string) (val string, ok bool, err error)
	SetBool(key string, val bool) error
	SetInt(key string, val int32) error
	SetFloat(key string, val float32) error
	SetString(key, val string) error
	Delete(key string) error
}

// OpenFunc binds a Backend to a namespace, creating the region if absent.
type OpenFunc func(namespace string) (Backend, error)
