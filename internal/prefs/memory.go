package prefs

import "sync"

// MemoryRegistry holds in-memory storage regions by namespace. Backends
// opened for the same namespace share one region, so a registry stands in
// for process-wide preference storage.
type MemoryRegistry struct {
	mu      sync.Mutex
	regions map[string]*values
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{regions: make(map[string]*values)}
}

// Open returns a backend bound to namespace, creating the region if absent.
func (r *MemoryRegistry) Open(namespace string) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.regions[namespace]
	if !ok {
		v = newValues()
		r.regions[namespace] = v
	}
	return &MemoryBackend{vals: v}, nil
}

// MemoryBackend keeps values in process memory only.
type MemoryBackend struct {
	vals *values
}

// NewMemoryBackend returns an unshared, empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{vals: newValues()}
}

func (b *MemoryBackend) GetBool(key string) (bool, bool, error) {
	return b.vals.getBool(key)
}

func (b *MemoryBackend) GetInt(key string) (int32, bool, error) {
	return b.vals.getInt(key)
}

func (b *MemoryBackend) GetFloat(key string) (float32, bool, error) {
	return b.vals.getFloat(key)
}

func (b *MemoryBackend) GetString(key string) (string, bool, error) {
	return b.vals.getString(key)
}

func (b *MemoryBackend) SetBool(key string, val bool) error {
	b.vals.set(key, val)
	return nil
}

func (b *MemoryBackend) SetInt(key string, val int32) error {
	b.vals.set(key, val)
	return nil
}

func (b *MemoryBackend) SetFloat(key string, val float32) error {
	b.vals.set(key, val)
	return nil
}

func (b *MemoryBackend) SetString(key, val string) error {
	b.vals.set(key, val)
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.vals.delete(key)
	return nil
}
