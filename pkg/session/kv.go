package session

import "sync"

// KV is the shared key-value substrate behind the session store. In a
// browser this is localStorage plus storage events; MemoryKV provides the
// same semantics in-process for servers and tests.
//
// Watch callbacks fire only for changes made by OTHER contexts, matching
// browser storage-event semantics: a context never hears its own writes.
type KV interface {
	Get(key string) (value string, ok bool)
	Set(key, value string)
	Delete(key string)
	Watch(fn func(key string)) (cancel func())
}

// MemorySubstrate is a shared in-memory key space. Each context obtains its
// own KV handle via NewContext; writes through one handle notify watchers on
// every other handle.
type MemorySubstrate struct {
	mu      sync.Mutex
	data    map[string]string
	handles map[*MemoryKV]struct{}
}

// NewMemorySubstrate creates an empty substrate.
func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{
		data:    make(map[string]string),
		handles: make(map[*MemoryKV]struct{}),
	}
}

// NewContext returns a KV handle representing one client context.
func (s *MemorySubstrate) NewContext() *MemoryKV {
	kv := &MemoryKV{substrate: s}
	s.mu.Lock()
	s.handles[kv] = struct{}{}
	s.mu.Unlock()
	return kv
}

func (s *MemorySubstrate) set(origin *MemoryKV, key, value string) {
	s.mu.Lock()
	s.data[key] = value
	watchers := s.otherWatchers(origin)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(key)
	}
}

func (s *MemorySubstrate) delete(origin *MemoryKV, key string) {
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	var watchers []func(string)
	if existed {
		watchers = s.otherWatchers(origin)
	}
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(key)
	}
}

// otherWatchers snapshots the watch callbacks of every handle except origin.
// Caller holds s.mu.
func (s *MemorySubstrate) otherWatchers(origin *MemoryKV) []func(string) {
	var out []func(string)
	for h := range s.handles {
		if h == origin {
			continue
		}
		h.mu.Lock()
		for _, fn := range h.watchers {
			out = append(out, fn)
		}
		h.mu.Unlock()
	}
	return out
}

// MemoryKV is one context's handle onto a MemorySubstrate.
type MemoryKV struct {
	substrate *MemorySubstrate

	mu       sync.Mutex
	watchers map[int]func(key string)
	nextID   int
}

func (kv *MemoryKV) Get(key string) (string, bool) {
	kv.substrate.mu.Lock()
	defer kv.substrate.mu.Unlock()
	v, ok := kv.substrate.data[key]
	return v, ok
}

func (kv *MemoryKV) Set(key, value string) {
	kv.substrate.set(kv, key, value)
}

func (kv *MemoryKV) Delete(key string) {
	kv.substrate.delete(kv, key)
}

func (kv *MemoryKV) Watch(fn func(key string)) func() {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.watchers == nil {
		kv.watchers = make(map[int]func(string))
	}
	id := kv.nextID
	kv.nextID++
	kv.watchers[id] = fn
	return func() {
		kv.mu.Lock()
		defer kv.mu.Unlock()
		delete(kv.watchers, id)
	}
}
