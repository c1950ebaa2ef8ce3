package loader

import "sync"

// callbackSet groups the callbacks a single Load call registered for a URL.
type callbackSet struct {
	onLoad     func(any)
	onProgress func(ProgressEvent)
	onError    func(error)
}

// Registry tracks URLs with a fetch in flight so that concurrent loads of
// the same URL share one request instead of issuing duplicates.
//
// Each FileLoader owns a private Registry by default. Handing one Registry
// to several loaders with SetRegistry widens request coalescing to all of
// them:
//
//	reg := loader.NewRegistry()
//	a := loader.NewFileLoader(manager).SetRegistry(reg)
//	b := loader.NewFileLoader(manager).SetRegistry(reg)
//	// a.Load and b.Load of the same URL now share one request.
type Registry struct {
	mu      sync.Mutex
	pending map[string][]callbackSet
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string][]callbackSet)}
}

// Len returns the number of URLs with a fetch currently in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Active reports whether url currently has a fetch in flight.
func (r *Registry) Active(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[url]
	return ok
}

// join appends cbs to url's waiter queue. The caller that creates the
// queue becomes the owner and must run the fetch; owner is false for
// everyone who piggybacks afterwards.
func (r *Registry) join(url string, cbs callbackSet) (owner bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.pending[url]
	r.pending[url] = append(r.pending[url], cbs)
	return !exists
}

// take removes url's waiter queue and returns it in registration order.
// The entry is gone before the caller invokes anything, so a load issued
// from inside a delivered callback starts from a clean slate. ok is false
// when the queue was already taken.
func (r *Registry) take(url string) (callbacks []callbackSet, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	callbacks, ok = r.pending[url]
	delete(r.pending, url)
	return callbacks, ok
}

// snapshot returns a copy of url's current waiter queue without removing
// it. Used for progress fan-out, so waiters that join mid-stream receive
// the chunks that arrive after they joined.
func (r *Registry) snapshot(url string) []callbackSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.pending[url]
	if len(queue) == 0 {
		return nil
	}
	callbacks := make([]callbackSet, len(queue))
	copy(callbacks, queue)
	return callbacks
}
