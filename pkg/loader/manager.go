package loader

import (
	"regexp"
	"sync"
)

// Handler loads the resource behind a URL. It is implemented by FileLoader
// and by format-specific loaders built on top of it, so a Manager can
// route each URL to the loader registered for its pattern.
type Handler interface {
	// Load starts loading url and returns immediately. The cached value
	// is returned when one exists, nil otherwise. Exactly one of onLoad
	// and onError is called later for each Load call; onProgress may be
	// called any number of times before that.
	Load(url string, onLoad func(any), onProgress func(ProgressEvent), onError func(error)) any
}

// Manager tracks the items a group of loaders has in flight and notifies
// the application about the aggregate lifecycle.
//
// Loaders report to their Manager through ItemStart, ItemEnd and
// ItemError. The Manager counts one start/end pair per delivery, whether
// the item came from the network or the cache, and fires the aggregate
// callbacks:
//
//   - OnStart when a load begins while nothing else is in flight
//   - OnProgress after every finished item
//   - OnLoad when the last in-flight item finishes
//   - OnError for every failed item
//
// Set the callbacks before issuing loads; they are invoked from loader
// goroutines. A nil callback is skipped.
//
// Example:
//
//	manager := loader.NewManager()
//	manager.OnLoad = func() { fmt.Println("everything arrived") }
//	manager.OnError = func(url string) { fmt.Println("failed:", url) }
//
//	fl := loader.NewFileLoader(manager)
//	fl.Load("https://example.com/scene.json", onLoad, nil, onError)
type Manager struct {
	// OnStart is called when a load begins while no other item is in
	// flight. loaded and total are the item counts at that moment.
	OnStart func(url string, loaded, total int)

	// OnLoad is called when all in-flight items have finished.
	OnLoad func()

	// OnProgress is called after each finished item with the item counts.
	OnProgress func(url string, loaded, total int)

	// OnError is called for each item that failed.
	OnError func(url string)

	mu          sync.Mutex
	loading     bool
	itemsLoaded int
	itemsTotal  int
	urlModifier func(string) string
	handlers    []handlerEntry
}

type handlerEntry struct {
	pattern *regexp.Regexp
	handler Handler
}

// NewManager creates a Manager with no callbacks set.
func NewManager() *Manager {
	return &Manager{}
}

// ItemStart records that loading of url began. Loaders call it once per
// delivery before any callback runs.
func (m *Manager) ItemStart(url string) {
	m.mu.Lock()
	m.itemsTotal++
	starting := !m.loading
	m.loading = true
	loaded, total := m.itemsLoaded, m.itemsTotal
	onStart := m.OnStart
	m.mu.Unlock()

	if starting && onStart != nil {
		onStart(url, loaded, total)
	}
}

// ItemEnd records that loading of url finished, successfully or not.
// Every ItemStart is balanced by exactly one ItemEnd. When the last
// in-flight item ends, the counters reset and OnLoad fires.
func (m *Manager) ItemEnd(url string) {
	m.mu.Lock()
	m.itemsLoaded++
	loaded, total := m.itemsLoaded, m.itemsTotal
	onProgress := m.OnProgress
	var onLoad func()
	if m.itemsLoaded >= m.itemsTotal {
		m.loading = false
		m.itemsLoaded = 0
		m.itemsTotal = 0
		onLoad = m.OnLoad
	}
	m.mu.Unlock()

	if onProgress != nil {
		onProgress(url, loaded, total)
	}
	if onLoad != nil {
		onLoad()
	}
}

// ItemError records that loading of url failed. It does not replace the
// ItemEnd for that item.
func (m *Manager) ItemError(url string) {
	m.mu.Lock()
	onError := m.OnError
	m.mu.Unlock()

	if onError != nil {
		onError(url)
	}
}

// Progress returns the finished and total item counts of the burst in
// flight. Both are zero between bursts.
func (m *Manager) Progress() (loaded, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsLoaded, m.itemsTotal
}

// IsLoading reports whether any item is currently in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// SetURLModifier installs a function every loader URL is passed through
// before fetching. Useful for rewriting asset paths to a CDN, a local
// mirror or object-store signed URLs. Passing nil removes the modifier.
func (m *Manager) SetURLModifier(modifier func(url string) string) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urlModifier = modifier
	return m
}

// ResolveURL applies the installed URL modifier to url, or returns url
// unchanged when none is installed.
func (m *Manager) ResolveURL(url string) string {
	m.mu.Lock()
	modifier := m.urlModifier
	m.mu.Unlock()

	if modifier != nil {
		return modifier(url)
	}
	return url
}

// AddHandler registers handler for URLs matching pattern. Handlers are
// consulted in registration order by GetHandler.
func (m *Manager) AddHandler(pattern *regexp.Regexp, handler Handler) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handlerEntry{pattern: pattern, handler: handler})
	return m
}

// RemoveHandler unregisters the handler that was registered with pattern.
// The pattern is matched by identity, so pass the same *regexp.Regexp
// that was given to AddHandler.
func (m *Manager) RemoveHandler(pattern *regexp.Regexp) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, entry := range m.handlers {
		if entry.pattern == pattern {
			m.handlers = append(m.handlers[:i], m.handlers[i+1:]...)
			break
		}
	}
	return m
}

// GetHandler returns the first registered handler whose pattern matches
// url, or nil when none matches.
func (m *Manager) GetHandler(url string) Handler {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.handlers {
		if entry.pattern.MatchString(url) {
			return entry.handler
		}
	}
	return nil
}
