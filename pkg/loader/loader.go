package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// FileLoader loads the resource behind a URL and delivers it to callbacks
// as text, raw bytes, a blob, a parsed document or unmarshalled JSON.
//
// FileLoader provides:
//   - Result caching through an injectable Cache
//   - Coalescing of concurrent loads of the same URL into one request
//   - Byte-level progress reporting while the body streams in
//   - Decoding into the representation selected with SetResponseType
//
// Configuration uses chainable setters:
//
//	fl := loader.NewFileLoader(manager).
//	    SetCache(loader.NewMemoryCache()).
//	    SetResponseType(loader.ResponseTypeJSON).
//	    SetRequestHeader(map[string]string{"Authorization": "Bearer ..."})
//
//	fl.Load("https://example.com/scene.json",
//	    func(v any) { scene := v.(map[string]any); _ = scene },
//	    func(ev loader.ProgressEvent) { fmt.Println(ev.Loaded, "bytes") },
//	    func(err error) { fmt.Println("load failed:", err) },
//	)
//
// A FileLoader is safe for concurrent use. Setters configure future calls
// only: every Load snapshots the configuration first, so requests already
// in flight are not affected.
type FileLoader struct {
	manager *Manager

	mu              sync.Mutex
	cache           Cache
	registry        *Registry
	client          *http.Client
	logger          *slog.Logger
	ctx             context.Context
	path            string
	responseType    ResponseType
	mimeType        string
	requestHeaders  map[string]string
	withCredentials bool
}

var _ Handler = (*FileLoader)(nil)

// fetchContext freezes one Load call's view of the loader configuration,
// so setter calls made while the fetch runs cannot change its behavior.
type fetchContext struct {
	url          string
	responseType ResponseType
	mimeType     string
	headers      map[string]string
	client       *http.Client
	cache        Cache
	registry     *Registry
	logger       *slog.Logger
	ctx          context.Context
}

// NewFileLoader creates a FileLoader reporting to manager. A nil manager
// gets a private one, so item callbacks are simply unobserved.
//
// The loader starts with caching disabled (NoopCache); inject a cache
// with SetCache to keep results. The default HTTP client uses a 60 second
// timeout.
func NewFileLoader(manager *Manager) *FileLoader {
	if manager == nil {
		manager = NewManager()
	}
	return &FileLoader{
		manager:  manager,
		cache:    NoopCache{},
		registry: NewRegistry(),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
}

// Manager returns the manager this loader reports to.
func (l *FileLoader) Manager() *Manager {
	return l.manager
}

// SetCache installs the cache loads are served from and stored into.
// A nil cache disables caching.
func (l *FileLoader) SetCache(cache Cache) *FileLoader {
	if cache == nil {
		cache = NoopCache{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = cache
	return l
}

// SetRegistry installs the in-flight registry used for request
// coalescing. Sharing one Registry between loaders coalesces across all
// of them. A nil registry gets a private fresh one.
func (l *FileLoader) SetRegistry(registry *Registry) *FileLoader {
	if registry == nil {
		registry = NewRegistry()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registry = registry
	return l
}

// SetHTTPClient installs the HTTP client requests are issued with. Use it
// to supply custom transports, proxies or timeouts.
func (l *FileLoader) SetHTTPClient(client *http.Client) *FileLoader {
	if client == nil {
		return l
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.client = client
	return l
}

// SetLogger installs the logger for load diagnostics.
func (l *FileLoader) SetLogger(logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.Default()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = logger
	return l
}

// SetContext installs the context future requests are issued with.
// Cancelling it aborts the transfers; the queued callbacks then receive a
// *NetworkError wrapping the cancellation.
func (l *FileLoader) SetContext(ctx context.Context) *FileLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ctx = ctx
	return l
}

// SetPath installs a prefix prepended to every URL passed to Load,
// typically the base location assets are relative to.
func (l *FileLoader) SetPath(path string) *FileLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = path
	return l
}

// SetResponseType selects the representation delivered to onLoad.
func (l *FileLoader) SetResponseType(responseType ResponseType) *FileLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.responseType = responseType
	return l
}

// SetMimeType overrides the response's Content-Type for decoding. For
// ResponseTypeText a charset parameter selects the source encoding, e.g.
// "text/plain; charset=latin-1". For ResponseTypeDocument it selects
// HTML or strict XML parsing.
func (l *FileLoader) SetMimeType(mimeType string) *FileLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mimeType = mimeType
	return l
}

// SetRequestHeader replaces the set of headers sent with every request.
func (l *FileLoader) SetRequestHeader(headers map[string]string) *FileLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requestHeaders = headers
	return l
}

// SetWithCredentials controls whether the HTTP client's cookie jar rides
// along with requests. When false, requests are issued without a jar, so
// no stored cookies are sent and Set-Cookie responses are discarded.
func (l *FileLoader) SetWithCredentials(withCredentials bool) *FileLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.withCredentials = withCredentials
	return l
}

// Load starts loading url and returns immediately.
//
// The URL is prefixed with the path set by SetPath, then passed through
// the manager's URL modifier. If the resolved URL is cached, the cached
// value is returned right away and additionally delivered to onLoad from
// another goroutine. If a fetch for it is already in flight, the
// callbacks join its waiter queue and no second request is issued.
// Otherwise a fetch starts on a new goroutine.
//
// Parameters:
//   - url: URL to load
//   - onLoad: called with the decoded value on success
//   - onProgress: called with a ProgressEvent per received chunk
//   - onError: called with the failure on error
//
// Any callback may be nil. Exactly one of onLoad and onError is invoked
// per Load call, after all of that call's progress events. Callbacks run
// on loader goroutines, never synchronously inside Load; waiters of a
// shared fetch are delivered in Load order.
//
// Returns the cached value when the URL was served from the cache, nil
// otherwise. The returned value is a convenience for callers that can
// use a result early; delivery happens through onLoad in every case.
func (l *FileLoader) Load(url string, onLoad func(any), onProgress func(ProgressEvent), onError func(error)) any {
	fc := l.snapshot(url)

	if value, ok := fc.cache.Get(fc.url); ok {
		l.manager.ItemStart(fc.url)
		go func() {
			defer l.manager.ItemEnd(fc.url)
			defer func() {
				if r := recover(); r != nil {
					l.manager.ItemError(fc.url)
					fc.logger.Error("panic during cached delivery", "url", fc.url, "error", r)
				}
			}()
			if onLoad != nil {
				onLoad(value)
			}
		}()
		return value
	}

	cbs := callbackSet{onLoad: onLoad, onProgress: onProgress, onError: onError}
	if owner := fc.registry.join(fc.url, cbs); !owner {
		// Piggyback on the in-flight fetch for this URL.
		return nil
	}

	l.manager.ItemStart(fc.url)
	go l.run(fc)
	return nil
}

// Fetch loads url and blocks until the result is available. It is the
// one-shot form of Load and shares its cache and request coalescing.
//
// ctx bounds the wait only: when it expires, Fetch returns ctx.Err() but
// the underlying transfer keeps running for any other waiters and may
// still populate the cache. Use SetContext to bound transfers themselves.
func (l *FileLoader) Fetch(ctx context.Context, url string) (any, error) {
	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)

	l.Load(url,
		func(value any) { done <- result{value: value} },
		nil,
		func(err error) { done <- result{err: err} },
	)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

// snapshot resolves url and freezes the loader configuration for one
// load.
func (l *FileLoader) snapshot(url string) fetchContext {
	l.mu.Lock()
	defer l.mu.Unlock()

	headers := make(map[string]string, len(l.requestHeaders))
	for k, v := range l.requestHeaders {
		headers[k] = v
	}

	client := l.client
	if !l.withCredentials && client.Jar != nil {
		// Issue the request with a jarless copy so no credentials ride
		// along.
		clone := *client
		clone.Jar = nil
		client = &clone
	}

	ctx := l.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	return fetchContext{
		url:          l.manager.ResolveURL(l.path + url),
		responseType: l.responseType,
		mimeType:     l.mimeType,
		headers:      headers,
		client:       client,
		cache:        l.cache,
		registry:     l.registry,
		logger:       l.logger,
		ctx:          ctx,
	}
}

// run performs one fetch and settles every waiter registered for fc.url.
func (l *FileLoader) run(fc fetchContext) {
	defer l.manager.ItemEnd(fc.url)
	defer func() {
		if r := recover(); r != nil {
			l.fail(fc, fmt.Errorf("panic during delivery for %q: %v", fc.url, r))
		}
	}()

	value, err := l.fetch(fc)
	if err != nil {
		l.fail(fc, err)
		return
	}

	// Store before delivering, so a load issued from inside a callback is
	// served from the cache instead of starting over.
	fc.cache.Add(fc.url, value)

	callbacks, _ := fc.registry.take(fc.url)
	for _, cb := range callbacks {
		if cb.onLoad != nil {
			cb.onLoad(value)
		}
	}
}

// fetch issues the request and returns the decoded payload.
func (l *FileLoader) fetch(fc fetchContext) (any, error) {
	req, err := http.NewRequestWithContext(fc.ctx, http.MethodGet, fc.url, nil)
	if err != nil {
		return nil, &NetworkError{URL: fc.url, Err: err}
	}
	for k, v := range fc.headers {
		req.Header.Set(k, v)
	}

	resp, err := fc.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: fc.url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == 0:
		// Some non-HTTP transport schemes report status 0 for success.
		fc.logger.Warn("HTTP status 0 received", "url", fc.url)
	default:
		finalURL := fc.url
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}
		return nil, &HTTPStatusError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			URL:        finalURL,
		}
	}

	pr := &ProgressReader{
		Reader: resp.Body,
		Total:  responseTotal(resp),
		OnUpdate: func(ev ProgressEvent) {
			for _, cb := range fc.registry.snapshot(fc.url) {
				if cb.onProgress != nil {
					cb.onProgress(ev)
				}
			}
		},
	}

	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, &NetworkError{URL: fc.url, Err: err}
	}

	return decodeResponse(data, fc.responseType, fc.mimeType, resp.Header.Get("Content-Type"), fc.url)
}

// fail settles every waiter of fc.url with err. When the waiter queue is
// already drained the error happened after settlement, inside a delivered
// callback; with nobody left to notify it goes to the manager and the
// log.
func (l *FileLoader) fail(fc fetchContext, err error) {
	callbacks, ok := fc.registry.take(fc.url)
	if !ok {
		l.manager.ItemError(fc.url)
		fc.logger.Error("load failed with no pending callbacks", "url", fc.url, "error", err)
		return
	}

	for _, cb := range callbacks {
		if cb.onError != nil {
			cb.onError(err)
		}
	}
	l.manager.ItemError(fc.url)
}
