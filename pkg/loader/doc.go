// Package loader provides asynchronous URL resource loading with result
// caching, request coalescing and byte-level progress reporting.
//
// # FileLoader
//
// FileLoader is the entry point. Load starts a fetch and returns
// immediately; the decoded result is delivered to callbacks later:
//
//	manager := loader.NewManager()
//	fl := loader.NewFileLoader(manager).
//	    SetCache(loader.NewMemoryCache()).
//	    SetResponseType(loader.ResponseTypeJSON)
//
//	fl.Load("https://assets.example.com/scene.json",
//	    func(v any) { /* decoded JSON */ },
//	    func(ev loader.ProgressEvent) { /* bytes so far */ },
//	    func(err error) { /* failed */ },
//	)
//
// Exactly one of onLoad and onError runs per Load call, always after all
// progress events for that call and never synchronously inside Load.
// Fetch is the blocking form for callers that prefer a plain return
// value:
//
//	v, err := fl.Fetch(ctx, "https://assets.example.com/scene.json")
//
// # Response Types
//
// SetResponseType selects what onLoad receives:
//
//	ResponseTypeText      string, optionally charset-decoded
//	ResponseTypeBytes     []byte
//	ResponseTypeBlob      *Blob with data and content type
//	ResponseTypeDocument  *html.Node parse tree
//	ResponseTypeJSON      any from encoding/json
//
// # Caching
//
// The Cache interface stores decoded results keyed by resolved URL.
// Caching is off until a cache is injected; NewMemoryCache provides the
// obvious in-memory implementation. Successful results are stored before
// delivery, failures never are, so errors are always retried.
//
// # Request Coalescing
//
// Loads of a URL that is already being fetched do not issue a second
// request; their callbacks join the in-flight fetch and are delivered in
// arrival order when it settles. A Registry scopes this deduplication
// and can be shared between loaders.
//
// # Managers
//
// A Manager observes the items its loaders have in flight and fires
// aggregate callbacks: OnStart when loading leaves idle, OnProgress per
// finished item, OnLoad when everything has drained, OnError per failed
// item. It also resolves URLs through an optional modifier and routes
// URLs to registered handlers by pattern.
//
// # Errors
//
// Failures arrive at onError as one of three types, all matchable with
// errors.As: *NetworkError when the transfer itself broke,
// *HTTPStatusError when the server answered with a non-success status,
// and *DecodeError when the body could not be converted to the requested
// representation.
package loader
