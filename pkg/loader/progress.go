package loader

import (
	"io"
	"net/http"
	"strconv"
)

// sizeHeader overrides Content-Length when present. Proxies that re-chunk
// a response strip Content-Length, so origin servers can declare the real
// payload size in this header instead.
const sizeHeader = "X-File-Size"

// ProgressEvent is a snapshot of a transfer in progress.
type ProgressEvent struct {
	// Loaded is the cumulative number of body bytes received so far.
	Loaded int64

	// Total is the expected body size in bytes, 0 when unknown.
	Total int64

	// SizeKnown reports whether Total carries a real size. When false the
	// transfer length was not declared and Loaded is the only usable field.
	SizeKnown bool
}

// ProgressReader wraps a reader to report streaming progress.
//
// Use this to monitor large transfers by providing an OnUpdate callback
// that receives the running byte count after every chunk, before the
// chunk is consumed downstream.
//
// Example:
//
//	pr := &ProgressReader{
//	    Reader: response.Body,
//	    Total:  response.ContentLength,
//	    OnUpdate: func(ev ProgressEvent) {
//	        fmt.Printf("%d / %d bytes\n", ev.Loaded, ev.Total)
//	    },
//	}
//	data, err := io.ReadAll(pr)
type ProgressReader struct {
	// Reader is the underlying reader to pull data from.
	Reader io.Reader

	// Total is the expected total bytes, 0 when unknown.
	Total int64

	// Loaded is the cumulative number of bytes read so far.
	Loaded int64

	// OnUpdate is called after each non-empty read with the current
	// progress.
	OnUpdate func(ProgressEvent)
}

// Read implements io.Reader, tracking progress and calling OnUpdate.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	if n > 0 {
		pr.Loaded += int64(n)
		if pr.OnUpdate != nil {
			pr.OnUpdate(ProgressEvent{
				Loaded:    pr.Loaded,
				Total:     pr.Total,
				SizeKnown: pr.Total > 0,
			})
		}
	}
	return n, err
}

// responseTotal returns the expected body size of resp, or 0 when the
// response declares none. The X-File-Size header wins over Content-Length.
func responseTotal(resp *http.Response) int64 {
	if v := resp.Header.Get(sizeHeader); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	return 0
}
