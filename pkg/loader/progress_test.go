package loader

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

func TestProgressReader_ReportsChunks(t *testing.T) {
	var events []ProgressEvent
	pr := &ProgressReader{
		Reader:   bytes.NewReader([]byte("hello world")),
		Total:    11,
		OnUpdate: func(ev ProgressEvent) { events = append(events, ev) },
	}

	buf := make([]byte, 4)
	data, err := readAllWith(pr, buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("read %q, want %q", data, "hello world")
	}

	if len(events) == 0 {
		t.Fatal("no progress events emitted")
	}

	var prev int64
	for i, ev := range events {
		if ev.Loaded <= prev && i > 0 {
			t.Errorf("event %d: Loaded = %d, not increasing from %d", i, ev.Loaded, prev)
		}
		if !ev.SizeKnown || ev.Total != 11 {
			t.Errorf("event %d: Total = %d, SizeKnown = %v, want 11, true", i, ev.Total, ev.SizeKnown)
		}
		prev = ev.Loaded
	}
	if last := events[len(events)-1]; last.Loaded != 11 {
		t.Errorf("final Loaded = %d, want 11", last.Loaded)
	}
}

func TestProgressReader_UnknownTotal(t *testing.T) {
	var events []ProgressEvent
	pr := &ProgressReader{
		Reader:   bytes.NewReader([]byte("data")),
		OnUpdate: func(ev ProgressEvent) { events = append(events, ev) },
	}

	if _, err := io.ReadAll(pr); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	for i, ev := range events {
		if ev.SizeKnown || ev.Total != 0 {
			t.Errorf("event %d: Total = %d, SizeKnown = %v, want 0, false", i, ev.Total, ev.SizeKnown)
		}
	}
}

func TestProgressReader_NilCallback(t *testing.T) {
	pr := &ProgressReader{Reader: bytes.NewReader([]byte("data"))}
	if _, err := io.ReadAll(pr); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if pr.Loaded != 4 {
		t.Errorf("Loaded = %d, want 4", pr.Loaded)
	}
}

func TestResponseTotal(t *testing.T) {
	tests := []struct {
		name          string
		sizeHeader    string
		contentLength int64
		want          int64
	}{
		{"content length only", "", 512, 512},
		{"size header wins", "2048", 512, 2048},
		{"size header without content length", "2048", -1, 2048},
		{"nothing declared", "", -1, 0},
		{"malformed size header", "soon", 512, 512},
		{"zero size header ignored", "0", 512, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				Header:        http.Header{},
				ContentLength: tt.contentLength,
			}
			if tt.sizeHeader != "" {
				resp.Header.Set("X-File-Size", tt.sizeHeader)
			}

			if got := responseTotal(resp); got != tt.want {
				t.Errorf("responseTotal() = %d, want %d", got, tt.want)
			}
		})
	}
}

// readAllWith reads pr to EOF using the caller's buffer size, so tests
// control how many chunks the reader sees.
func readAllWith(r io.Reader, buf []byte) ([]byte, error) {
	var out []byte
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
