package loader

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestDecodeResponse_Text(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		want     string
	}{
		{"plain utf-8", []byte("hello"), "", "hello"},
		{"mime without charset", []byte("hello"), "text/plain", "hello"},
		{"explicit utf-8", []byte("héllo"), "text/plain; charset=utf-8", "héllo"},
		{"latin-1 bytes", []byte("caf\xe9"), "text/plain; charset=iso-8859-1", "café"},
		{"windows-1252 alias", []byte("caf\xe9"), "text/plain; charset=latin1", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decodeResponse(tt.data, ResponseTypeText, tt.mimeType, "", "http://x/doc")
			if err != nil {
				t.Fatalf("decodeResponse() error: %v", err)
			}
			if got, ok := v.(string); !ok || got != tt.want {
				t.Errorf("decodeResponse() = %v (%T), want %q", v, v, tt.want)
			}
		})
	}
}

func TestDecodeResponse_UnsupportedCharset(t *testing.T) {
	_, err := decodeResponse([]byte("x"), ResponseTypeText, "text/plain; charset=klingon", "", "http://x/doc")

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decodeErr.URL != "http://x/doc" {
		t.Errorf("DecodeError.URL = %q, want %q", decodeErr.URL, "http://x/doc")
	}
}

func TestDecodeResponse_Bytes(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10}
	v, err := decodeResponse(data, ResponseTypeBytes, "", "application/octet-stream", "http://x/bin")
	if err != nil {
		t.Fatalf("decodeResponse() error: %v", err)
	}

	got, ok := v.([]byte)
	if !ok {
		t.Fatalf("decodeResponse() returned %T, want []byte", v)
	}
	if string(got) != string(data) {
		t.Errorf("decodeResponse() = % x, want % x", got, data)
	}
}

func TestDecodeResponse_Blob(t *testing.T) {
	t.Run("content type from response", func(t *testing.T) {
		v, err := decodeResponse([]byte("png-bytes"), ResponseTypeBlob, "", "image/png", "http://x/img")
		if err != nil {
			t.Fatalf("decodeResponse() error: %v", err)
		}
		blob, ok := v.(*Blob)
		if !ok {
			t.Fatalf("decodeResponse() returned %T, want *Blob", v)
		}
		if blob.ContentType != "image/png" {
			t.Errorf("ContentType = %q, want image/png", blob.ContentType)
		}
		if blob.Size() != int64(len("png-bytes")) {
			t.Errorf("Size() = %d, want %d", blob.Size(), len("png-bytes"))
		}
	})

	t.Run("mime override wins", func(t *testing.T) {
		v, err := decodeResponse(nil, ResponseTypeBlob, "application/wasm", "text/plain", "http://x/mod")
		if err != nil {
			t.Fatalf("decodeResponse() error: %v", err)
		}
		if blob := v.(*Blob); blob.ContentType != "application/wasm" {
			t.Errorf("ContentType = %q, want application/wasm", blob.ContentType)
		}
	})
}

func TestDecodeResponse_DocumentHTML(t *testing.T) {
	// The HTML parser recovers from sloppy markup instead of failing.
	data := []byte("<p>first<p>second")
	v, err := decodeResponse(data, ResponseTypeDocument, "", "text/html", "http://x/page")
	if err != nil {
		t.Fatalf("decodeResponse() error: %v", err)
	}

	node, ok := v.(*html.Node)
	if !ok {
		t.Fatalf("decodeResponse() returned %T, want *html.Node", v)
	}
	if got := countElements(node, "p"); got != 2 {
		t.Errorf("parsed document has %d <p> elements, want 2", got)
	}
}

func TestDecodeResponse_DocumentXML(t *testing.T) {
	t.Run("well-formed svg", func(t *testing.T) {
		data := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="4" height="4"/></svg>`)
		if _, err := decodeResponse(data, ResponseTypeDocument, "image/svg+xml", "", "http://x/icon.svg"); err != nil {
			t.Fatalf("decodeResponse() error: %v", err)
		}
	})

	t.Run("mismatched tags", func(t *testing.T) {
		data := []byte("<a><b></a>")
		_, err := decodeResponse(data, ResponseTypeDocument, "application/xml", "", "http://x/feed")

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("error = %v, want *DecodeError", err)
		}
	})

	t.Run("response content type selects strictness", func(t *testing.T) {
		data := []byte("<a><b></a>")
		if _, err := decodeResponse(data, ResponseTypeDocument, "", "text/xml; charset=utf-8", "http://x/feed"); err == nil {
			t.Error("malformed XML under text/xml content type decoded without error")
		}
	})
}

func TestDecodeResponse_JSON(t *testing.T) {
	v, err := decodeResponse([]byte(`{"nodes": [1, 2, 3]}`), ResponseTypeJSON, "", "application/json", "http://x/scene")
	if err != nil {
		t.Fatalf("decodeResponse() error: %v", err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("decodeResponse() returned %T, want map[string]any", v)
	}
	if nodes, ok := obj["nodes"].([]any); !ok || len(nodes) != 3 {
		t.Errorf("nodes = %v, want 3-element array", obj["nodes"])
	}
}

func TestDecodeResponse_MalformedJSON(t *testing.T) {
	_, err := decodeResponse([]byte(`{"nodes": [`), ResponseTypeJSON, "", "application/json", "http://x/scene")

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decodeErr.Unwrap() == nil {
		t.Error("DecodeError.Unwrap() = nil, want the json error")
	}
}

func TestParseResponseType(t *testing.T) {
	tests := []struct {
		input   string
		want    ResponseType
		wantErr bool
	}{
		{"text", ResponseTypeText, false},
		{"bytes", ResponseTypeBytes, false},
		{"blob", ResponseTypeBlob, false},
		{"document", ResponseTypeDocument, false},
		{"json", ResponseTypeJSON, false},
		{"JSON", ResponseTypeJSON, false},
		{" bytes ", ResponseTypeBytes, false},
		{"", ResponseTypeText, false},
		{"xml", ResponseTypeText, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResponseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResponseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseResponseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResponseType_String(t *testing.T) {
	for _, rt := range []ResponseType{ResponseTypeText, ResponseTypeBytes, ResponseTypeBlob, ResponseTypeDocument, ResponseTypeJSON} {
		parsed, err := ParseResponseType(rt.String())
		if err != nil || parsed != rt {
			t.Errorf("ParseResponseType(%v.String()) = %v, %v", rt, parsed, err)
		}
	}

	if got := ResponseType(99).String(); !strings.Contains(got, "99") {
		t.Errorf("ResponseType(99).String() = %q, want the raw value mentioned", got)
	}
}

func TestIsXMLMediaType(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"text/xml", true},
		{"application/xml", true},
		{"application/xml; charset=utf-8", true},
		{"image/svg+xml", true},
		{"application/rss+xml", true},
		{"text/html", false},
		{"application/json", false},
		{"", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			if got := isXMLMediaType(tt.mediaType); got != tt.want {
				t.Errorf("isXMLMediaType(%q) = %v, want %v", tt.mediaType, got, tt.want)
			}
		})
	}
}

// countElements walks the node tree counting elements with the given tag.
func countElements(n *html.Node, tag string) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == tag {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countElements(c, tag)
	}
	return count
}
