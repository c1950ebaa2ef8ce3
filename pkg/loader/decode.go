package loader

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// ResponseType selects the representation a FileLoader delivers to its
// onLoad callbacks.
type ResponseType int

const (
	// ResponseTypeText delivers the body as a string. When a mime type
	// with a charset parameter was set on the loader, the body is decoded
	// from that charset; otherwise it is interpreted as UTF-8.
	ResponseTypeText ResponseType = iota

	// ResponseTypeBytes delivers the raw body as []byte.
	ResponseTypeBytes

	// ResponseTypeBlob delivers a *Blob carrying the raw body and its
	// content type.
	ResponseTypeBlob

	// ResponseTypeDocument delivers the body parsed into an *html.Node
	// tree. XML media types are checked for well-formedness first.
	ResponseTypeDocument

	// ResponseTypeJSON delivers the body unmarshalled from JSON.
	ResponseTypeJSON
)

// String returns the name used for the response type in flags and config
// files.
func (t ResponseType) String() string {
	switch t {
	case ResponseTypeText:
		return "text"
	case ResponseTypeBytes:
		return "bytes"
	case ResponseTypeBlob:
		return "blob"
	case ResponseTypeDocument:
		return "document"
	case ResponseTypeJSON:
		return "json"
	}
	return fmt.Sprintf("ResponseType(%d)", int(t))
}

// ParseResponseType converts a response type name to its ResponseType.
//
// Accepted names are "text", "bytes", "blob", "document" and "json".
func ParseResponseType(name string) (ResponseType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "":
		return ResponseTypeText, nil
	case "bytes":
		return ResponseTypeBytes, nil
	case "blob":
		return ResponseTypeBlob, nil
	case "document":
		return ResponseTypeDocument, nil
	case "json":
		return ResponseTypeJSON, nil
	}
	return ResponseTypeText, fmt.Errorf("unknown response type %q", name)
}

// Blob is an opaque handle over a raw response body plus the content type
// the server declared for it.
type Blob struct {
	// ContentType is the media type of the data, e.g. "image/png".
	ContentType string

	// Data is the raw body.
	Data []byte
}

// Reader returns a new reader over the blob's data.
func (b *Blob) Reader() io.Reader { return bytes.NewReader(b.Data) }

// Size returns the number of bytes in the blob.
func (b *Blob) Size() int64 { return int64(len(b.Data)) }

// decodeResponse converts a fully received body into the representation
// requested by responseType. mimeType is the loader's override, which wins
// over the response's Content-Type where both matter. Failures are
// reported as *DecodeError.
func decodeResponse(data []byte, responseType ResponseType, mimeType, contentType, url string) (any, error) {
	switch responseType {
	case ResponseTypeBytes:
		return data, nil

	case ResponseTypeBlob:
		ct := mimeType
		if ct == "" {
			ct = contentType
		}
		return &Blob{ContentType: ct, Data: data}, nil

	case ResponseTypeDocument:
		return decodeDocument(data, mimeType, contentType, url)

	case ResponseTypeJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, &DecodeError{URL: url, Err: err}
		}
		return v, nil

	default:
		return decodeText(data, mimeType, url)
	}
}

// decodeDocument parses markup into a node tree. HTML parsing recovers
// from almost any input, matching how browsers treat text/html, so only
// XML media types get a strict well-formedness pass.
func decodeDocument(data []byte, mimeType, contentType, url string) (any, error) {
	mt := mimeType
	if mt == "" {
		mt = contentType
	}
	if isXMLMediaType(mt) {
		if err := checkWellFormedXML(data); err != nil {
			return nil, &DecodeError{URL: url, Err: err}
		}
	}

	node, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}
	return node, nil
}

// decodeText interprets the body as text. A charset parameter in the
// loader's mime type override selects the source encoding; without an
// override the body is taken as UTF-8 verbatim.
func decodeText(data []byte, mimeType, url string) (any, error) {
	if mimeType == "" {
		return string(data), nil
	}

	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return nil, &DecodeError{URL: url, Err: fmt.Errorf("invalid mime type %q: %w", mimeType, err)}
	}

	label := params["charset"]
	if label == "" || strings.EqualFold(label, "utf-8") {
		return string(data), nil
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, &DecodeError{URL: url, Err: fmt.Errorf("unsupported charset %q", label)}
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return nil, &DecodeError{URL: url, Err: fmt.Errorf("charset %s: %w", label, err)}
	}
	return string(decoded), nil
}

// isXMLMediaType reports whether mediaType names an XML payload, either
// directly (text/xml, application/xml) or via an +xml suffix such as
// image/svg+xml.
func isXMLMediaType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	_, subtype, ok := strings.Cut(mt, "/")
	if !ok {
		return false
	}
	return subtype == "xml" || strings.HasSuffix(subtype, "+xml")
}

// checkWellFormedXML walks all tokens in data and returns the first
// syntax error.
func checkWellFormedXML(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
