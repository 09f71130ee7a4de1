package sign

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guaranteeops/reconbot/utils"
)

// SigningRequest carries everything that determines the canonical form of a
// request to be signed. It is a value type; the signer never mutates or
// retains it.
type SigningRequest struct {
	Method  string
	Host    string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Payload []byte

	//UTC instant of signing, truncated to second precision before use.
	Timestamp time.Time
}

// CanonicalRequest builds the deterministic normalized string representation
// that is used as signing input. Two requests that only differ in header or
// query insertion order yield byte identical output.
func CanonicalRequest(req SigningRequest) (string, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return "", fmt.Errorf("%w: missing HTTP method", ErrMalformedInput)
	}

	canonicalQuery, err := canonicalQueryString(req.Query)
	if err != nil {
		return "", err
	}

	canonicalHeaders, signedHeaders, err := canonicalHeaderBlock(req.Headers)
	if err != nil {
		return "", err
	}

	parts := []string{
		method,
		canonicalURI(req.Path),
		canonicalQuery,
		canonicalHeaders,
		signedHeaders,
		utils.Sha256hex(req.Payload),
	}
	return strings.Join(parts, "\n"), nil
}

// SignedHeaderNames returns the semicolon joined sorted header list that goes
// into the Authorization header, matching what CanonicalRequest signs.
func SignedHeaderNames(headers map[string]string) (string, error) {
	_, signedHeaders, err := canonicalHeaderBlock(headers)
	return signedHeaders, err
}

func isUnreservedChar(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func isHexChar(c byte) bool {
	return ('0' <= c && c <= '9') || ('A' <= c && c <= 'F') || ('a' <= c && c <= 'f')
}

const upperhex = "0123456789ABCDEF"

func percentEncodeByte(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperhex[c>>4])
	b.WriteByte(upperhex[c&0xf])
}

// Encode a path segment. Unreserved characters pass through, everything else
// is percent-encoded byte-wise. A %XX triplet already present is kept as is
// so segments never get double encoded.
func encodePathSegment(segment string) string {
	var b strings.Builder
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		switch {
		case isUnreservedChar(c):
			b.WriteByte(c)
		case c == '%' && i+2 < len(segment) && isHexChar(segment[i+1]) && isHexChar(segment[i+2]):
			b.WriteString(strings.ToUpper(segment[i : i+3]))
			i += 2
		default:
			percentEncodeByte(&b, c)
		}
	}
	return b.String()
}

// Strict percent-encoding for query keys and values.
func encodeQueryComponent(component string) string {
	var b strings.Builder
	for i := 0; i < len(component); i++ {
		c := component[i]
		if isUnreservedChar(c) {
			b.WriteByte(c)
		} else {
			percentEncodeByte(&b, c)
		}
	}
	return b.String()
}

func canonicalURI(path string) string {
	if path == "" {
		return "/"
	}
	//Collapse redundant separators before splitting into segments
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = encodePathSegment(segment)
	}
	return "/" + strings.Join(segments, "/")
}

func canonicalQueryString(query map[string]string) (string, error) {
	if len(query) == 0 {
		return "", nil
	}
	type queryPair struct {
		key   string
		value string
	}
	pairs := make([]queryPair, 0, len(query))
	for key, value := range query {
		if !utf8.ValidString(key) || !utf8.ValidString(value) {
			return "", fmt.Errorf("%w: query parameter %q is not valid UTF-8", ErrMalformedInput, key)
		}
		pairs = append(pairs, queryPair{encodeQueryComponent(key), encodeQueryComponent(value)})
	}
	//Byte-wise ordering on the encoded key, ties broken on the encoded value.
	slices.SortFunc(pairs, func(a, b queryPair) int {
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.value, b.value)
	})
	encoded := make([]string, len(pairs))
	for i, pair := range pairs {
		encoded[i] = pair.key + "=" + pair.value
	}
	return strings.Join(encoded, "&"), nil
}

// Collapse runs of spaces and tabs inside a header value to a single space.
func collapseWhitespace(value string) string {
	var b strings.Builder
	pendingSpace := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ' ' || c == '\t' {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteByte(c)
	}
	return b.String()
}

func canonicalHeaderBlock(headers map[string]string) (block string, signedHeaders string, err error) {
	if len(headers) == 0 {
		return "", "", fmt.Errorf("%w: at least one header must be signed", ErrMalformedInput)
	}
	names := make([]string, 0, len(headers))
	normalized := make(map[string]string, len(headers))
	for name, value := range headers {
		if !utf8.ValidString(name) || !utf8.ValidString(value) {
			return "", "", fmt.Errorf("%w: header %q is not valid UTF-8", ErrMalformedInput, name)
		}
		lowerName := strings.ToLower(strings.TrimSpace(name))
		if lowerName == "" {
			return "", "", fmt.Errorf("%w: empty header name", ErrMalformedInput)
		}
		if _, seen := normalized[lowerName]; seen {
			return "", "", fmt.Errorf("%w: header %q appears with multiple casings", ErrMalformedInput, lowerName)
		}
		normalized[lowerName] = collapseWhitespace(strings.TrimSpace(value))
		names = append(names, lowerName)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(normalized[name])
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(names, ";"), nil
}
