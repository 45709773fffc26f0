package headers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const crlf = "\r\n"

var ErrMalformedLine = errors.New("malformed header line")

// Headers holds request header fields keyed by lowercased name.
type Headers map[string]string

func NewHeaders() Headers {
	return map[string]string{}
}

// Parse consumes one header line from data. It returns n == 0 when data holds
// no complete line yet and done == true once the empty line ending the block
// has been consumed. A line without a colon or without a name is still
// consumed (n > 0) and reported as ErrMalformedLine so callers can skip it.
func (h Headers) Parse(data []byte) (n int, done bool, err error) {
	idx := bytes.Index(data, []byte(crlf))
	if idx == -1 {
		return 0, false, nil
	}
	n = idx + len(crlf)
	if idx == 0 {
		return n, true, nil
	}

	line := data[:idx]
	name, value, ok := bytes.Cut(line, []byte(":"))
	if !ok {
		return n, false, fmt.Errorf("%w (no colon): %q", ErrMalformedLine, line)
	}
	key := bytes.TrimSpace(name)
	if len(key) == 0 {
		return n, false, fmt.Errorf("%w (empty field-name): %q", ErrMalformedLine, line)
	}

	h.Set(string(key), string(bytes.TrimSpace(value)))

	return n, false, nil
}

// Set stores value under the lowercased key, replacing any earlier value.
func (h Headers) Set(key, value string) {
	h[strings.ToLower(key)] = value
}

func (h Headers) Get(key string) string {
	return h[strings.ToLower(key)]
}

func (h Headers) Has(key string) bool {
	_, ok := h[strings.ToLower(key)]
	return ok
}

func (h Headers) Del(key string) {
	delete(h, strings.ToLower(key))
}

// ContentLength returns the declared body length, or 0 when the field is
// missing, not an integer or negative.
func (h Headers) ContentLength() int {
	n, err := strconv.Atoi(h.Get("Content-Length"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Tokens splits a comma-separated field value into trimmed, lowercased,
// non-empty tokens.
func (h Headers) Tokens(key string) []string {
	var out []string
	for _, tok := range strings.Split(h.Get(key), ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
