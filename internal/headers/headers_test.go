package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersParse(t *testing.T) {
	// Test: Valid single header
	headers := NewHeaders()
	data := []byte("Host: localhost:4221\r\n\r\n")
	n, done, err := headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "localhost:4221", headers["host"])
	assert.Equal(t, 22, n)
	assert.False(t, done)
	n, done, err = headers.Parse(data[n:])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, done)

	// Test: Surrounding whitespace is trimmed from name and value
	headers = NewHeaders()
	data = []byte("   User-Agent :  curl/8.4.0   \r\n")
	n, done, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.False(t, done)
	assert.Equal(t, "curl/8.4.0", headers["user-agent"])

	// Test: Valid 3 headers
	headers = NewHeaders()
	data = []byte("Host: example.com\r\nUser-Agent: test-agent/1.0\r\nAccept: */*\r\n\r\n")
	for _, want := range []int{19, 28, 13} {
		n, done, err = headers.Parse(data)
		require.NoError(t, err)
		assert.Equal(t, want, n)
		assert.False(t, done)
		data = data[n:]
	}
	n, done, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, done)
	assert.Equal(t, "example.com", headers["host"])
	assert.Equal(t, "test-agent/1.0", headers["user-agent"])
	assert.Equal(t, "*/*", headers["accept"])

	// Valid done
	headers = NewHeaders()
	data = []byte("\r\n extra text ignored")
	n, done, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, done)

	// Partial line (no CRLF)
	headers = NewHeaders()
	data = []byte("Host: loca")
	n, done, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, done)

	// Only the first colon splits
	headers = NewHeaders()
	data = []byte("Host: localhost:4221\r\n")
	_, _, err = headers.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "localhost:4221", headers.Get("HOST"))
}

func TestHeadersParseMalformedLineIsConsumed(t *testing.T) {
	headers := NewHeaders()
	data := []byte("Host localhost 4221\r\nAccept: */*\r\n")
	n, done, err := headers.Parse(data)
	require.ErrorIs(t, err, ErrMalformedLine)
	assert.Equal(t, 21, n)
	assert.False(t, done)
	assert.Empty(t, headers)

	n, _, err = headers.Parse(data[n:])
	require.NoError(t, err)
	assert.Equal(t, 13, n)
	assert.Equal(t, "*/*", headers["accept"])

	headers = NewHeaders()
	_, _, err = headers.Parse([]byte(": no-name\r\n"))
	require.ErrorIs(t, err, ErrMalformedLine)
	assert.Empty(t, headers)
}

func TestHeadersLastWriteWins(t *testing.T) {
	headers := NewHeaders()
	data := []byte("X-Person: lane\r\nx-person: prime\r\nX-PERSON: tj\r\n\r\n")
	var done bool
	for !done {
		n, d, err := headers.Parse(data)
		require.NoError(t, err)
		data = data[n:]
		done = d
	}
	assert.Equal(t, "tj", headers.Get("X-Person"))
	assert.Len(t, headers, 1)
}

func TestHeadersContentLength(t *testing.T) {
	cases := []struct {
		value string
		set   bool
		want  int
	}{
		{"12", true, 12},
		{"0", true, 0},
		{"abc", true, 0},
		{"-4", true, 0},
		{"", true, 0},
		{"", false, 0},
	}
	for _, c := range cases {
		h := NewHeaders()
		if c.set {
			h.Set("Content-Length", c.value)
		}
		assert.Equal(t, c.want, h.ContentLength(), "value %q", c.value)
	}
}

func TestHeadersTokens(t *testing.T) {
	h := NewHeaders()
	h.Set("Accept-Encoding", " Deflate ,GZIP,, br ")
	assert.Equal(t, []string{"deflate", "gzip", "br"}, h.Tokens("accept-encoding"))
	assert.Nil(t, h.Tokens("missing"))
}
