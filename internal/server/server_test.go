package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhdewitt/http-server/internal/request"
	"github.com/nhdewitt/http-server/internal/response"
	"github.com/nhdewitt/http-server/internal/router"
)

type fakeConn struct {
	in  io.Reader
	out bytes.Buffer
}

func (c *fakeConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *fakeConn) Write(p []byte) (int, error) { return c.out.Write(p) }

type resetReader struct{}

func (resetReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func serveString(t *testing.T, raw string, handler Handler) (response.StatusCode, string) {
	t.Helper()
	conn := &fakeConn{in: strings.NewReader(raw)}
	status := ServeConn(conn, handler, zerolog.Nop())
	return status, conn.out.String()
}

func okHandler(req *request.Request) (*response.Response, error) {
	return response.Text(response.StatusOK, req.RequestLine.RequestTarget), nil
}

func TestServeConnSuccess(t *testing.T) {
	status, out := serveString(t, "GET /hello HTTP/1.1\r\nHost: x\r\n\r\n", okHandler)
	assert.Equal(t, response.StatusOK, status)
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 6\r\n\r\n/hello", out)
}

func TestServeConnBadRequest(t *testing.T) {
	for _, raw := range []string{
		"",
		"GET /\r\n\r\n",
		"GET / HTTP/1.1\r\nHost: never-terminated\r\n",
		"GARBAGE\r\n\r\n",
	} {
		status, out := serveString(t, raw, func(*request.Request) (*response.Response, error) {
			t.Fatal("handler must not run for a bad request")
			return nil, nil
		})
		assert.Equal(t, response.StatusBadRequest, status, "raw %q", raw)
		assert.Equal(t, "HTTP/1.1 400 Bad Request\r\n\r\n", out)
	}
}

func TestServeConnHandlerError(t *testing.T) {
	status, out := serveString(t, "GET / HTTP/1.1\r\n\r\n", func(*request.Request) (*response.Response, error) {
		return nil, errors.New("permission denied")
	})
	assert.Equal(t, response.StatusInternalServerError, status)
	body := "Internal Server Error: permission denied"
	assert.Equal(t, fmt.Sprintf("HTTP/1.1 500 Internal Server Error\r\nContent-Type: text/plain\r\nContent-Length: %d\r\n\r\n%s", len(body), body), out)
}

func TestServeConnHandlerPanic(t *testing.T) {
	status, out := serveString(t, "GET / HTTP/1.1\r\n\r\n", func(*request.Request) (*response.Response, error) {
		panic("index out of range")
	})
	assert.Equal(t, response.StatusInternalServerError, status)
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nInternal Server Error: panic: index out of range"), out)
}

func TestServeConnNilResponse(t *testing.T) {
	status, out := serveString(t, "GET / HTTP/1.1\r\n\r\n", func(*request.Request) (*response.Response, error) {
		return nil, nil
	})
	assert.Equal(t, response.StatusInternalServerError, status)
	assert.Contains(t, out, errNoResponse.Error())
}

func TestServeConnReadError(t *testing.T) {
	conn := &fakeConn{in: resetReader{}}
	status := ServeConn(conn, okHandler, zerolog.Nop())
	assert.Equal(t, response.StatusInternalServerError, status)
	assert.Contains(t, conn.out.String(), "connection reset by peer")
}

func startServer(t *testing.T, root string) *Server {
	t.Helper()
	s, err := Serve(Options{Addr: "127.0.0.1:0", Logger: zerolog.Nop()}, router.New(root).Handle)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func roundTrip(addr net.Addr, raw string) (string, error) {
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(raw)); err != nil {
		return "", err
	}
	out, err := io.ReadAll(conn)
	return string(out), err
}

func TestServerConcurrentConnections(t *testing.T) {
	s := startServer(t, "")

	const clients = 32
	var wg sync.WaitGroup
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload := fmt.Sprintf("client-%02d", i)
			out, err := roundTrip(s.Addr(), "GET /echo/"+payload+" HTTP/1.1\r\nHost: localhost\r\n\r\n")
			if !assert.NoError(t, err) {
				return
			}
			want := fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: %d\r\n\r\n%s", len(payload), payload)
			assert.Equal(t, want, out)
		}()
	}
	wg.Wait()
}

func TestServerFilesRoundTrip(t *testing.T) {
	s := startServer(t, t.TempDir())

	body := "some report\r\nwith CRLF\r\n\r\ninside"
	out, err := roundTrip(s.Addr(), fmt.Sprintf("POST /files/report.txt HTTP/1.1\r\nContent-Length: %d\r\n\r\n%s", len(body), body))
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 201 Created\r\n\r\n", out)

	out, err = roundTrip(s.Addr(), "GET /files/report.txt HTTP/1.1\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: application/octet-stream\r\nContent-Length: %d\r\n\r\n%s", len(body), body), out)
}

func TestServerBadRequestDoesNotStopServer(t *testing.T) {
	s := startServer(t, "")

	out, err := roundTrip(s.Addr(), "NONSENSE\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\n\r\n", out)

	out, err = roundTrip(s.Addr(), "GET /nope HTTP/1.1\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\n\r\n", out)
}

func TestServerReusePort(t *testing.T) {
	s, err := Serve(Options{Addr: "127.0.0.1:0", ReusePort: true, Logger: zerolog.Nop()}, okHandler)
	require.NoError(t, err)
	defer s.Close()

	out, err := roundTrip(s.Addr(), "GET /x HTTP/1.1\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n/x"), out)
}

func TestServerCloseIdempotent(t *testing.T) {
	s, err := Serve(Options{Addr: "127.0.0.1:0", Logger: zerolog.Nop()}, okHandler)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = net.Dial("tcp", s.Addr().String())
	assert.Error(t, err)
}
