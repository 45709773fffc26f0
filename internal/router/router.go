// Package router maps a parsed request onto one of the server's fixed routes.
package router

import (
	"strings"

	"github.com/nhdewitt/http-server/internal/files"
	"github.com/nhdewitt/http-server/internal/request"
	"github.com/nhdewitt/http-server/internal/response"
)

const (
	echoPrefix      = "/echo/"
	userAgentPrefix = "/user-agent"
	filesPrefix     = "/files/"
)

type Router struct {
	files *files.Store
}

// New returns a Router serving /files/ from fileRoot. An empty fileRoot makes
// every /files/ request a 404.
func New(fileRoot string) *Router {
	return &Router{files: files.NewStore(fileRoot)}
}

// Handle picks the first matching route. A non-nil error means the route
// failed unexpectedly; the caller answers it with a 500.
func (rt *Router) Handle(req *request.Request) (*response.Response, error) {
	target := req.RequestLine.RequestTarget
	switch {
	case target == "/":
		return response.Text(response.StatusOK, ""), nil
	case strings.HasPrefix(target, echoPrefix):
		return echo(req, strings.TrimPrefix(target, echoPrefix))
	case strings.HasPrefix(target, userAgentPrefix):
		return response.Text(response.StatusOK, req.Headers.Get("User-Agent")), nil
	case strings.HasPrefix(target, filesPrefix):
		return rt.serveFile(req, strings.TrimPrefix(target, filesPrefix))
	default:
		return response.New(response.StatusNotFound), nil
	}
}

func echo(req *request.Request, content string) (*response.Response, error) {
	if !acceptsGzip(req.Headers) {
		return response.Text(response.StatusOK, content), nil
	}

	compressed, err := gzipBytes([]byte(content))
	if err != nil {
		return nil, err
	}
	resp := response.New(response.StatusOK)
	resp.Headers.Set("Content-Type", "text/plain")
	resp.Headers.Set("Content-Encoding", gzipEncoding)
	resp.SetBody(compressed)

	return resp, nil
}

func (rt *Router) serveFile(req *request.Request, name string) (*response.Response, error) {
	if req.RequestLine.Method == "POST" {
		err := rt.files.Write(name, req.Body)
		if files.IsNotFound(err) {
			return response.New(response.StatusNotFound), nil
		}
		if err != nil {
			return nil, err
		}
		return response.New(response.StatusCreated), nil
	}

	data, err := rt.files.Read(name)
	if files.IsNotFound(err) {
		return response.New(response.StatusNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	return response.WithBody(response.StatusOK, "application/octet-stream", data), nil
}
