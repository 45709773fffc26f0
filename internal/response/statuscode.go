package response

import "fmt"

type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusInternalServerError StatusCode = 500
)

const httpVersion = "HTTP/1.1"

func (c StatusCode) Reason() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusCreated:
		return "Created"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}

// StatusLine renders the status line without its trailing CRLF, e.g.
// "HTTP/1.1 404 Not Found".
func (c StatusCode) StatusLine() string {
	if reason := c.Reason(); reason != "" {
		return fmt.Sprintf("%s %d %s", httpVersion, int(c), reason)
	}
	return fmt.Sprintf("%s %d", httpVersion, int(c))
}
