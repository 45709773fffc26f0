package response

import (
	"bytes"
	"io"
	"strconv"

	"github.com/nhdewitt/http-server/internal/headers"
)

const crlf = "\r\n"

// Response is a fully built reply. The serializer adds nothing: callers set
// Content-Length and friends themselves.
type Response struct {
	Status  StatusCode
	Headers *headers.Ordered
	Body    []byte
}

func New(status StatusCode) *Response {
	return &Response{
		Status:  status,
		Headers: headers.NewOrdered(),
	}
}

// GetDefaultHeaders returns Content-Type followed by a Content-Length of
// contentLen.
func GetDefaultHeaders(contentType string, contentLen int) *headers.Ordered {
	h := headers.NewOrdered()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(contentLen))

	return h
}

// WithBody returns a response carrying body with matching Content-Type and
// Content-Length headers.
func WithBody(status StatusCode, contentType string, body []byte) *Response {
	return &Response{
		Status:  status,
		Headers: GetDefaultHeaders(contentType, len(body)),
		Body:    body,
	}
}

func Text(status StatusCode, body string) *Response {
	return WithBody(status, "text/plain", []byte(body))
}

// InternalError describes err in a plain-text 500 response.
func InternalError(err error) *Response {
	return Text(StatusInternalServerError, "Internal Server Error: "+err.Error())
}

// SetBody replaces the body and keeps Content-Length in step with it.
func (r *Response) SetBody(body []byte) {
	r.Body = body
	r.Headers.Set("Content-Length", strconv.Itoa(len(body)))
}

func (r *Response) WriteTo(w io.Writer) (int64, error) {
	rw := NewWriter(w)
	if err := rw.WriteStatusLine(r.Status); err != nil {
		return rw.Written(), err
	}
	if err := rw.WriteHeaders(r.Headers); err != nil {
		return rw.Written(), err
	}
	if _, err := rw.WriteBody(r.Body); err != nil {
		return rw.Written(), err
	}
	return rw.Written(), nil
}

// Bytes returns the exact wire form of r.
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = r.WriteTo(&buf)
	return buf.Bytes()
}
