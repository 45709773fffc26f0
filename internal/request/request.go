package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nhdewitt/http-server/internal/headers"
	"golang.org/x/text/encoding/unicode"
)

type requestState int

const (
	stateRequestLine requestState = iota
	stateHeaders
	stateBody
	stateDone
)

const (
	bufferSize = 1024
	crlf       = "\r\n"
)

// MaxHeaderBytes bounds the request line plus header block. A request whose
// terminating blank line has not arrived within this many bytes is truncated.
const MaxHeaderBytes = 8 << 10

var (
	ErrEmptyRequest         = errors.New("empty request")
	ErrTruncatedRequest     = errors.New("truncated request")
	ErrMalformedRequestLine = errors.New("malformed request line")
)

var headerTerminator = []byte(crlf + crlf)

type Request struct {
	RequestLine RequestLine
	Headers     headers.Headers
	Body        []byte
	state       requestState
}

type RequestLine struct {
	HttpVersion   string
	RequestTarget string
	Method        string
}

// IsBadRequest reports whether err means the peer sent something that is not
// a usable request, as opposed to an I/O failure.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrEmptyRequest) ||
		errors.Is(err, ErrTruncatedRequest) ||
		errors.Is(err, ErrMalformedRequestLine)
}

// RequestFromReader reads one request from reader: the head up to the blank
// line, then exactly Content-Length body bytes. A peer that closes before the
// body is complete yields a short body, not an error.
func RequestFromReader(reader io.Reader) (*Request, error) {
	head, rest, err := readHead(reader)
	if err != nil {
		return nil, err
	}

	r := &Request{
		Headers: headers.NewHeaders(),
		state:   stateRequestLine,
	}
	if err := r.parseHead(decodeLenient(head)); err != nil {
		return nil, err
	}

	body, err := readBody(reader, rest, r.Headers.ContentLength())
	if err != nil {
		return nil, err
	}
	r.Body = body
	r.state = stateDone

	return r, nil
}

// readHead reads until the header terminator and returns the head (including
// the final CRLF of the last header line) plus whatever body bytes arrived
// with it.
func readHead(reader io.Reader) (head, rest []byte, err error) {
	buf := make([]byte, bufferSize)
	readToIndex := 0

	for {
		if idx := bytes.Index(buf[:readToIndex], headerTerminator); idx != -1 {
			end := idx + len(headerTerminator)
			return buf[:end], buf[end:readToIndex], nil
		}
		if readToIndex >= MaxHeaderBytes {
			return nil, nil, fmt.Errorf("%w: no header terminator in %d bytes", ErrTruncatedRequest, readToIndex)
		}

		if readToIndex == len(buf) {
			tmpBuf := make([]byte, len(buf)*2)
			copy(tmpBuf, buf[:readToIndex])
			buf = tmpBuf
		}

		n, rerr := reader.Read(buf[readToIndex:])
		readToIndex += n

		if rerr != nil {
			if n > 0 && bytes.Contains(buf[:readToIndex], headerTerminator) {
				continue
			}
			if !errors.Is(rerr, io.EOF) {
				return nil, nil, rerr
			}
			if readToIndex == 0 {
				return nil, nil, ErrEmptyRequest
			}
			return nil, nil, fmt.Errorf("%w: early EOF after %d bytes", ErrTruncatedRequest, readToIndex)
		}
	}
}

func readBody(reader io.Reader, rest []byte, contentLength int) ([]byte, error) {
	if contentLength == 0 {
		return []byte{}, nil
	}
	if len(rest) >= contentLength {
		return bytes.Clone(rest[:contentLength]), nil
	}

	// Grow with what actually arrives; Content-Length is peer-controlled.
	var body bytes.Buffer
	body.Write(rest)
	_, err := io.CopyN(&body, reader, int64(contentLength-len(rest)))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return body.Bytes(), nil
}

// decodeLenient replaces invalid UTF-8 sequences with U+FFFD.
func decodeLenient(b []byte) []byte {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return bytes.ToValidUTF8(b, []byte("�"))
	}
	return out
}

func (r *Request) parseHead(data []byte) error {
	for r.state != stateBody {
		n, err := r.parse(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: incomplete head", ErrTruncatedRequest)
		}
		data = data[n:]
	}
	return nil
}

func (r *Request) parse(data []byte) (int, error) {
	switch r.state {
	case stateRequestLine:
		parsed, parsedRequest, err := parseRequestLine(data)
		if parsed == 0 && err == nil {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}

		r.RequestLine = parsedRequest
		r.state = stateHeaders

		return parsed, nil
	case stateHeaders:
		n, done, err := r.Headers.Parse(data)
		if err != nil && !errors.Is(err, headers.ErrMalformedLine) {
			return 0, err
		}
		if done {
			r.state = stateBody
		}
		return n, nil
	case stateBody, stateDone:
		return 0, fmt.Errorf("error: trying to parse head in state %d", r.state)
	default:
		return 0, fmt.Errorf("error: unknown state")
	}
}

func parseRequestLine(req []byte) (int, RequestLine, error) {
	idx := bytes.Index(req, []byte(crlf))
	if idx == -1 {
		return 0, RequestLine{}, nil
	}
	line := string(req[:idx])
	consumed := idx + len(crlf)

	rl, err := requestLineFromString(line)
	if err != nil {
		return 0, RequestLine{}, err
	}

	return consumed, *rl, nil
}

func requestLineFromString(s string) (*RequestLine, error) {
	parts := strings.Split(s, " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, s)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, s)
		}
	}

	return &RequestLine{
		Method:        parts[0],
		RequestTarget: parts[1],
		HttpVersion:   parts[2],
	}, nil
}
