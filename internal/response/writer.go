package response

import (
	"fmt"
	"io"

	"github.com/nhdewitt/http-server/internal/headers"
)

type writerState int

const (
	StateWritingStatusLine writerState = iota
	StateWritingHeaders
	StateWritingBody
	StateDone
)

// Writer serializes one response and rejects calls made out of order.
type Writer struct {
	writer  io.Writer
	state   writerState
	written int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: w,
		state:  StateWritingStatusLine,
	}
}

func (w *Writer) WriteStatusLine(statusCode StatusCode) error {
	if w.state != StateWritingStatusLine {
		return fmt.Errorf("writer state out-of-order")
	}

	if err := w.write([]byte(statusCode.StatusLine() + crlf)); err != nil {
		return fmt.Errorf("error writing status line: %w", err)
	}

	w.state = StateWritingHeaders
	return nil
}

func (w *Writer) WriteHeaders(h *headers.Ordered) error {
	if w.state != StateWritingHeaders {
		return fmt.Errorf("writer state out-of-order")
	}

	for k, v := range h.All() {
		if err := w.write([]byte(k + ": " + v + crlf)); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}
	if err := w.write([]byte(crlf)); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	w.state = StateWritingBody
	return nil
}

func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != StateWritingBody {
		return 0, fmt.Errorf("writer state out-of-order")
	}

	w.state = StateDone
	n, err := w.writer.Write(p)
	w.written += int64(n)
	return n, err
}

// Written reports the number of bytes passed to the underlying writer.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) write(p []byte) error {
	n, err := w.writer.Write(p)
	w.written += int64(n)
	return err
}
