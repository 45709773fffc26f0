package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhdewitt/http-server/internal/request"
	"github.com/nhdewitt/http-server/internal/response"
)

// Handler turns a request into a response. A returned error is reported to
// the client as a 500 with the error text as body.
type Handler func(req *request.Request) (*response.Response, error)

var errNoResponse = errors.New("handler returned no response")

// ServeConn answers exactly one request read from rw. It never panics; the
// caller owns closing the connection afterwards.
func ServeConn(rw io.ReadWriter, handler Handler, logger zerolog.Logger) response.StatusCode {
	start := time.Now()

	req, err := request.RequestFromReader(rw)
	if err != nil {
		resp := response.New(response.StatusBadRequest)
		if request.IsBadRequest(err) {
			logger.Warn().Err(err).Msg("bad request")
		} else {
			logger.Error().Err(err).Msg("error reading request")
			resp = response.InternalError(err)
		}
		send(rw, resp, logger)
		return resp.Status
	}

	resp := dispatch(req, handler)
	if resp.Status == response.StatusInternalServerError {
		logger.Error().
			Str("method", req.RequestLine.Method).
			Str("target", req.RequestLine.RequestTarget).
			Bytes("error", resp.Body).
			Msg("handler failed")
	}
	send(rw, resp, logger)

	logger.Info().
		Str("method", req.RequestLine.Method).
		Str("target", req.RequestLine.RequestTarget).
		Int("status", int(resp.Status)).
		Int("bytes", len(resp.Body)).
		Dur("elapsed", time.Since(start)).
		Msg("request served")

	return resp.Status
}

func dispatch(req *request.Request, handler Handler) (resp *response.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = response.InternalError(fmt.Errorf("panic: %v", r))
		}
	}()

	r, err := handler(req)
	if err != nil {
		return response.InternalError(err)
	}
	if r == nil {
		return response.InternalError(errNoResponse)
	}
	return r
}

func send(w io.Writer, resp *response.Response, logger zerolog.Logger) {
	if _, err := resp.WriteTo(w); err != nil {
		logger.Debug().Err(err).Int("status", int(resp.Status)).Msg("error writing response")
	}
}
