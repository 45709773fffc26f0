package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type Options struct {
	Addr string
	// ReusePort sets SO_REUSEPORT on the listening socket where supported.
	ReusePort bool
	Logger    zerolog.Logger
}

type Server struct {
	listener    net.Listener
	isListening atomic.Bool
	handler     Handler
	logger      zerolog.Logger

	// mu orders conns.Add against Close so Wait never races a late accept.
	mu    sync.Mutex
	conns sync.WaitGroup
}

// Serve starts accepting on opts.Addr in the background and runs handler for
// every connection on its own goroutine.
func Serve(opts Options, handler Handler) (*Server, error) {
	lc := net.ListenConfig{}
	if opts.ReusePort {
		lc.Control = reusePort
	}
	listener, err := lc.Listen(context.Background(), "tcp", opts.Addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: listener,
		handler:  handler,
		logger:   opts.Logger,
	}
	s.isListening.Store(true)
	go s.listen()

	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting and waits for connections already accepted to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	stopped := s.isListening.CompareAndSwap(true, false)
	s.mu.Unlock()
	if !stopped {
		return nil
	}

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.conns.Wait()

	return err
}

func (s *Server) listen() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isListening.Load() {
				return
			}
			s.logger.Error().Err(err).Msg("error accepting connection")
			continue
		}

		s.mu.Lock()
		if !s.isListening.Load() {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns.Add(1)
		s.mu.Unlock()

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("connection handler panicked")
		}
	}()

	logger := s.logger.With().Str("remote", conn.RemoteAddr().String()).Logger()
	ServeConn(conn, s.handler, logger)
}
