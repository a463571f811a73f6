/*
Package server implements the TCP connection acceptor for the weather service.

It binds one listening endpoint and spawns an independent session goroutine
for every accepted connection, all sharing one store gateway and batch
source. Admission is rate limited per client IP.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"weatherline/internal/app/protocol"
	"weatherline/internal/app/session"
	"weatherline/internal/configs"
	"weatherline/internal/pkg/errs"
	"weatherline/internal/pkg/limiter"
	"weatherline/internal/pkg/logx"
)

// maxAcceptFailures is the number of consecutive transient accept failures
// tolerated before the acceptor gives up.
const maxAcceptFailures = 3

// Server accepts weather protocol connections and dispatches sessions.
type Server struct {
	addr         string
	machine      *session.Machine
	admission    *limiter.IPRateLimiter
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	sessions sync.WaitGroup
}

// New creates a Server from the application config and a session machine.
func New(cfg *configs.AppConfig, machine *session.Machine) *Server {
	return &Server{
		addr:         cfg.ListenAddr,
		machine:      machine,
		admission:    limiter.NewIPRateLimiter(rate.Limit(cfg.ConnRate), cfg.ConnBurst),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Addr returns the bound listen address, or empty before ListenAndServe.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe binds the endpoint and runs the accept loop until ctx is
// cancelled or the listener fails. On shutdown it stops accepting, cancels
// running sessions through ctx, and waits for them to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logx.Info("Weather server listening", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logx.Error(err, "Listener close failed")
		}
	})
	defer stop()

	failures := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() && failures < maxAcceptFailures {
				failures++
				logx.Warn("Transient accept failure, retrying", "attempt", failures)
				time.Sleep(time.Duration(failures) * 100 * time.Millisecond)
				continue
			}

			ln.Close()
			return fmt.Errorf("accept on %s: %w", s.addr, err)
		}
		failures = 0

		if !s.admission.Allow(conn.RemoteAddr().String()) {
			s.reject(conn)
			continue
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			session.NewRunner(conn, s.machine, s.readTimeout, s.writeTimeout).Run(ctx)
		}()
	}

	logx.Info("Acceptor stopped. Waiting for sessions to drain.")
	s.sessions.Wait()
	return nil
}

// reject sends a best-effort error line to a rate-limited connection and closes it.
func (s *Server) reject(conn net.Conn) {
	logx.Warn("Connection rejected by rate limiter", "remote_addr", conn.RemoteAddr().String())
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		logx.Warn("Failed to set write deadline on rejected connection", "error", err.Error())
		return
	}
	msg := protocol.NewError(errs.NewError(errs.ErrConnectionRateLimited).Message)
	if err := protocol.NewWriter(conn).WriteMessage(msg); err != nil {
		logx.Warn("Failed to write rate limit rejection", "error", err.Error())
	}
}
