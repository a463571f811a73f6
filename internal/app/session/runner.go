package session

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"weatherline/internal/app/protocol"
	"weatherline/internal/pkg/errs"
	"weatherline/internal/pkg/logx"
)

// Runner drives one session over a live connection: it sends the state's
// prompt, reads the next line under a deadline, feeds it to the machine, and
// writes the responses back.
type Runner struct {
	machine      *Machine
	conn         net.Conn
	reader       *protocol.Reader
	writer       *protocol.Writer
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// NewRunner creates a Runner for an accepted connection.
func NewRunner(conn net.Conn, machine *Machine, readTimeout, writeTimeout time.Duration) *Runner {
	logger := logx.Logger().With().
		Str("session_id", uuid.NewString()).
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()

	return &Runner{
		machine:      machine,
		conn:         conn,
		reader:       protocol.NewReader(conn),
		writer:       protocol.NewWriter(conn),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Run executes the session until it closes, the peer disconnects, the read
// deadline expires, or ctx is cancelled. Transport failures terminate the
// session silently; a failed best-effort error write is logged and swallowed
// since the peer is already unreachable.
func (r *Runner) Run(ctx context.Context) {
	defer func() {
		if err := r.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			r.logger.Error().Err(err).Msg("Session connection close error")
		}
	}()

	// Cancellation closes the connection, which unblocks any pending read.
	stop := context.AfterFunc(ctx, func() {
		r.logger.Info().Msg("Shutdown requested. Closing session connection.")
		r.conn.Close()
	})
	defer stop()

	r.logger.Info().Msg("Client connected")

	state := State{Phase: PhaseAwaitingRole}
	for !state.Closed() {
		if prompt := Prompt(state); prompt != nil {
			if !r.write(prompt) {
				return
			}
		}

		msg, err := r.read()
		if err != nil {
			if !r.handleReadError(state, err) {
				return
			}
			continue
		}

		responses, next := r.machine.Step(ctx, state, msg)
		for _, resp := range responses {
			if !r.write(resp) {
				return
			}
		}
		state = next
	}

	r.logger.Info().Str("role", state.Role).Msg("Session closed")
}

// read arms the idle deadline and reads the next message.
func (r *Runner) read() (*protocol.Message, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.readTimeout)); err != nil {
		return nil, err
	}
	return r.reader.ReadMessage()
}

// handleReadError classifies a read failure. It returns true when the session
// should keep going (a malformed line outside role selection), false when it
// must terminate.
func (r *Runner) handleReadError(state State, err error) bool {
	switch {
	case errors.Is(err, protocol.ErrPeerClosed):
		r.logger.Info().Msg("Client disconnected")
		return false

	case errors.Is(err, protocol.ErrMalformed):
		r.logger.Warn().Err(err).Msg("Client sent a malformed message")
		r.write(protocol.NewError(errs.NewError(errs.ErrMalformedMessage).Message))
		// A garbled role selection terminates like any other bad opening message.
		return state.Phase != PhaseAwaitingRole

	case errors.Is(err, protocol.ErrLineTooLong):
		// The stream position is lost past the cap, so the session cannot continue.
		r.logger.Warn().Err(err).Msg("Client sent an oversized message")
		r.write(protocol.NewError(errs.NewError(errs.ErrMalformedMessage).Message))
		return false

	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			r.logger.Warn().Dur("read_timeout", r.readTimeout).Msg("Session idle timeout")
		} else {
			r.logger.Warn().Err(err).Msg("Session read failed")
		}
		return false
	}
}

// write sends one message under the write deadline. It returns false when the
// write failed and the session should terminate.
func (r *Runner) write(msg *protocol.Message) bool {
	if err := r.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
		r.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}
	if err := r.writer.WriteMessage(msg); err != nil {
		r.logger.Warn().Err(err).Msg("Session write failed")
		return false
	}
	return true
}
