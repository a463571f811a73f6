package session

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weatherline/internal/app/protocol"
)

// startRunner runs a session over an in-memory pipe and returns the client end.
func startRunner(t *testing.T, m *Machine, readTimeout time.Duration) (*protocol.Reader, *protocol.Writer, chan struct{}) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRunner(serverConn, m, readTimeout, time.Second).Run(context.Background())
	}()

	return protocol.NewReader(clientConn), protocol.NewWriter(clientConn), done
}

func send(t *testing.T, w *protocol.Writer, line string) {
	t.Helper()
	msg, err := protocol.Decode([]byte(line))
	require.NoError(t, err)
	require.NoError(t, w.WriteMessage(msg))
}

func recv(t *testing.T, r *protocol.Reader) *protocol.Message {
	t.Helper()
	msg, err := r.ReadMessage()
	require.NoError(t, err)
	return msg
}

func waitClosed(t *testing.T, r *protocol.Reader, done chan struct{}) {
	t.Helper()
	_, err := r.ReadMessage()
	require.ErrorIs(t, err, protocol.ErrPeerClosed)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate")
	}
}

func TestRunnerUserFlow(t *testing.T) {
	fs := newFakeStore()
	r, w, done := startRunner(t, newTestMachine(fs, nil), time.Minute)

	send(t, w, `{"role":"user","username":"alice"}`)

	greeting := recv(t, r)
	require.Equal(t, "Welcome, alice!", *greeting.Text)

	prompt := recv(t, r)
	require.Equal(t, protocol.HeaderSetLocation, *prompt.Header)

	send(t, w, `{"currentLocation":"Oslo"}`)

	menu := recv(t, r)
	require.Equal(t, protocol.HeaderOptions, *menu.Header)

	// No weather stored yet: an error comes back and the menu prompt repeats.
	send(t, w, `{"type":"getWeather"}`)
	failure := recv(t, r)
	require.NotNil(t, failure.Error)

	menu = recv(t, r)
	require.Equal(t, protocol.HeaderOptions, *menu.Header)

	send(t, w, `{"type":"disconnect"}`)
	waitClosed(t, r, done)

	require.Equal(t, "Oslo", fs.users["alice"].location)
}

func TestRunnerRejectsBadOpening(t *testing.T) {
	r, w, done := startRunner(t, newTestMachine(newFakeStore(), nil), time.Minute)

	send(t, w, `{"role":"wizard"}`)

	failure := recv(t, r)
	require.NotNil(t, failure.Error)
	waitClosed(t, r, done)
}

func TestRunnerMalformedOpeningCloses(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRunner(serverConn, newTestMachine(newFakeStore(), nil), time.Minute, time.Second).Run(context.Background())
	}()

	_, err := clientConn.Write([]byte("this is not json\n"))
	require.NoError(t, err)

	r := protocol.NewReader(clientConn)
	failure := recv(t, r)
	require.NotNil(t, failure.Error)
	waitClosed(t, r, done)
}

func TestRunnerMalformedMidSessionContinues(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRunner(serverConn, newTestMachine(newFakeStore(), nil), time.Minute, time.Second).Run(context.Background())
	}()

	r := protocol.NewReader(clientConn)
	w := protocol.NewWriter(clientConn)

	send(t, w, `{"role":"user","username":"alice"}`)
	recv(t, r) // greeting
	recv(t, r) // location prompt

	_, err := clientConn.Write([]byte("garbage line\n"))
	require.NoError(t, err)

	failure := recv(t, r)
	require.NotNil(t, failure.Error)

	// The session is still alive and back at the location prompt.
	prompt := recv(t, r)
	require.Equal(t, protocol.HeaderSetLocation, *prompt.Header)

	send(t, w, `{"currentLocation":"Oslo"}`)
	menu := recv(t, r)
	require.Equal(t, protocol.HeaderOptions, *menu.Header)

	send(t, w, `{"type":"disconnect"}`)
	waitClosed(t, r, done)
}

func TestRunnerOversizedLineCloses(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRunner(serverConn, newTestMachine(newFakeStore(), nil), time.Minute, time.Second).Run(context.Background())
	}()

	// An unterminated line past the codec cap. The write unblocks once the
	// session gives up and closes the connection.
	go clientConn.Write(bytes.Repeat([]byte("x"), 2*protocol.MaxLineBytes))

	r := protocol.NewReader(clientConn)
	failure := recv(t, r)
	require.NotNil(t, failure.Error)
	waitClosed(t, r, done)
}

func TestRunnerIdleTimeout(t *testing.T) {
	r, _, done := startRunner(t, newTestMachine(newFakeStore(), nil), 50*time.Millisecond)

	// Never send anything: the read deadline must close the session.
	waitClosed(t, r, done)
}

func TestRunnerContextCancellation(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRunner(serverConn, newTestMachine(newFakeStore(), nil), time.Minute, time.Second).Run(ctx)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not terminate the session")
	}
}

func TestRunnerPeerDisconnect(t *testing.T) {
	serverConn, clientConn := net.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRunner(serverConn, newTestMachine(newFakeStore(), nil), time.Minute, time.Second).Run(context.Background())
	}()

	// Dropping the connection mid-session loses the session silently.
	require.NoError(t, clientConn.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("peer disconnect did not terminate the session")
	}
}
