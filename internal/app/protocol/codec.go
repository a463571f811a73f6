package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrPeerClosed reports a clean end of stream: the peer closed the connection
// between messages. It is distinct from a malformed message so callers can
// tell "no more messages" apart from "garbled message".
var ErrPeerClosed = errors.New("peer closed the connection")

// ErrMalformed reports a line that could not be decoded as a message object.
var ErrMalformed = errors.New("malformed message")

// ErrLineTooLong reports a line exceeding MaxLineBytes. The stream position is
// unrecoverable past this point, so callers must drop the connection.
var ErrLineTooLong = errors.New("message line too long")

// MaxLineBytes bounds a single encoded message. The largest legitimate line is
// an admin batch path or a weather report, both far below this.
const MaxLineBytes = 64 * 1024

// Encode serializes a message as a single line, terminator included.
// json.Marshal escapes any embedded newline inside string values, so the
// terminator written here is always the only one on the line.
func Encode(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses one line into a Message. Unknown fields are ignored; a line
// that is not a JSON object wraps ErrMalformed.
func Decode(line []byte) (*Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &msg, nil
}

// Reader reads newline-delimited messages from a byte stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for message reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadMessage reads the next line and decodes it. A clean EOF with no pending
// bytes yields ErrPeerClosed; an EOF cutting through a partial line still
// attempts a decode so a final unterminated message is not lost. Transport
// errors are returned as-is. A line growing past MaxLineBytes yields
// ErrLineTooLong without buffering the rest of it.
func (r *Reader) ReadMessage() (*Message, error) {
	var line []byte
	for {
		chunk, err := r.r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxLineBytes {
			return nil, fmt.Errorf("%w: over %d bytes", ErrLineTooLong, MaxLineBytes)
		}
		switch {
		case err == nil:
			return Decode(line)
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(bytes.TrimSpace(line)) == 0 {
				return nil, ErrPeerClosed
			}
			return Decode(line)
		default:
			return nil, fmt.Errorf("read message: %w", err)
		}
	}
}

// Writer writes newline-delimited messages to a byte stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w for message writing.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteMessage encodes msg and flushes it as one line.
func (w *Writer) WriteMessage(msg *Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush message: %w", err)
	}
	return nil
}
