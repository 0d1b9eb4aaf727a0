package upstream

import (
	"bufio"
	"bytes"
	"io"
)

// maxLineSize bounds a single backend frame. Frames are one JSON event per
// line; generated content can make them large.
const maxLineSize = 1024 * 1024

// Stream is a forward-only, non-restartable sequence of backend lines.
// Blank lines are skipped; returned lines carry no trailing newline. The
// frame content is never parsed or modified.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	line    []byte
}

// NewStream wraps a backend response body. Useful directly in tests; the
// gateway obtains streams from Client.StreamChat.
func NewStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Stream{
		body:    body,
		scanner: scanner,
	}
}

// Next advances to the next non-blank line, reporting false at end of stream
// or on read failure.
func (s *Stream) Next() bool {
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		s.line = line
		return true
	}
	return false
}

// Line returns the current line. Valid until the next call to Next.
func (s *Stream) Line() []byte {
	return s.line
}

// Err returns the read error that ended the stream, if any. A nil error
// means the backend closed the stream normally.
func (s *Stream) Err() error {
	return s.scanner.Err()
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	return s.body.Close()
}
