package upstream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamOf(data string) *Stream {
	return NewStream(io.NopCloser(strings.NewReader(data)))
}

func collect(t *testing.T, s *Stream) []string {
	t.Helper()
	var lines []string
	for s.Next() {
		lines = append(lines, string(s.Line()))
	}
	require.NoError(t, s.Err())
	return lines
}

func TestStreamPreservesOrder(t *testing.T) {
	s := streamOf(`{"a":1}` + "\n" + `{"b":2}` + "\n" + `{"c":3}` + "\n")
	defer s.Close()

	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, collect(t, s))
}

func TestStreamFiltersBlankLines(t *testing.T) {
	s := streamOf("{\"a\":1}\n\n\n{\"b\":2}\n   \n\t\n{\"c\":3}\n")
	defer s.Close()

	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, collect(t, s))
}

func TestStreamEmpty(t *testing.T) {
	s := streamOf("")
	defer s.Close()

	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
}

func TestStreamNoTrailingNewline(t *testing.T) {
	s := streamOf(`{"done":true}`)
	defer s.Close()

	assert.Equal(t, []string{`{"done":true}`}, collect(t, s))
}

func TestStreamContentIsOpaque(t *testing.T) {
	// Not JSON at all - the stream must pass it through untouched.
	s := streamOf("not json here\n")
	defer s.Close()

	assert.Equal(t, []string{"not json here"}, collect(t, s))
}
