package lexer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EOF is the sentinel returned by Reader.Current once the source is exhausted.
const EOF rune = -1

// DefaultRewindLimit bounds how many characters a Reader keeps for Rewind.
const DefaultRewindLimit = 256

// OutOfBoundsError is returned when Rewind is asked to move further back than
// the reader has advanced (or than its replay buffer holds).
type OutOfBoundsError struct {
	Requested int
	Available int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cannot rewind %d characters, only %d available", e.Requested, e.Available)
}

type char struct {
	r      rune
	line   int
	column int
}

// Reader exposes a single current character over a file or an in-memory
// string, with one-character advance and bounded rewind.
type Reader struct {
	src    io.RuneReader
	closer io.Closer
	err    error

	cur     char
	history []char // consumed characters, oldest first
	pending []char // characters restored by Rewind, next one last
	limit   int

	line   int
	column int
}

// NewReader creates a reader over an arbitrary io.Reader.
func NewReader(r io.Reader) *Reader {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	reader := &Reader{
		src:    rr,
		limit:  DefaultRewindLimit,
		line:   1,
		column: 1,
	}
	if c, ok := r.(io.Closer); ok {
		reader.closer = c
	}
	reader.cur = reader.read()
	return reader
}

// NewStringReader creates a reader over an in-memory template.
func NewStringReader(source string) *Reader {
	return NewReader(strings.NewReader(source))
}

// OpenFile creates a reader over a template file. A UTF-8 or UTF-16 byte
// order mark selects the decoding; without one the file is read as UTF-8.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := NewReader(bufio.NewReader(transform.NewReader(f, decoder)))
	reader.closer = f
	return reader, nil
}

// SetRewindLimit changes the size of the replay buffer. Characters already
// beyond the new limit are dropped.
func (r *Reader) SetRewindLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	r.limit = limit
	r.trim()
}

// Current returns the character at the current position, or EOF.
func (r *Reader) Current() rune {
	return r.cur.r
}

// Line returns the 1-based line of the current character.
func (r *Reader) Line() int {
	return r.cur.line
}

// Column returns the 1-based column of the current character.
func (r *Reader) Column() int {
	return r.cur.column
}

// Advance moves one character forward. Advancing at EOF keeps the reader at
// EOF but still counts as a step for Rewind.
func (r *Reader) Advance() {
	r.history = append(r.history, r.cur)
	r.trim()
	if n := len(r.pending); n > 0 {
		r.cur = r.pending[n-1]
		r.pending = r.pending[:n-1]
		return
	}
	r.cur = r.read()
}

// Rewind moves n characters back, restoring Current to what it was n
// advances ago.
func (r *Reader) Rewind(n int) error {
	if n < 0 || n > len(r.history) {
		return &OutOfBoundsError{Requested: n, Available: len(r.history)}
	}
	for i := 0; i < n; i++ {
		last := len(r.history) - 1
		r.pending = append(r.pending, r.cur)
		r.cur = r.history[last]
		r.history = r.history[:last]
	}
	return nil
}

// Err returns the first non-EOF error returned by the underlying source.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func (r *Reader) read() char {
	c := char{r: EOF, line: r.line, column: r.column}
	if r.err != nil {
		return c
	}
	ch, _, err := r.src.ReadRune()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return c
	}
	c.r = ch
	if ch == '\n' {
		r.line++
		r.column = 1
	} else {
		r.column++
	}
	return c
}

func (r *Reader) trim() {
	if over := len(r.history) - r.limit; over > 0 {
		r.history = append(r.history[:0], r.history[over:]...)
	}
}
