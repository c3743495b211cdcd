package runtime

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// TemplateStream yields rendered fragments as the executor produces them.
// Fragments already delivered are not retracted when rendering fails later.
type TemplateStream struct {
	chunks chan streamChunk
	once   sync.Once
}

type streamChunk struct {
	text string
	err  error
}

func newTemplateStream() *TemplateStream {
	return &TemplateStream{
		chunks: make(chan streamChunk, 1),
	}
}

// Write implements io.Writer so the executor can emit into the stream.
func (s *TemplateStream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.chunks <- streamChunk{text: string(p)}
	return len(p), nil
}

func (s *TemplateStream) close(err error) {
	s.once.Do(func() {
		if err != nil {
			s.chunks <- streamChunk{err: err}
		}
		close(s.chunks)
	})
}

// Next returns the next rendered fragment from the stream. When the stream is
// exhausted io.EOF is returned. If rendering raised an error, that error is
// returned and the stream is closed.
func (s *TemplateStream) Next() (string, error) {
	chunk, ok := <-s.chunks
	if !ok {
		return "", io.EOF
	}
	if chunk.err != nil {
		return "", chunk.err
	}
	return chunk.text, nil
}

// Collect concatenates all remaining fragments into a single string. On a
// render error the fragments read so far are returned with the error.
func (s *TemplateStream) Collect() (string, error) {
	var builder strings.Builder
	for {
		chunk, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return builder.String(), nil
			}
			return builder.String(), err
		}
		builder.WriteString(chunk)
	}
}

// WriteTo copies the remaining fragments to w.
func (s *TemplateStream) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		chunk, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, err
		}
		n, err := io.WriteString(w, chunk)
		written += int64(n)
		if err != nil {
			s.drain()
			return written, err
		}
	}
}

// drain unblocks the producer after the consumer gave up.
func (s *TemplateStream) drain() {
	go func() {
		for range s.chunks {
		}
	}()
}
