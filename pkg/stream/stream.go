// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stream provides the pull-based chunk sources and push-based chunk
// sinks the rewrite engine runs between.
//
// A Source hands out text one chunk at a time and returns io.EOF once it is
// exhausted. A Sink receives chunks in order. Both check ctx before every
// pull or push, so a cancelled context stops an in-flight transfer at the next
// chunk boundary.
package stream

import (
	"context"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/walteh/ssgmirror/pkg/fault"
)

// DefaultChunkSize matches the read size used for file sources when none is given
const DefaultChunkSize = 64 * 1024

// 📥 Source yields text chunks in order
type Source interface {
	// Next returns the next chunk, or io.EOF when there are no more
	Next(ctx context.Context) (string, error)
}

// 📤 Sink consumes text chunks in order
type Sink interface {
	Write(ctx context.Context, chunk string) error
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Next(ctx context.Context) (string, error) {
	return f(ctx)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, chunk string) error

func (f SinkFunc) Write(ctx context.Context, chunk string) error {
	return f(ctx, chunk)
}

// 📜 Strings returns a source that yields each of chunks as-is
func Strings(chunks ...string) Source {
	i := 0
	return SourceFunc(func(ctx context.Context) (string, error) {
		if err := fault.Canceled(ctx); err != nil {
			return "", err
		}
		if i >= len(chunks) {
			return "", io.EOF
		}
		i++
		return chunks[i-1], nil
	})
}

// 📖 ReaderSource reads chunks of at most size bytes from an io.Reader. A
// multi-byte UTF-8 sequence cut by a read is held back and prefixed to the
// next chunk.
type ReaderSource struct {
	r     io.Reader
	name  string
	buf   []byte
	carry []byte
	done  bool
}

// FromReader creates a ReaderSource. name is reported in read errors.
func FromReader(r io.Reader, name string, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ReaderSource{
		r:    r,
		name: name,
		buf:  make([]byte, size),
	}
}

func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	for {
		if err := fault.Canceled(ctx); err != nil {
			return "", err
		}
		if s.done {
			if len(s.carry) > 0 {
				rest := string(s.carry)
				s.carry = nil
				return rest, nil
			}
			return "", io.EOF
		}

		n, err := s.r.Read(s.buf)
		if err != nil && err != io.EOF {
			return "", fault.New(fault.SourceRead, s.name, err)
		}
		if err == io.EOF {
			s.done = true
		}
		if n == 0 {
			continue
		}

		data := append(s.carry, s.buf[:n]...)
		cut := len(data)
		if !s.done {
			cut = completeRunes(data)
		}
		chunk := string(data[:cut])
		s.carry = append([]byte(nil), data[cut:]...)
		if chunk != "" {
			return chunk, nil
		}
	}
}

// completeRunes returns the length of the longest prefix of b that does not
// end inside a multi-byte sequence.
func completeRunes(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

// 📁 FileSource is a ReaderSource over an open file
type FileSource struct {
	*ReaderSource
	file *os.File
}

// OpenFile opens path for chunked reading. The caller must Close it.
func OpenFile(path string, size int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.New(fault.SourceRead, path, err)
	}
	return &FileSource{
		ReaderSource: FromReader(f, path, size),
		file:         f,
	}, nil
}

func (s *FileSource) Close() error {
	return s.file.Close()
}

// 🧺 Collector is an in-memory sink that keeps every chunk it receives
type Collector struct {
	chunks []string
}

func (c *Collector) Write(ctx context.Context, chunk string) error {
	if err := fault.Canceled(ctx); err != nil {
		return err
	}
	c.chunks = append(c.chunks, chunk)
	return nil
}

// Chunks returns the received chunks in order
func (c *Collector) Chunks() []string {
	return c.chunks
}

// String returns the concatenation of every received chunk
func (c *Collector) String() string {
	return strings.Join(c.chunks, "")
}

// ✍️ ToWriter returns a sink writing each chunk to w. name is reported in
// write errors.
func ToWriter(w io.Writer, name string) Sink {
	return SinkFunc(func(ctx context.Context, chunk string) error {
		if err := fault.Canceled(ctx); err != nil {
			return err
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return fault.New(fault.SinkWrite, name, err)
		}
		return nil
	})
}

// 🚰 Drain copies every chunk of src into sink
func Drain(ctx context.Context, src Source, sink Sink) error {
	for {
		chunk, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, chunk); err != nil {
			return err
		}
	}
}

// ReadAll drains src into a single string
func ReadAll(ctx context.Context, src Source) (string, error) {
	var c Collector
	if err := Drain(ctx, src, &c); err != nil {
		return "", err
	}
	return c.String(), nil
}
