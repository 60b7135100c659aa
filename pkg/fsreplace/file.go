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

// Package fsreplace runs the streaming rewrite engine over files on disk.
//
// ReplaceInFile writes the rewritten text to a private temporary directory
// and only moves it over the original once the whole file was processed.
// A failed run leaves the original untouched and removes everything it
// created. Nothing here locks: callers must not run two transforms on one
// path at the same time.
package fsreplace

import (
	"bufio"
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/replace"
	"github.com/walteh/ssgmirror/pkg/stream"
	"github.com/zeebo/blake3"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options tunes file transforms
type Options struct {
	// ChunkSize is the read size for file sources, stream.DefaultChunkSize if 0
	ChunkSize int
	// TempDir is where the private temporary directory is created. It
	// defaults to the directory of the file being rewritten so the final
	// rename stays on one filesystem.
	TempDir string
}

// 📄 Result describes one completed file transform
type Result struct {
	Path         string
	Counts       []int  // replacements per rule
	Replacements int    // sum of Counts
	InputDigest  string // BLAKE3 of the text read, hex
	OutputDigest string // BLAKE3 of the text written, hex
}

// Changed reports whether the output differs from the input
func (r Result) Changed() bool {
	return r.InputDigest != r.OutputDigest
}

// digestSource hashes every chunk it passes on
type digestSource struct {
	src stream.Source
	h   *blake3.Hasher
}

func (s digestSource) Next(ctx context.Context) (string, error) {
	chunk, err := s.src.Next(ctx)
	if err == nil {
		_, _ = io.WriteString(s.h, chunk)
	}
	return chunk, err
}

// digestSink hashes every chunk it accepts
type digestSink struct {
	sink stream.Sink
	h    *blake3.Hasher
}

func (s digestSink) Write(ctx context.Context, chunk string) error {
	if err := s.sink.Write(ctx, chunk); err != nil {
		return err
	}
	_, _ = io.WriteString(s.h, chunk)
	return nil
}

func sum(h *blake3.Hasher) string {
	return hex.EncodeToString(h.Sum(nil))
}

// 🎯 ReplaceToTarget rewrites the file at source into sink
func ReplaceToTarget(ctx context.Context, source string, sink stream.Sink, rules []replace.Rule, meta any, opts Options) (Result, error) {
	res := Result{Path: source}

	src, err := stream.OpenFile(source, opts.ChunkSize)
	if err != nil {
		return res, err
	}
	defer src.Close()

	in, out := blake3.New(), blake3.New()
	stats, err := replace.Replace(ctx,
		digestSource{src: src, h: in},
		digestSink{sink: sink, h: out},
		rules, meta)
	res.Counts = stats.Counts
	res.Replacements = stats.Total()
	if err != nil {
		return res, err
	}

	res.InputDigest, res.OutputDigest = sum(in), sum(out)
	return res, nil
}

// 📝 ReplaceToFile rewrites source into a new file at target. source and
// target must differ.
func ReplaceToFile(ctx context.Context, source, target string, rules []replace.Rule, meta any, opts Options) (Result, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return Result{Path: source}, errors.Errorf("resolving %s: %w", source, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return Result{Path: source}, errors.Errorf("resolving %s: %w", target, err)
	}
	if absSource == absTarget {
		return Result{Path: source}, errors.Errorf("replacing %s into itself is not supported", source)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return Result{Path: source}, fault.New(fault.SinkWrite, target, err)
	}

	w := bufio.NewWriter(f)
	res, err := ReplaceToTarget(ctx, source, stream.ToWriter(w, target), rules, meta, opts)
	if err != nil {
		f.Close()
		return res, err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return res, fault.New(fault.SinkWrite, target, err)
	}
	if err := f.Close(); err != nil {
		return res, fault.New(fault.SinkWrite, target, err)
	}
	return res, nil
}

// 🔁 ReplaceInFile rewrites path in place. On any error the file is left as
// it was and the temporary directory is removed.
func ReplaceInFile(ctx context.Context, path string, rules []replace.Rule, meta any, opts Options) (Result, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path}, fault.New(fault.SourceRead, path, err)
	}

	parent := opts.TempDir
	if parent == "" {
		parent = filepath.Dir(path)
	}
	tmpDir, err := os.MkdirTemp(parent, ".replace-")
	if err != nil {
		return Result{Path: path}, fault.New(fault.SinkWrite, parent, err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.Warn().Err(err).Str("dir", tmpDir).Msg("removing temporary directory")
		}
	}()

	tmp := filepath.Join(tmpDir, filepath.Base(path))
	res, err := ReplaceToFile(ctx, path, tmp, rules, meta, opts)
	res.Path = path
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("rewrite failed, original kept")
		return res, err
	}

	if err := fault.Canceled(ctx); err != nil {
		return res, err
	}
	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		return res, fault.New(fault.SinkWrite, tmp, err)
	}
	// rename over the original is atomic: readers see the old or the new file
	if err := os.Rename(tmp, path); err != nil {
		return res, fault.New(fault.SinkWrite, path, err)
	}

	logger.Trace().
		Str("path", path).
		Int("replacements", res.Replacements).
		Bool("changed", res.Changed()).
		Msg("rewrote file")
	return res, nil
}
