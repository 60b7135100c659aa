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

// Package replace implements streaming multi-pattern search and replace.
//
// Text arrives from a stream.Source in chunks of any size. Every rule's
// pattern is searched against a pending buffer; the match that starts first
// is replaced by its rule's callback and the result is spliced back into the
// buffer, where every rule, the fired one included, may match it again. Text
// is released to the sink once every rule's cursor has moved past it.
//
// The output does not depend on how the input is chunked, as long as every
// declared MaxSpan holds and no rule relies on anchors. Before the input
// ends, a match is only applied once every rule that could still start a
// match at or before it declares a MaxSpan that fits in the buffer, and the
// match does not end at the end of the buffer. Otherwise more text could
// change which match wins, so the text stays pending. Rules without MaxSpan
// therefore keep the whole input pending until it ends; memory is bounded
// by MaxSpan only when every rule declares one.
//
// Patterns only see the pending buffer. ^, $, \b and lookbehind treat the
// cursor or the start of the buffer as the start of the input, so ^a
// replaces every a of "aaa" and anchored rules match again after text was
// released. Write rules that do not depend on anchors.
package replace

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/stream"
)

// 📊 Stats reports what one invocation did
type Stats struct {
	// Counts holds, per rule in rule order, how many replacements it made
	Counts []int
}

// Total returns the number of replacements made by all rules
func (s Stats) Total() int {
	total := 0
	for _, c := range s.Counts {
		total += c
	}
	return total
}

// 🔄 Replace reads src to the end, applies rules and writes the result to
// sink. meta is forwarded to every callback.
//
// With no rules every chunk is passed through as-is. On error nothing more
// is written; whatever was written before stays written. Errors from src,
// sink and callbacks are returned with their cause intact and tagged
// fault.SourceRead, fault.SinkWrite and fault.Callback; cancellation of ctx
// yields fault.Cancelled.
func Replace(ctx context.Context, src stream.Source, sink stream.Sink, rules []Rule, meta any) (Stats, error) {
	if len(rules) == 0 {
		return Stats{}, passthrough(ctx, src, sink)
	}

	d := &driver{
		reg:  newRegistry(rules),
		sink: sink,
		meta: meta,
	}
	err := d.run(ctx, src)

	stats := Stats{Counts: append([]int(nil), d.reg.counts...)}
	zerolog.Ctx(ctx).Trace().
		Ints("counts", stats.Counts).
		Int("emitted", d.emitted).
		Err(err).
		Msg("replace finished")
	return stats, err
}

// String is a convenience around Replace for in-memory text
func String(ctx context.Context, text string, rules []Rule, meta any) (string, Stats, error) {
	var out stream.Collector
	stats, err := Replace(ctx, stream.Strings(text), &out, rules, meta)
	if err != nil {
		return "", stats, err
	}
	return out.String(), stats, nil
}

func passthrough(ctx context.Context, src stream.Source, sink stream.Sink) error {
	for {
		if err := fault.Canceled(ctx); err != nil {
			return err
		}
		chunk, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return tag(fault.SourceRead, err)
		}
		if err := sink.Write(ctx, chunk); err != nil {
			return tag(fault.SinkWrite, err)
		}
	}
}

// tag gives err kind unless it already carries one
func tag(kind fault.Kind, err error) error {
	if fault.KindOf(err) != fault.Unknown {
		return err
	}
	return fault.New(kind, "", err)
}

// ⚙️ driver owns the pending buffer of one invocation
type driver struct {
	reg     *registry
	sink    stream.Sink
	meta    any
	buf     string
	emitted int
}

func (d *driver) run(ctx context.Context, src stream.Source) error {
	defer d.reg.rewind()
	d.reg.rewind()

	for {
		if err := fault.Canceled(ctx); err != nil {
			return err
		}
		chunk, err := src.Next(ctx)
		final := err == io.EOF
		if err != nil && !final {
			return tag(fault.SourceRead, err)
		}
		d.buf += chunk

		if err := d.resolve(ctx, final); err != nil {
			return err
		}
		if final {
			break
		}
	}

	if d.buf != "" {
		rest := d.buf
		d.buf = ""
		return d.emit(ctx, rest)
	}
	return nil
}

// resolve replaces matches until none is left that can be decided with the
// text at hand. Unless final, a match waits for more input while it could
// still grow, or while some rule could still produce an earlier match.
func (d *driver) resolve(ctx context.Context, final bool) error {
	for d.buf != "" {
		if err := fault.Canceled(ctx); err != nil {
			return err
		}

		sel, m, err := d.reg.earliest(d.buf)
		if err != nil {
			return err
		}
		if m == nil || (!final && (m.End == len(d.buf) || !d.reg.settled(m.Start, len(d.buf)))) {
			return d.flush(ctx)
		}

		repl, err := d.reg.rules[sel].Callback(ctx, Call{
			Match: *m,
			Meta:  d.meta,
			Count: d.reg.counts[sel],
		})
		if err != nil {
			return tag(fault.Callback, err)
		}
		d.reg.counts[sel]++

		d.buf = d.buf[:m.Start] + repl + d.buf[m.End:]
		d.reg.splice(sel, m.Start, m.End, len(repl), d.buf)

		if err := d.flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// flush releases the part of the buffer in front of the watermark
func (d *driver) flush(ctx context.Context) error {
	w := d.reg.watermark()
	if w <= 0 {
		return nil
	}
	if w >= len(d.buf) {
		out := d.buf
		d.buf = ""
		d.reg.rewind()
		return d.emit(ctx, out)
	}
	out := d.buf[:w]
	d.buf = d.buf[w:]
	d.reg.shift(w)
	return d.emit(ctx, out)
}

func (d *driver) emit(ctx context.Context, chunk string) error {
	if err := d.sink.Write(ctx, chunk); err != nil {
		return tag(fault.SinkWrite, err)
	}
	d.emitted += len(chunk)
	return nil
}
