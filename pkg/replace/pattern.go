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

package replace

import (
	"regexp"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// 🔎 Pattern is a stateless, reusable search expression. Scan state lives in
// the driver, never in the pattern, so one Pattern can serve any number of
// invocations.
type Pattern interface {
	// FindFrom returns the leftmost match starting at or after offset, or
	// nil when there is none. offset is a byte offset into text.
	FindFrom(text string, offset int) (*Match, error)
}

// 🎯 Match is one hit of a pattern in the pending buffer
type Match struct {
	Start int // byte offset of the match in the pending buffer
	End   int // byte offset just past the match

	// Groups holds the whole match at index 0 followed by each capture
	// group. A group that did not participate is "".
	Groups []string

	// Index holds absolute start/end byte pairs for Groups, -1 for a group
	// that did not participate.
	Index []int

	// Names holds the capture group names, "" for unnamed groups.
	Names []string

	// Prefix is the pending text before Start. It is best-effort context:
	// text already emitted downstream is not part of it.
	Prefix string
}

// Text returns the matched text
func (m Match) Text() string {
	if len(m.Groups) == 0 {
		return ""
	}
	return m.Groups[0]
}

// Group returns capture group i, or "" if it does not exist
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Named returns the capture group called name, or ""
func (m Match) Named(name string) string {
	for i, n := range m.Names {
		if n != "" && n == name {
			return m.Group(i)
		}
	}
	return ""
}

// relativeIndex returns Index shifted so that Start is 0
func (m Match) relativeIndex() []int {
	rel := make([]int, len(m.Index))
	for i, v := range m.Index {
		if v < 0 {
			rel[i] = -1
			continue
		}
		rel[i] = v - m.Start
	}
	return rel
}

// 📐 regexpPattern adapts the standard library's RE2 engine
type regexpPattern struct {
	re *regexp.Regexp
}

// Regexp adapts re to Pattern. The search sees text from offset onwards
// only, so `^` and `\b` treat offset as the start of input.
func Regexp(re *regexp.Regexp) Pattern {
	return regexpPattern{re: re}
}

// MustCompile compiles expr with the standard library and adapts it
func MustCompile(expr string) Pattern {
	return Regexp(regexp.MustCompile(expr))
}

func (p regexpPattern) FindFrom(text string, offset int) (*Match, error) {
	if offset < 0 || offset > len(text) {
		return nil, nil
	}
	loc := p.re.FindStringSubmatchIndex(text[offset:])
	if loc == nil {
		return nil, nil
	}

	m := &Match{
		Start:  offset + loc[0],
		End:    offset + loc[1],
		Groups: make([]string, len(loc)/2),
		Index:  make([]int, len(loc)),
		Names:  p.re.SubexpNames(),
	}
	for i := range m.Groups {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo < 0 {
			m.Index[2*i], m.Index[2*i+1] = -1, -1
			continue
		}
		m.Index[2*i], m.Index[2*i+1] = offset+lo, offset+hi
		m.Groups[i] = text[offset+lo : offset+hi]
	}
	return m, nil
}

// 🧩 regexp2Pattern adapts github.com/dlclark/regexp2, which supports
// lookaround and backreferences. Text before offset stays visible to
// lookbehind assertions.
type regexp2Pattern struct {
	re *regexp2.Regexp
}

// Regexp2 adapts re to Pattern
func Regexp2(re *regexp2.Regexp) Pattern {
	return regexp2Pattern{re: re}
}

// Compile2 compiles expr with regexp2 using opts
func Compile2(expr string, opts regexp2.RegexOptions) (Pattern, error) {
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w", expr, err)
	}
	return Regexp2(re), nil
}

// MustCompile2 is like Compile2 but panics on error
func MustCompile2(expr string, opts regexp2.RegexOptions) Pattern {
	p, err := Compile2(expr, opts)
	if err != nil {
		panic(err)
	}
	return p
}

func (p regexp2Pattern) FindFrom(text string, offset int) (*Match, error) {
	if offset < 0 || offset > len(text) {
		return nil, nil
	}
	runes := []rune(text)
	m, err := p.re.FindRunesMatchStartingAt(runes, utf8.RuneCountInString(text[:offset]))
	if err != nil {
		return nil, errors.Errorf("searching with %q: %w", p.re.String(), err)
	}
	if m == nil {
		return nil, nil
	}

	pos := newRunePos(text)
	groups := m.Groups()
	out := &Match{
		Groups: make([]string, len(groups)),
		Index:  make([]int, 2*len(groups)),
		Names:  make([]string, len(groups)),
	}
	for i, g := range groups {
		out.Names[i] = g.Name
		if len(g.Captures) == 0 {
			out.Index[2*i], out.Index[2*i+1] = -1, -1
			continue
		}
		lo := pos.byteAt(g.Index)
		hi := pos.byteAt(g.Index + g.Length)
		out.Index[2*i], out.Index[2*i+1] = lo, hi
		out.Groups[i] = text[lo:hi]
	}
	out.Start, out.End = out.Index[0], out.Index[1]
	blankNumericNames(out.Names)
	return out, nil
}

// blankNumericNames blanks regexp2's numeric names for unnamed groups so
// Names follows the standard library convention.
func blankNumericNames(names []string) {
	for i, n := range names {
		numeric := n != ""
		for _, r := range n {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			names[i] = ""
		}
	}
}

// runePos maps rune indices to byte offsets by walking text forwards.
// Requests must be non-decreasing for the walk to stay linear; earlier
// requests restart the walk.
type runePos struct {
	text string
	ri   int // rune index reached
	bi   int // byte offset of ri
}

func newRunePos(text string) *runePos {
	return &runePos{text: text}
}

func (p *runePos) byteAt(runeIndex int) int {
	if runeIndex < p.ri {
		p.ri, p.bi = 0, 0
	}
	for p.ri < runeIndex && p.bi < len(p.text) {
		_, w := utf8.DecodeRuneInString(p.text[p.bi:])
		p.bi += w
		p.ri++
	}
	return p.bi
}
