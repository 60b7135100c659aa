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
	"unicode/utf8"

	"github.com/walteh/ssgmirror/pkg/fault"
)

// 📋 registry is the scan state of one invocation: a cursor and a counter
// per rule, kept in rule order. Nothing here outlives the invocation.
type registry struct {
	rules   []Rule
	cursors []int
	counts  []int
}

func newRegistry(rules []Rule) *registry {
	return &registry{
		rules:   rules,
		cursors: make([]int, len(rules)),
		counts:  make([]int, len(rules)),
	}
}

// rewind puts every cursor back to 0
func (r *registry) rewind() {
	for i := range r.cursors {
		r.cursors[i] = 0
	}
}

// watermark is the smallest cursor. No rule can produce a match starting
// before it, so text before it is final.
func (r *registry) watermark() int {
	w := -1
	for _, c := range r.cursors {
		if w < 0 || c < w {
			w = c
		}
	}
	if w < 0 {
		return 0
	}
	return w
}

// shift moves every cursor back by w after the first w bytes were released
func (r *registry) shift(w int) {
	for i, c := range r.cursors {
		c -= w
		if c < 0 {
			c = 0
		}
		r.cursors[i] = c
	}
}

// splice updates cursors after rule sel replaced buf[s:e] with n bytes.
// buf is the buffer after the edit.
//
// The fired rule resumes after its own replacement. A cursor inside the
// replaced span goes back to s so the new text is searched by that rule.
// Cursors at or past e keep pointing at the same text.
func (r *registry) splice(sel, s, e, n int, buf string) {
	delta := n - (e - s)
	for i, c := range r.cursors {
		switch {
		case i == sel:
			c = s + n
			if e == s {
				// an empty match must not be found again at the same spot
				c += nextRuneWidth(buf, c)
			}
		case c <= s:
		case c >= e:
			c += delta
		default:
			c = s
		}
		r.cursors[i] = c
	}
}

func nextRuneWidth(buf string, at int) int {
	if at >= len(buf) {
		return 1
	}
	_, w := utf8.DecodeRuneInString(buf[at:])
	return w
}

// settled reports whether a match starting at s in a buffer of length end
// is final: no rule whose cursor is at or before s can find a different
// match there, or an earlier one, once more text arrives. That needs every
// such rule to have a MaxSpan that fits in the buffer from s on. A rule
// without MaxSpan keeps everything pending until the input ends.
func (r *registry) settled(s, end int) bool {
	for i, rule := range r.rules {
		if r.cursors[i] > s {
			continue
		}
		if rule.MaxSpan <= 0 || s+rule.MaxSpan > end {
			return false
		}
	}
	return true
}

// earliest runs every rule's pattern against buf from its cursor and
// returns the rule whose match starts first, ties going to the earlier
// rule. It returns -1 and nil when nothing matches.
//
// Searching never moves a cursor; only splice does, for the selected rule.
// A rule with MaxSpan that found nothing may advance past text too far
// back to start a match.
func (r *registry) earliest(buf string) (int, *Match, error) {
	best := -1
	var bestMatch *Match
	for i, rule := range r.rules {
		at := r.cursors[i]
		if at > len(buf) {
			continue
		}
		m, err := rule.Pattern.FindFrom(buf, at)
		if err != nil {
			return -1, nil, fault.New(fault.Search, "", err)
		}
		if m == nil {
			if rule.MaxSpan > 0 {
				if safe := len(buf) - rule.MaxSpan + 1; safe > at {
					r.cursors[i] = safe
				}
			}
			continue
		}
		if bestMatch == nil || m.Start < bestMatch.Start {
			best, bestMatch = i, m
		}
	}
	if bestMatch != nil {
		bestMatch.Prefix = buf[:bestMatch.Start]
	}
	return best, bestMatch, nil
}
