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
	"context"
	"regexp"
)

// 📞 Call is what a Callback receives for one replacement
type Call struct {
	Match Match
	// Meta is the opaque per-invocation value handed to Replace, forwarded
	// unchanged to every callback.
	Meta any
	// Count is how many times this rule has already replaced something in
	// the current invocation. It starts at 0.
	Count int
}

// Callback computes the text that replaces a match. An empty result
// deletes the match. A non-nil error aborts the invocation.
type Callback func(ctx context.Context, call Call) (string, error)

// 📏 Rule pairs a pattern with its callback. A slice of rules is ordered:
// on equal match starts the earlier rule wins.
type Rule struct {
	Pattern  Pattern
	Callback Callback

	// MaxSpan, when positive, promises that whether and how Pattern matches
	// at a position depends on at most MaxSpan bytes from there, lookahead
	// included. The driver then lets the rule's cursor pass text that can no
	// longer start a match, and applies matches before the input ends once
	// MaxSpan bytes are buffered. Without it the rule keeps text pending
	// until the input ends.
	MaxSpan int
}

// NewRule is a shorthand for Rule{Pattern: p, Callback: cb}
func NewRule(p Pattern, cb Callback) Rule {
	return Rule{Pattern: p, Callback: cb}
}

// Literal returns a callback that always replaces with s
func Literal(s string) Callback {
	return func(context.Context, Call) (string, error) {
		return s, nil
	}
}

// Delete is a callback that removes every match
var Delete = Literal("")

// Expand returns a callback that expands template against the match the
// way regexp.Regexp.Expand does ($1, ${name}). re must be the expression
// the match came from.
func Expand(re *regexp.Regexp, template string) Callback {
	return func(_ context.Context, call Call) (string, error) {
		m := call.Match
		return string(re.ExpandString(nil, template, m.Text(), m.relativeIndex())), nil
	}
}
