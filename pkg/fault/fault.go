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

// Package fault defines the tagged error type shared by the rewrite engine
// and the site tooling around it.
package fault

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind classifies where a failure came from
type Kind int

const (
	Unknown    Kind = iota
	SourceRead      // chunk source failed
	Cancelled       // cancellation observed between chunks or mid-scan
	Callback        // a replacement callback failed
	SinkWrite       // chunk sink failed
	Exec            // an external command failed or exited non-zero
	Lock            // a lock file could not be taken or released
	Config          // configuration could not be read or is invalid
	Search          // a pattern failed while searching
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case SourceRead:
		return "source-read"
	case Cancelled:
		return "cancelled"
	case Callback:
		return "callback"
	case SinkWrite:
		return "sink-write"
	case Exec:
		return "exec"
	case Lock:
		return "lock"
	case Config:
		return "config"
	case Search:
		return "search"
	default:
		return "unknown"
	}
}

// 💥 Error is a failure with an explicit kind and the structured fields that
// go with it. Err is the underlying cause and is never rewritten.
type Error struct {
	Kind       Kind
	Path       string // file, directory or command involved, if any
	ExitStatus int    // exit status of an Exec failure, -1 when the process never ran
	Stderr     string // captured stderr of an Exec failure
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Kind == Exec {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitStatus)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// 🏭 New tags err with kind and path. A nil err yields nil.
func New(kind Kind, path string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: kind, Path: path, Err: err})
}

// 🛑 Canceled returns the cancellation error for ctx, or nil if ctx is live.
func Canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return New(Cancelled, "", err)
	}
	return nil
}

// ⚙️ NewExec describes a command that failed to start or exited non-zero.
func NewExec(command string, status int, stderr string, err error) error {
	if err == nil {
		err = errors.Errorf("exit status %d", status)
	}
	return errors.WithStack(&Error{
		Kind:       Exec,
		Path:       command,
		ExitStatus: status,
		Stderr:     stderr,
		Err:        err,
	})
}

// 🔍 As returns the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return Unknown
}

// Is reports whether err carries a fault of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
