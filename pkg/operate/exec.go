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

// Package operate is the glue between a site update and the outside world:
// external commands (wget, git, netlify) and the directory moves around
// them.
package operate

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"gitlab.com/tozd/go/errors"
)

// 📤 Output is what a finished command printed
type Output struct {
	Stdout []byte
	Stderr []byte
}

// FirstLine returns the first line of stdout, trimmed
func (o Output) FirstLine() string {
	line, _, _ := strings.Cut(string(o.Stdout), "\n")
	return strings.TrimSpace(line)
}

// 🏃 Runner runs a command in a working directory. A command that cannot be
// started or exits non-zero yields a fault.Exec error; the output gathered
// so far is returned alongside it.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Output, error)
}

// ExecRunner runs commands as child processes
type ExecRunner struct {
	// Env is appended to the inherited environment
	Env []string
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Output, error) {
	if err := fault.Canceled(ctx); err != nil {
		return Output{}, err
	}

	commandLine := strings.Join(append([]string{name}, args...), " ")
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Str("cmd", commandLine).Msg("running command")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	if cerr := fault.Canceled(ctx); cerr != nil {
		return out, cerr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, fault.NewExec(commandLine, exitErr.ExitCode(), stderr.String(), nil)
	}
	return out, fault.NewExec(commandLine, -1, stderr.String(), err)
}
