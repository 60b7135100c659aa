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

package operate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/ssgmirror/gen/mockery"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/operate"
)

func TestExecRunner(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    string
		wantErr    bool
		wantStatus int
		wantStderr string
	}{
		{
			name:    "success",
			args:    []string{"-c", "echo hi"},
			wantOut: "hi\n",
		},
		{
			name:       "non_zero_exit",
			args:       []string{"-c", "echo out; echo oops >&2; exit 3"},
			wantOut:    "out\n",
			wantErr:    true,
			wantStatus: 3,
			wantStderr: "oops\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &operate.ExecRunner{}
			out, err := runner.Run(context.Background(), t.TempDir(), "sh", tt.args...)
			assert.Equal(t, tt.wantOut, string(out.Stdout), "stdout should match")
			if !tt.wantErr {
				require.NoError(t, err, "command should succeed")
				return
			}
			require.Error(t, err, "command should fail")
			fe, ok := fault.As(err)
			require.True(t, ok, "error should be a fault")
			assert.Equal(t, fault.Exec, fe.Kind, "kind should be exec")
			assert.Equal(t, tt.wantStatus, fe.ExitStatus, "exit status should match")
			assert.Equal(t, tt.wantStderr, fe.Stderr, "stderr should match")
		})
	}
}

func TestExecRunnerDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("here\n"), 0o644))

	runner := &operate.ExecRunner{Env: []string{"SSGMIRROR_X=42"}}
	out, err := runner.Run(context.Background(), dir, "sh", "-c", "cat marker; echo $SSGMIRROR_X")
	require.NoError(t, err)
	assert.Equal(t, "here\n42\n", string(out.Stdout))
	assert.Equal(t, "here", out.FirstLine())
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := (&operate.ExecRunner{}).Run(context.Background(), t.TempDir(), "ssgmirror-definitely-not-installed")
	require.Error(t, err)
	fe, ok := fault.As(err)
	require.True(t, ok)
	assert.Equal(t, fault.Exec, fe.Kind)
	assert.Equal(t, -1, fe.ExitStatus)
}

func TestExecRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&operate.ExecRunner{}).Run(ctx, t.TempDir(), "sh", "-c", "exit 0")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Cancelled))
}

func TestDirCommands(t *testing.T) {
	ctx := context.Background()
	runner := mockery.NewMockRunner_operate(t)
	dir := operate.In("/work/site", runner)

	runner.EXPECT().Run(mock.Anything, "/work/site", "git", "status", "-s").
		Return(operate.Output{Stdout: []byte(" M index.html\n")}, nil).Once()
	runner.EXPECT().Run(mock.Anything, "/work/site", "wget",
		"--recursive", "--adjust-extension", "-e", "robots=off", "--no-proxy", "--no-cache",
		"--no-check-certificate", "--page-requisites", "--html-extension", "--convert-links",
		"--restrict-file-names=windows", "--no-verbose",
		"https://a.org/", "https://a.org/blog/").
		Return(operate.Output{}, nil).Once()
	runner.EXPECT().Run(mock.Anything, "/work/site/a.org", "netlify",
		"deploy", "--dir", "/work/site/a.org", "--auth", "tok", "--json", "--prod").
		Return(operate.Output{}, nil).Once()
	runner.EXPECT().Run(mock.Anything, "/work/site/a.org", "/bin/netlify",
		"deploy", "--dir", "/work/site/a.org", "--auth", "tok", "--json").
		Return(operate.Output{}, nil).Once()

	out, err := dir.Git(ctx, "status", "-s")
	require.NoError(t, err)
	assert.Equal(t, "M index.html", out.FirstLine())

	_, err = dir.Download(ctx, "https://a.org/", "https://a.org/blog/")
	require.NoError(t, err)

	_, err = dir.Cd("a.org").DeployNetlify(ctx, operate.Deploy{AuthToken: "tok", Production: true})
	require.NoError(t, err)
	_, err = dir.Cd("a.org").DeployNetlify(ctx, operate.Deploy{AuthToken: "tok", Command: "/bin/netlify"})
	require.NoError(t, err)
}

func TestDirFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	other := t.TempDir()
	dir := operate.In(root, nil)

	ok, err := dir.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok, "nothing exists yet")

	require.NoError(t, dir.Mkdir(ctx, "a", "b"))
	require.NoError(t, dir.Write(ctx, []string{"a", "b", "c.txt"}, []byte("hello")))

	ok, err = dir.Exists(ctx, "a", "b", "c.txt")
	require.NoError(t, err)
	assert.True(t, ok, "written file should exist")

	require.NoError(t, dir.Move(ctx, []string{"a"}, other))
	b, err := os.ReadFile(filepath.Join(other, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	ok, err = dir.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "moved entry should be gone")

	err = dir.Write(ctx, []string{"missing", "x.txt"}, []byte("x"))
	assert.True(t, fault.Is(err, fault.SinkWrite), "writing below a missing dir is a sink fault")
}

func TestDirCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := operate.In(t.TempDir(), nil)

	_, err := dir.Exists(ctx, "x")
	assert.True(t, fault.Is(err, fault.Cancelled))
	assert.True(t, fault.Is(dir.Mkdir(ctx, "x"), fault.Cancelled))
	assert.True(t, fault.Is(dir.Write(ctx, []string{"x"}, nil), fault.Cancelled))
	assert.True(t, fault.Is(dir.Move(ctx, []string{"x"}, t.TempDir()), fault.Cancelled))
}
