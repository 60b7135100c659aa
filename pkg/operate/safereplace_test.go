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

package operate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/ssgmirror/pkg/fault"
	"gitlab.com/tozd/go/errors"
)

func mkTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return out
}

func siblings(t *testing.T, parent string) []string {
	t.Helper()
	des, err := os.ReadDir(parent)
	require.NoError(t, err)
	var names []string
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

// moveGit carries .git from the backup into the new target
func moveGit() Op {
	return Op{
		Run: func(ctx context.Context, backup, target string) error {
			return In(backup, nil).Move(ctx, []string{".git"}, target)
		},
		Rewind: func(ctx context.Context, backup, target string) error {
			return In(target, nil).Move(ctx, []string{".git"}, backup)
		},
	}
}

func TestSafeReplace(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "site")
	next := filepath.Join(parent, "next")
	mkTree(t, target, map[string]string{".git/HEAD": "ref", "old.html": "old"})
	mkTree(t, next, map[string]string{"new.html": "new"})

	require.NoError(t, SafeReplace(context.Background(), target, next, moveGit()))

	assert.Equal(t, map[string]string{".git/HEAD": "ref", "new.html": "new"}, readTree(t, target))
	assert.Equal(t, []string{"site"}, siblings(t, parent), "backup and replacement must be gone")
}

func TestSafeReplaceMissingTarget(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "site")
	next := filepath.Join(parent, "next")
	mkTree(t, next, map[string]string{"new.html": "new"})

	require.NoError(t, SafeReplace(context.Background(), target, next, Op{}))
	assert.Equal(t, map[string]string{"new.html": "new"}, readTree(t, target))
}

func TestSafeReplaceRewindsFailedOp(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "site")
	next := filepath.Join(parent, "next")
	mkTree(t, target, map[string]string{".git/HEAD": "ref", "old.html": "old"})
	mkTree(t, next, map[string]string{"new.html": "new"})

	rewound := false
	op := moveGit()
	run := op.Run
	op.Run = func(ctx context.Context, backup, target string) error {
		if err := run(ctx, backup, target); err != nil {
			return err
		}
		return errors.New("op failed after moving git")
	}
	rewind := op.Rewind
	op.Rewind = func(ctx context.Context, backup, target string) error {
		rewound = true
		return rewind(ctx, backup, target)
	}

	err := SafeReplace(context.Background(), target, next, op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op failed")
	assert.True(t, rewound, "op should be rewound")

	assert.Equal(t, map[string]string{".git/HEAD": "ref", "old.html": "old"}, readTree(t, target))
	assert.Equal(t, []string{"site"}, siblings(t, parent))
}

func TestSafeReplaceMissingReplacement(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "site")
	mkTree(t, target, map[string]string{"old.html": "old"})

	err := SafeReplace(context.Background(), target, filepath.Join(parent, "nope"), Op{})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"old.html": "old"}, readTree(t, target))
	assert.Equal(t, []string{"site"}, siblings(t, parent))
}

func TestSafeReplaceCancelled(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "site")
	next := filepath.Join(parent, "next")
	mkTree(t, target, map[string]string{"old.html": "old"})
	mkTree(t, next, map[string]string{"new.html": "new"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SafeReplace(ctx, target, next, Op{})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Cancelled))
	assert.Equal(t, map[string]string{"old.html": "old"}, readTree(t, target))
}
