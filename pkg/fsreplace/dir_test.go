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

package fsreplace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/ssgmirror/pkg/replace"
	"gitlab.com/tozd/go/errors"
)

func TestGlob(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		rel      string
		want     bool
	}{
		{name: "top_level_html", patterns: []string{"**/*.{html,css}"}, rel: "index.html", want: true},
		{name: "nested_css", patterns: []string{"**/*.{html,css}"}, rel: "a/b/site.css", want: true},
		{name: "other_ext", patterns: []string{"**/*.{html,css}"}, rel: "a/app.js", want: false},
		{name: "second_pattern", patterns: []string{"*.md", "img/**"}, rel: "img/x/y.png", want: true},
		{name: "none", patterns: nil, rel: "index.html", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Glob(tt.patterns...)(context.Background(), Meta{Rel: tt.rel})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGlobBadPattern(t *testing.T) {
	_, err := Glob("[")(context.Background(), Meta{Rel: "x"})
	require.Error(t, err)
}

func TestReplaceInDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "<a>b</a>")
	writeFile(t, filepath.Join(root, "css", "site.css"), "b{}")
	writeFile(t, filepath.Join(root, "js", "app.js"), "var b")
	writeFile(t, filepath.Join(root, "deep", "er", "page.html"), "bb")

	var seen []Meta
	rules := []replace.Rule{
		replace.NewRule(replace.MustCompile(`b`), func(_ context.Context, call replace.Call) (string, error) {
			seen = append(seen, call.Meta.(Meta))
			return "B", nil
		}),
	}

	results, err := ReplaceInDir(context.Background(), root, []FileRule{
		{Name: "markup", Match: Glob("**/*.{html,css}"), Rules: rules},
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "<a>B</a>", readFile(t, filepath.Join(root, "index.html")))
	assert.Equal(t, "B{}", readFile(t, filepath.Join(root, "css", "site.css")))
	assert.Equal(t, "BB", readFile(t, filepath.Join(root, "deep", "er", "page.html")))
	assert.Equal(t, "var b", readFile(t, filepath.Join(root, "js", "app.js")))

	require.Len(t, results, 3)
	total := 0
	for _, r := range results {
		total += r.Replacements
	}
	assert.Equal(t, 4, total)

	require.NotEmpty(t, seen)
	for _, m := range seen {
		assert.Equal(t, root, m.Root)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(m.Rel)), m.Path)
	}

	assert.Equal(t, []string{"css", "deep", "index.html", "js"}, entries(t, root))
}

func TestReplaceInDirAppliesEveryMatchingRule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.html"), "abc")

	results, err := ReplaceInDir(context.Background(), root, []FileRule{
		{Name: "first", Match: Any, Rules: []replace.Rule{
			replace.NewRule(replace.MustCompile(`a`), replace.Literal("b")),
		}},
		{Name: "second", Match: Glob("*.html"), Rules: []replace.Rule{
			replace.NewRule(replace.MustCompile(`b`), replace.Literal("X")),
		}},
	}, Options{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "XXc", readFile(t, filepath.Join(root, "a.html")))
}

func TestReplaceInDirSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "real.html"), "b")
	require.NoError(t, os.Symlink(filepath.Join(outside, "real.html"), filepath.Join(root, "link.html")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.html")))

	results, err := ReplaceInDir(context.Background(), root, []FileRule{
		{Name: "all", Match: Any, Rules: bRules()},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "B", readFile(t, filepath.Join(root, "link.html")))
	info, err := os.Lstat(filepath.Join(root, "link.html"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "link is replaced by the rewritten file")
	assert.Equal(t, "b", readFile(t, filepath.Join(outside, "real.html")))
}

func TestReplaceInDirStopsOnError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "b")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	_, err := ReplaceInDir(context.Background(), root, []FileRule{
		{Name: "broken", Match: func(context.Context, Meta) (bool, error) {
			return false, errors.New("bad predicate")
		}},
	}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad predicate")
}

func TestReplaceInDirCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := ReplaceInDir(ctx, root, []FileRule{{Name: "all", Match: Any, Rules: bRules()}}, Options{})
	require.Error(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "b", readFile(t, filepath.Join(root, "a.txt")))
}
