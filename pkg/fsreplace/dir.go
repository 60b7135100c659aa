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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/replace"
	"gitlab.com/tozd/go/errors"
)

// 📍 Meta is passed to every callback run by ReplaceInDir
type Meta struct {
	Path string // path of the file being rewritten
	Root string // directory the walk started from
	Rel  string // Path relative to Root, slash separated
}

// Predicate decides whether a file gets a rule set applied
type Predicate func(ctx context.Context, file Meta) (bool, error)

// 🧩 FileRule pairs a file predicate with the rules applied to matches
type FileRule struct {
	Name  string
	Match Predicate
	Rules []replace.Rule
}

// Glob matches files whose slash separated path relative to the walk root
// matches any of the doublestar patterns.
func Glob(patterns ...string) Predicate {
	return func(_ context.Context, file Meta) (bool, error) {
		for _, p := range patterns {
			ok, err := doublestar.Match(p, file.Rel)
			if err != nil {
				return false, errors.Errorf("matching %q: %w", p, err)
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Any matches every file
func Any(context.Context, Meta) (bool, error) {
	return true, nil
}

const irregular = fs.ModeNamedPipe | fs.ModeSocket | fs.ModeDevice | fs.ModeCharDevice | fs.ModeIrregular

// 🌲 ReplaceInDir walks root depth first and rewrites, in place, every file
// matched by a FileRule. A file matched by several FileRules is rewritten
// once per match, in order. A symbolic link to a file is treated as a file
// and ends up replaced by the rewritten content; links to directories are
// not followed. The walk stops at the first error, keeping the files
// already rewritten.
func ReplaceInDir(ctx context.Context, root string, fileRules []FileRule, opts Options) ([]Result, error) {
	logger := zerolog.Ctx(ctx)
	var results []Result

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fault.New(fault.SourceRead, path, err)
		}
		if err := fault.Canceled(ctx); err != nil {
			return err
		}
		if d.IsDir() || d.Type()&irregular != 0 {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				logger.Debug().Err(err).Str("path", path).Msg("skipping dangling link")
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relative path of %s: %w", path, err)
		}
		meta := Meta{Path: path, Root: root, Rel: filepath.ToSlash(rel)}

		for _, fr := range fileRules {
			ok, err := fr.Match(ctx, meta)
			if err != nil {
				return errors.Errorf("file rule %q on %s: %w", fr.Name, meta.Rel, err)
			}
			if !ok {
				continue
			}
			res, err := ReplaceInFile(ctx, path, fr.Rules, meta, opts)
			if err != nil {
				return err
			}
			logger.Debug().
				Str("file", meta.Rel).
				Str("rule", fr.Name).
				Int("replacements", res.Replacements).
				Msg("applied file rule")
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return results, err
	}
	return results, nil
}
