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

package status

import (
	"path/filepath"

	"github.com/walteh/ssgmirror/pkg/fsreplace"
)

// 📊 Status is the outcome of rewriting one file
type Status int

const (
	StatusUnknown   Status = iota
	StatusUnchanged        // content is the same as before
	StatusModified         // at least one replacement changed the content
	StatusFailed           // the rewrite failed, the file was kept as is
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileStatus describes one rewritten file
type FileStatus struct {
	Path         string // path relative to the rewritten root
	Status       Status
	Replacements int
	Digest       string // BLAKE3 of the final content
	Err          error
}

// Failed describes a file whose rewrite failed
func Failed(path string, err error) FileStatus {
	return FileStatus{Path: path, Status: StatusFailed, Err: err}
}

// 🔄 FromResults folds rewrite results into one status per file, in the
// order files were first seen. A file rewritten by several file rules is
// modified if any pass changed it; its digest is the one of the last pass.
func FromResults(root string, results []fsreplace.Result) []FileStatus {
	index := map[string]int{}
	var out []FileStatus
	for _, res := range results {
		path := res.Path
		if rel, err := filepath.Rel(root, res.Path); err == nil {
			path = filepath.ToSlash(rel)
		}

		i, ok := index[path]
		if !ok {
			i = len(out)
			index[path] = i
			out = append(out, FileStatus{Path: path, Status: StatusUnchanged})
		}
		fs := &out[i]
		fs.Replacements += res.Replacements
		fs.Digest = res.OutputDigest
		if res.Changed() {
			fs.Status = StatusModified
		}
	}
	return out
}

// 🧮 Totals counts statuses
type Totals struct {
	Files        int
	Modified     int
	Unchanged    int
	Failed       int
	Replacements int
}

// Count totals up statuses
func Count(statuses []FileStatus) Totals {
	var t Totals
	for _, s := range statuses {
		t.Files++
		t.Replacements += s.Replacements
		switch s.Status {
		case StatusModified:
			t.Modified++
		case StatusUnchanged:
			t.Unchanged++
		case StatusFailed:
			t.Failed++
		}
	}
	return t
}
