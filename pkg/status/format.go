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
	"fmt"
)

// FormatFile formats a file status message with emojis
func FormatFile(fs FileStatus) string {
	switch fs.Status {
	case StatusModified:
		return fmt.Sprintf("📝 Modified %s (%s)", fs.Path, plural(fs.Replacements, "replacement"))
	case StatusFailed:
		if fs.Err != nil {
			return fmt.Sprintf("❌ Failed %s: %v", fs.Path, fs.Err)
		}
		return fmt.Sprintf("❌ Failed %s", fs.Path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", fs.Path)
	}
}

// FormatTotals formats a one line summary
func FormatTotals(t Totals) string {
	if t.Failed > 0 {
		return fmt.Sprintf("❌ %s, %d modified, %d failed, %s",
			plural(t.Files, "file"), t.Modified, t.Failed, plural(t.Replacements, "replacement"))
	}
	return fmt.Sprintf("✅ %s, %d modified, %s",
		plural(t.Files, "file"), t.Modified, plural(t.Replacements, "replacement"))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
