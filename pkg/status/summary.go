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
	"strconv"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 📋 Summary renders statuses as a table followed by the totals line.
// Unchanged files are left out of the table unless verbose is set.
func Summary(statuses []FileStatus, verbose bool) (string, error) {
	data := pterm.TableData{{"File", "Status", "Replacements"}}
	for _, s := range statuses {
		if s.Status == StatusUnchanged && !verbose {
			continue
		}
		data = append(data, []string{s.Path, s.Status.String(), strconv.Itoa(s.Replacements)})
	}

	totals := FormatTotals(Count(statuses))
	if len(data) == 1 {
		return totals + "\n", nil
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary: %w", err)
	}
	return table + "\n" + totals + "\n", nil
}
