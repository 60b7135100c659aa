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

/*
Package status reports what a rewrite did to the files of a directory.

🎯 Purpose:
- Folds fsreplace results into one status per file
- Formats per-file lines and totals with emojis
- Renders a pterm table summary for the CLI

🔄 Flow:
1. fsreplace.ReplaceInDir returns one Result per file rule applied
2. FromResults merges them per file (unchanged, modified)
3. Summary and FormatFile turn them into text
*/
package status
