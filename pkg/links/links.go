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

// Package links holds the rule set that turns a downloaded copy of a site
// into a relocatable mirror: absolute links to the original domain become
// root relative, generator tags and feedly subscription links are dropped,
// and explicit index.html links are trimmed.
package links

import (
	"context"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/walteh/ssgmirror/pkg/fsreplace"
	"github.com/walteh/ssgmirror/pkg/replace"
)

// Files selects the files the link rules apply to
var Files = fsreplace.Glob("**/*.{html,css}")

const feedly = `https://feedly.com/i/subscription/feed/`

var (
	generatorTag  = regexp.MustCompile(`(?i)\s*<meta\s+name\s*=\s*["']generator["']\s+content\s*=\s*["'][^"']+['"][^>]+>`)
	feedlyLink    = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(feedly))
	relativeIndex = replace.MustCompile2(`(href=["']((?!https?://)[^"']+)).+(index\.html)`, regexp2.IgnoreCase)
	indexHref     = regexp.MustCompile(`(?i)(href\s*=\s*["'])\s*index.html\s*(["'])`)
)

// 🔗 Rules returns the rewrite rules for a site hosted at domain and
// mirrored to newURL (scheme included, e.g. "https://me.com").
//
// Open Graph and Twitter card url/image properties must stay absolute, so
// they are pointed at newURL. Every other absolute link to domain becomes
// "/".
func Rules(domain, newURL string) []replace.Rule {
	newURL = strings.TrimRight(newURL, "/")
	absolute := regexp.MustCompile(`((twitter|og):(url|image).*)?(https?://` + regexp.QuoteMeta(domain) + `/?)`)

	return []replace.Rule{
		replace.NewRule(replace.Regexp(generatorTag), replace.Delete),
		// case folding can widen a matched rune to three bytes
		{
			Pattern:  replace.Regexp(feedlyLink),
			Callback: replace.Delete,
			MaxSpan:  3 * len(feedly),
		},
		replace.NewRule(replace.Regexp(absolute), func(_ context.Context, call replace.Call) (string, error) {
			if card := call.Match.Group(1); card != "" {
				return card + newURL + "/", nil
			}
			return "/", nil
		}),
		replace.NewRule(relativeIndex, func(_ context.Context, call replace.Call) (string, error) {
			return call.Match.Group(1), nil
		}),
		replace.NewRule(replace.Regexp(indexHref), func(_ context.Context, call replace.Call) (string, error) {
			return call.Match.Group(1) + "." + call.Match.Group(2), nil
		}),
	}
}

// FileRule binds Rules to the html and css files of a site
func FileRule(domain, newURL string) fsreplace.FileRule {
	return fsreplace.FileRule{
		Name:  "links",
		Match: Files,
		Rules: Rules(domain, newURL),
	}
}

// ✏️ Rewrite applies the link rules, then any extra file rules, to every
// file below dir.
func Rewrite(ctx context.Context, dir, domain, newURL string, opts fsreplace.Options, extra ...fsreplace.FileRule) ([]fsreplace.Result, error) {
	fileRules := append([]fsreplace.FileRule{FileRule(domain, newURL)}, extra...)
	return fsreplace.ReplaceInDir(ctx, dir, fileRules, opts)
}
