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

// Package config loads the description of one mirrored site.
//
//	               +-------------+
//	               |   Config    |
//	               |   (Site)    |
//	               +------+------+
//	                      |
//	    +---------+-------+-------+---------+
//	    |         |               |         |
//	+---+---+ +---+---+      +----+---+ +---+----+
//	|  HCL  | | YAML  |      |  JSON  | |  TOML  |
//	+-------+ +-------+      +--------+ +--------+
//
// 🎯 Purpose:
// - Picks a parser by file extension
// - Rejects unknown fields in every format
// - Fills defaults and validates values
//
// 🔄 Flow:
// 1. Reads the file
// 2. Decodes it with the registered parser
// 3. Validates and applies defaults (https, roots "/", update 1h)
// 4. Exposes derived values: URLs, NewURL, Interval, FileRules
//
// An HCL config looks like:
//
//	domain     = "mydomain.org"
//	new_domain = "me.com"
//	update     = "30m"
//
//	git {
//	  name  = "mirror"
//	  email = "mirror@me.com"
//	}
//
//	netlify {
//	  site_id    = "abc"
//	  auth_token = env("NETLIFY_AUTH_TOKEN")
//	}
//
//	rule {
//	  files   = ["**/*.html"]
//	  pattern = "Powered by (\\w+)"
//	  replace = "Mirrored from $1"
//	}
package config
