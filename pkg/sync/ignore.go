// Copyright 2024 The Remote Docker Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sync

import (
	"strings"

	"github.com/lime-green/remote-docker/pkg/log"
)

// TranslateGitIgnores converts gitignore-style patterns into unison ignore
// specs ("Name pat" or "Path pat").
//
// The mapping follows gitignore semantics where unison can express them:
// a pattern without a slash matches a basename anywhere in the tree (Name),
// a pattern containing a slash is anchored to the replica root (Path).
// Ignoring a path in unison already covers everything below it, so a
// trailing slash only loses the files-vs-directories distinction. Negation
// ("!") has no unison counterpart and is skipped with a warning.
func TranslateGitIgnores(patterns []string) []string {
	ignores := []string{}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if strings.HasPrefix(pattern, "!") {
			log.Warningf("ignoring unsupported negated sync ignore pattern '%s'", pattern)
			continue
		}

		pattern = strings.TrimSuffix(pattern, "/")
		pattern = strings.TrimPrefix(pattern, "**/")
		pattern = strings.ReplaceAll(pattern, "**", "*")

		if strings.Contains(pattern, "/") {
			ignores = append(ignores, "Path "+strings.TrimPrefix(pattern, "/"))
		} else {
			ignores = append(ignores, "Name "+pattern)
		}
	}

	return ignores
}
