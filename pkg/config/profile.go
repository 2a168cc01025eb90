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

package config

// ResolveProfile picks the active profile name. The command line flag wins,
// then the config's default_profile. An empty result is valid and means the
// base configuration is used unmerged.
func ResolveProfile(cliFlag, configDefault string) string {
	if cliFlag != "" {
		return cliFlag
	}
	return configDefault
}
