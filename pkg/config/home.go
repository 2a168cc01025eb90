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

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/lime-green/remote-docker/pkg/log"
)

const homeFolderName = ".remote-docker"

// GetHome returns the path of the rd state folder (log files), creating it
// if needed. REMOTE_DOCKER_HOME overrides the location.
func GetHome() string {
	if v, ok := os.LookupEnv("REMOTE_DOCKER_HOME"); ok {
		return v
	}

	home, err := homedir.Dir()
	if err != nil {
		log.Fatalf("failed to get the user's home directory: %s", err)
	}

	d := filepath.Join(home, homeFolderName)
	if err := os.MkdirAll(d, 0700); err != nil {
		log.Fatalf("failed to create %s: %s", d, err)
	}

	return d
}

// GetBinaryName returns the name rd was invoked as
func GetBinaryName() string {
	return filepath.Base(os.Args[0])
}
