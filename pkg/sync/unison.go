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

// Package sync builds the unison invocations that keep the watched
// directories consistent with the remote agent. Unison's diffing and
// transfer algorithm is its own business; this package only derives the
// replica layout and the argv.
package sync

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Replica describes the unison replica shared by all watched directories:
// the common first path component serves as the replica root, each watched
// directory becomes a -path entry below it.
type Replica struct {
	Root  string
	Paths []string
}

// NewReplica derives the replica layout from the watched directories.
// Unison refuses "/" as a replica root, so every directory must be a child
// of the root directory and all of them must share their first component.
func NewReplica(dirs []string) (*Replica, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("directories must not be empty")
	}

	r := &Replica{}
	for _, dir := range dirs {
		clean := filepath.Clean(dir)
		if !filepath.IsAbs(clean) {
			return nil, fmt.Errorf("directory '%s' must be an absolute path", dir)
		}

		parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
		if parts[0] == "" {
			return nil, fmt.Errorf("directories must be children of the root directory")
		}

		root := "/" + parts[0]
		if r.Root == "" {
			r.Root = root
		} else if r.Root != root {
			return nil, fmt.Errorf("directories must share a common path other than '/'")
		}

		r.Paths = append(r.Paths, strings.Join(parts[1:], "/"))
	}

	return r, nil
}

// EnsureBinary checks that unison is available on PATH
func EnsureBinary() error {
	if _, err := exec.LookPath("unison"); err != nil {
		return fmt.Errorf("unison binary not found in PATH")
	}
	return nil
}

// Options configures a unison invocation
type Options struct {
	KeyPath        string
	Username       string
	IP             string
	IgnorePatterns []string

	// Force pushes the local replica's contents to the remote,
	// overwriting remote changes. Used for the initial sync.
	Force bool

	// RepeatWatch keeps unison running, watching both filesystems for
	// changes. Used for the long-running sync process.
	RepeatWatch bool
}

// Argv builds the unison invocation for the replica
func (r *Replica) Argv(opts Options) []string {
	argv := []string{
		"unison",
		r.Root,
		fmt.Sprintf("ssh://%s@%s/%s", opts.Username, opts.IP, r.Root),
		"-prefer", r.Root,
		"-batch",
		"-sshargs", fmt.Sprintf("-i %s", opts.KeyPath),
	}

	for _, ignore := range TranslateGitIgnores(opts.IgnorePatterns) {
		argv = append(argv, "-ignore", ignore)
	}

	for _, p := range r.Paths {
		if p == "" {
			p = "."
		}
		argv = append(argv, "-path", p)
	}

	if opts.Force {
		argv = append(argv, "-force", r.Root)
	}
	if opts.RepeatWatch {
		argv = append(argv, "-repeat", "watch")
	}

	return argv
}

// MkdirArgv builds the remote command that pre-creates the watched
// directories on the agent, owned by the ssh user
func MkdirArgv(username string, dirs []string) string {
	cmd := fmt.Sprintf("sudo install -d -o %s -g %s", username, username)
	for _, dir := range dirs {
		cmd += fmt.Sprintf(" -p %s", dir)
	}
	return cmd
}
