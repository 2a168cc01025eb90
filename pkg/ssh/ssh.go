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

// Package ssh builds argv invocations of the system ssh binary. It does
// not implement the SSH protocol: shelling out to ssh inherits the user's
// full SSH configuration (agent, known hosts handling, ProxyJump) without
// reimplementing any of it. All arguments are passed as argv elements,
// never through a shell.
package ssh

import (
	"fmt"
	"os/exec"
	"os/user"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/lime-green/remote-docker/pkg/model"
)

// RemoteDockerSocket is the unix socket the remote docker daemon is
// forwarded to on the local side
const RemoteDockerSocket = "/var/run/remote-docker.sock"

const remoteDockerDaemonSocket = "/var/run/docker.sock"

var baseOptions = []string{
	"-o", "StrictHostKeyChecking=no",
	"-o", "ServerAliveInterval=60",
}

// EnsureBinary checks that ssh is available on PATH, so commands fail with
// a clear message instead of a confusing spawn error later
func EnsureBinary() error {
	if _, err := exec.LookPath("ssh"); err != nil {
		return fmt.Errorf("ssh binary not found in PATH")
	}
	return nil
}

// TunnelArgv builds the ssh invocation that carries the docker socket
// forward plus every planned port-forward rule. The process runs under
// sudo: forwarding the docker socket to /var/run requires it, and the
// LocalCommand chown hands the socket back to the invoking user.
func TunnelArgv(keyPath, username, ip string, forwards []model.Forward) ([]string, error) {
	localUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to look up the current user: %w", err)
	}

	argv := []string{
		"sudo", "ssh",
		"-o", "ExitOnForwardFailure=yes",
	}
	argv = append(argv, baseOptions...)
	argv = append(argv,
		"-N", "-T",
		"-i", keyPath,
		fmt.Sprintf("%s@%s", username, ip),
		"-L", fmt.Sprintf("%s:%s", RemoteDockerSocket, remoteDockerDaemonSocket),
		"-o", "StreamLocalBindUnlink=yes",
		"-o", "PermitLocalCommand=yes",
		"-o", fmt.Sprintf("LocalCommand=sudo chown %s %s", localUser.Username, RemoteDockerSocket),
	)

	for _, f := range forwards {
		switch f.Direction {
		case model.Local:
			argv = append(argv, "-L", fmt.Sprintf("localhost:%d:localhost:%d", f.External, f.Internal))
		case model.Remote:
			argv = append(argv, "-R", fmt.Sprintf("0.0.0.0:%d:localhost:%d", f.External, f.Internal))
		}
	}

	return argv, nil
}

// ConnectArgv builds an interactive (or remote command) ssh invocation.
// options is the raw --ssh-options string and is split with shell quoting
// rules; command is passed through to the remote shell untouched.
func ConnectArgv(keyPath, username, ip, command, options string) ([]string, error) {
	argv := []string{"ssh"}
	argv = append(argv, baseOptions...)
	argv = append(argv, "-i", keyPath)

	if options != "" {
		extra, err := shellquote.Split(options)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ssh options '%s': %w", options, err)
		}
		argv = append(argv, extra...)
	}

	argv = append(argv, fmt.Sprintf("%s@%s", username, ip))
	if command != "" {
		argv = append(argv, command)
	}

	return argv, nil
}
