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

// Package docker switches the local docker CLI between the default
// context and the remote-docker context pointing at the forwarded socket.
package docker

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/ssh"
)

// ContextName is the name of the docker context pointing at the agent
const ContextName = "remote-docker"

// UseRemoteContext creates the remote-docker context if needed and
// switches the docker CLI to it
func UseRemoteContext() error {
	log.Println("Switching docker context to remote-docker")

	if err := run("context", "inspect", ContextName); err != nil {
		log.Debugf("context '%s' doesn't exist yet, creating it", ContextName)
		if err := run(
			"context", "create",
			"--docker", fmt.Sprintf("host=unix://%s", ssh.RemoteDockerSocket),
			ContextName,
		); err != nil {
			return fmt.Errorf("failed to create docker context '%s': %w", ContextName, err)
		}
	}

	if err := run("context", "use", ContextName); err != nil {
		return fmt.Errorf("failed to switch docker context to '%s': %w", ContextName, err)
	}
	return nil
}

// UseDefaultContext switches the docker CLI back to the default context
func UseDefaultContext() error {
	log.Println("Switching docker context to default")

	if err := run("context", "use", "default"); err != nil {
		return fmt.Errorf("failed to switch docker context to 'default': %w", err)
	}
	return nil
}

func run(args ...string) error {
	cmd := exec.Command("docker", args...)
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr
	log.Debugf("running docker %v", args)
	return cmd.Run()
}
