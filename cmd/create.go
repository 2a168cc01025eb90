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

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/aws"
	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/docker"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/process"
	"github.com/lime-green/remote-docker/pkg/ssh"
)

// bootstrapSteps turns a fresh Ubuntu instance into the remote docker
// agent: docker from apt, GatewayPorts for remote forwards, unison from
// linuxbrew so the version matches what brew installs locally
var bootstrapSteps = []string{
	"set -x",
	"sudo sysctl -w net.core.somaxconn=4096",
	"sudo apt-get -y update",
	"sudo apt-get -y install build-essential curl file git docker.io",
	fmt.Sprintf("sudo usermod -aG docker %s", config.InstanceUsername),
	"sudo systemctl daemon-reload",
	"sudo systemctl restart docker.service",
	"sudo systemctl enable docker.service",
	`sudo sed -i -e '/GatewayPorts/ s/^.*$/GatewayPorts yes/' /etc/ssh/sshd_config`,
	"sudo service sshd restart",
	`/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/master/install.sh)"`,
	fmt.Sprintf(`echo 'eval $(/home/linuxbrew/.linuxbrew/bin/brew shellenv)' >> /home/%s/.profile`, config.InstanceUsername),
	"eval $(/home/linuxbrew/.linuxbrew/bin/brew shellenv)",
	"brew install unison",
	`sudo cp "$(which unison)" /usr/local/bin/`,
	`sudo cp "$(which unison-fsmonitor)" /usr/local/bin/`,
}

// Create returns the create command
func Create() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Provision the agent instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, cfg, err := newProvider(ctx)
			if err != nil {
				return err
			}

			if !ssh.KeyExists(afero.NewOsFs(), cfg.KeyPath) {
				return errors.UserError{
					E:    fmt.Errorf("key '%s' not found", cfg.KeyPath),
					Hint: fmt.Sprintf("Run '%s create-keypair' first", config.GetBinaryName()),
				}
			}

			spin := newSpinner("Creating the agent instance, this takes a few minutes...")
			spin.Start()
			err = provider.CreateStack(ctx)
			spin.Stop()
			if err != nil {
				return err
			}

			ip, err := provider.GetIP(ctx)
			if err != nil {
				return err
			}

			log.Information("waiting until SSH access is available")
			if err := aws.WaitForSSH(ctx, ip); err != nil {
				return err
			}
			// AWS can throw fopen errors on apt-get update if this is rushed
			time.Sleep(20 * time.Second)

			log.Information("bootstrapping the instance, this takes a few minutes")
			if err := bootstrap(cfg, ip); err != nil {
				return err
			}

			if err := docker.UseRemoteContext(); err != nil {
				return err
			}

			log.Success("remote docker agent is ready at %s", ip)
			return nil
		},
	}
}

func bootstrap(cfg *config.Config, ip string) error {
	if err := ssh.EnsureBinary(); err != nil {
		return err
	}

	script := strings.Join(bootstrapSteps, " && ")
	argv, err := ssh.ConnectArgv(cfg.KeyPath, config.InstanceUsername, ip, script, "")
	if err != nil {
		return err
	}

	return process.Run(process.Kind("bootstrap"), argv)
}
