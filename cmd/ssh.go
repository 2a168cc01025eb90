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
	"strings"

	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/process"
	"github.com/lime-green/remote-docker/pkg/ssh"
)

// SSH returns the ssh command
func SSH() *cobra.Command {
	var sshOptions string

	cmd := &cobra.Command{
		Use:   "ssh [COMMAND...]",
		Short: "Open a shell on the agent instance, or run a command on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, cfg, err := newProvider(ctx)
			if err != nil {
				return err
			}

			ip, err := provider.GetIP(ctx)
			if err != nil {
				return err
			}

			if err := ssh.EnsureBinary(); err != nil {
				return err
			}

			argv, err := ssh.ConnectArgv(cfg.KeyPath, config.InstanceUsername, ip, strings.Join(args, " "), sshOptions)
			if err != nil {
				return err
			}

			return process.Run(process.Kind("ssh"), argv)
		},
	}

	cmd.Flags().StringVar(&sshOptions, "ssh-options", "", "extra options passed through to ssh")
	return cmd
}
