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

	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/model"
	"github.com/lime-green/remote-docker/pkg/process"
	"github.com/lime-green/remote-docker/pkg/ssh"
)

type forwardFlags struct {
	local  []string
	remote []string
}

func (f *forwardFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.local, "local", "l", nil, "local port forward of the form '80:8080'")
	cmd.Flags().StringArrayVarP(&f.remote, "remote", "r", nil, "remote port forward of the form '8080:8080'")
}

// parse turns the raw flag values into forward rules, keeping the order
// they were given on the command line
func (f *forwardFlags) parse() ([]model.Forward, []model.Forward, error) {
	var local, remote []model.Forward
	for _, raw := range f.local {
		fwd, err := model.ParseForward(raw, model.Local)
		if err != nil {
			return nil, nil, err
		}
		local = append(local, fwd)
	}
	for _, raw := range f.remote {
		fwd, err := model.ParseForward(raw, model.Remote)
		if err != nil {
			return nil, nil, err
		}
		remote = append(remote, fwd)
	}
	return local, remote, nil
}

// buildTunnelArgv plans the forward rules and renders the tunnel invocation
func buildTunnelArgv(cfg *config.Config, ip string, flags *forwardFlags) ([]string, error) {
	if err := ssh.EnsureBinary(); err != nil {
		return nil, err
	}

	cliLocal, cliRemote, err := flags.parse()
	if err != nil {
		return nil, err
	}

	rules := model.Plan(cfg.LocalPortForwards, cfg.RemotePortForwards, cliLocal, cliRemote)
	for _, rule := range rules {
		log.Debugf("forwarding %s", rule)
	}

	return ssh.TunnelArgv(cfg.KeyPath, config.InstanceUsername, ip, rules)
}

// Tunnel returns the tunnel command
func Tunnel() *cobra.Command {
	flags := &forwardFlags{}

	cmd := &cobra.Command{
		Use:   "tunnel",
		Short: "Forward the remote docker socket and the configured ports",
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

			argv, err := buildTunnelArgv(cfg, ip, flags)
			if err != nil {
				return err
			}

			stop := notifyInterrupt()
			sup := process.NewSupervisor()
			child, err := sup.Start(process.Tunnel, argv)
			if err != nil {
				return err
			}

			log.Success("tunnel is up, docker socket and ports are forwarded")
			return supervise(stop, sup, child)
		},
	}

	flags.add(cmd)
	return cmd
}
