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
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/process"
	"github.com/lime-green/remote-docker/pkg/sync"
)

// Up returns the up command
func Up() *cobra.Command {
	flags := &forwardFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start the tunnel and the file sync together",
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

			tunnelArgv, err := buildTunnelArgv(cfg, ip, flags)
			if err != nil {
				return err
			}

			dirs, err := syncDirectories(cfg, nil)
			if err != nil && !stderrors.Is(err, errors.ErrEmptyWatchedDirectories) {
				return err
			}

			var replica *sync.Replica
			if len(dirs) > 0 {
				replica, err = sync.NewReplica(dirs)
				if err != nil {
					return err
				}
				if err := prepareSync(cfg, ip, dirs, replica); err != nil {
					return err
				}
			}

			stop := notifyInterrupt()
			sup := process.NewSupervisor()
			children := make([]*process.Child, 0, 2)

			tunnel, err := sup.Start(process.Tunnel, tunnelArgv)
			if err != nil {
				return err
			}
			children = append(children, tunnel)

			if replica != nil {
				watcher, err := sup.Start(process.Sync, replica.Argv(sync.Options{
					KeyPath:        cfg.KeyPath,
					Username:       config.InstanceUsername,
					IP:             ip,
					IgnorePatterns: cfg.SyncIgnorePatterns,
					RepeatWatch:    true,
				}))
				if err != nil {
					if terminateErr := sup.TerminateAll(); terminateErr != nil {
						log.Debugf("failed to terminate the tunnel: %s", terminateErr)
					}
					return err
				}
				children = append(children, watcher)
			} else {
				log.Information("no watched directories configured, running the tunnel only")
			}

			log.Success("remote docker environment is up")
			return supervise(stop, sup, children...)
		},
	}

	flags.add(cmd)
	return cmd
}
