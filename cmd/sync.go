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

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/process"
	"github.com/lime-green/remote-docker/pkg/ssh"
	"github.com/lime-green/remote-docker/pkg/sync"
)

// syncDirectories merges the configured watched directories with extra
// command line arguments, expanding '~' in the latter
func syncDirectories(cfg *config.Config, args []string) ([]string, error) {
	dirs := append([]string{}, cfg.WatchedDirectories...)
	for _, arg := range args {
		expanded, err := homedir.Expand(arg)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, expanded)
	}

	if len(dirs) == 0 {
		return nil, errors.ErrEmptyWatchedDirectories
	}
	return dirs, nil
}

// prepareSync creates the directories on the agent and pushes the local
// contents over once. The local replica wins the initial sync.
func prepareSync(cfg *config.Config, ip string, dirs []string, replica *sync.Replica) error {
	if err := sync.EnsureBinary(); err != nil {
		return err
	}
	if err := ssh.EnsureBinary(); err != nil {
		return err
	}

	mkdirArgv, err := ssh.ConnectArgv(cfg.KeyPath, config.InstanceUsername, ip, sync.MkdirArgv(config.InstanceUsername, dirs), "")
	if err != nil {
		return err
	}
	if err := process.Run(process.Kind("mkdir"), mkdirArgv); err != nil {
		return err
	}

	log.Information("pushing local files to the agent")
	return process.Run(process.Sync, replica.Argv(sync.Options{
		KeyPath:        cfg.KeyPath,
		Username:       config.InstanceUsername,
		IP:             ip,
		IgnorePatterns: cfg.SyncIgnorePatterns,
		Force:          true,
	}))
}

// Sync returns the sync command
func Sync() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [DIR...]",
		Short: "Continuously sync the watched directories to the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, cfg, err := newProvider(ctx)
			if err != nil {
				return err
			}

			dirs, err := syncDirectories(cfg, args)
			if err != nil {
				return err
			}

			replica, err := sync.NewReplica(dirs)
			if err != nil {
				return err
			}

			ip, err := provider.GetIP(ctx)
			if err != nil {
				return err
			}

			if err := prepareSync(cfg, ip, dirs, replica); err != nil {
				return err
			}

			stop := notifyInterrupt()
			sup := process.NewSupervisor()
			child, err := sup.Start(process.Sync, replica.Argv(sync.Options{
				KeyPath:        cfg.KeyPath,
				Username:       config.InstanceUsername,
				IP:             ip,
				IgnorePatterns: cfg.SyncIgnorePatterns,
				RepeatWatch:    true,
			}))
			if err != nil {
				return err
			}

			log.Success("file sync is running")
			return supervise(stop, sup, child)
		},
	}
}
