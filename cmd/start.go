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

	"github.com/lime-green/remote-docker/pkg/docker"
	"github.com/lime-green/remote-docker/pkg/log"
)

// Start returns the start command
func Start() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the agent instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, _, err := newProvider(ctx)
			if err != nil {
				return err
			}

			spin := newSpinner("Starting the agent instance...")
			spin.Start()
			err = provider.StartInstance(ctx)
			spin.Stop()
			if err != nil {
				return err
			}

			if err := docker.UseRemoteContext(); err != nil {
				return err
			}

			log.Success("agent instance is running")
			return nil
		},
	}
}
