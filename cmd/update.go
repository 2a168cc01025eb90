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

	"github.com/lime-green/remote-docker/pkg/log"
)

// Update returns the update command
func Update() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Apply config changes (instance type, volume size) to the agent instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, _, err := newProvider(ctx)
			if err != nil {
				return err
			}

			spin := newSpinner("Updating the agent instance...")
			spin.Start()
			err = provider.UpdateStack(ctx)
			spin.Stop()
			if err != nil {
				return err
			}

			log.Success("agent instance updated")
			return nil
		},
	}
}
