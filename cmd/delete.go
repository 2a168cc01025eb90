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

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/docker"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
)

// Delete returns the delete command
func Delete() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the agent instance and everything on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, _, err := newProvider(ctx)
			if err != nil {
				return err
			}

			protected, err := provider.TerminationProtectionEnabled(ctx)
			if err != nil {
				return err
			}
			if protected {
				return errors.UserError{
					E:    errors.ErrTerminationProtected,
					Hint: fmt.Sprintf("Run '%s disable-termination-protection' first", config.GetBinaryName()),
				}
			}

			if !force {
				prompt := promptui.Prompt{
					Label:     "Delete the agent instance and all data on it",
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					log.Println("Cancelled")
					return nil
				}
			}

			spin := newSpinner("Deleting the agent instance...")
			spin.Start()
			err = provider.DeleteStack(ctx)
			spin.Stop()
			if err != nil {
				return err
			}

			if err := docker.UseDefaultContext(); err != nil {
				return err
			}

			log.Success("agent instance deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without asking for confirmation")
	return cmd
}
