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

// EnableTerminationProtection returns the enable-termination-protection command
func EnableTerminationProtection() *cobra.Command {
	return &cobra.Command{
		Use:   "enable-termination-protection",
		Short: "Protect the agent instance against accidental termination",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, _, err := newProvider(ctx)
			if err != nil {
				return err
			}

			if err := provider.SetTerminationProtection(ctx, true); err != nil {
				return err
			}

			log.Success("termination protection is enabled")
			return nil
		},
	}
}

// DisableTerminationProtection returns the disable-termination-protection command
func DisableTerminationProtection() *cobra.Command {
	return &cobra.Command{
		Use:   "disable-termination-protection",
		Short: "Allow the agent instance to be terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, _, err := newProvider(ctx)
			if err != nil {
				return err
			}

			if err := provider.SetTerminationProtection(ctx, false); err != nil {
				return err
			}

			log.Success("termination protection is disabled")
			return nil
		},
	}
}
