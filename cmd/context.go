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
	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/docker"
	"github.com/lime-green/remote-docker/pkg/log"
)

// Context returns the context command
func Context() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Point the local docker CLI at the remote engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := docker.UseRemoteContext(); err != nil {
				return err
			}

			log.Success("docker context is now '%s'", docker.ContextName)
			return nil
		},
	}
}
