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

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/process"
	"github.com/lime-green/remote-docker/pkg/ssh"
)

// CreateKeyPair returns the create-keypair command
func CreateKeyPair() *cobra.Command {
	return &cobra.Command{
		Use:   "create-keypair",
		Short: "Generate the ssh keypair for the agent and import it into EC2",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider, cfg, err := newProvider(ctx)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			if ssh.KeyExists(fs, cfg.KeyPath) {
				return errors.UserError{
					E:    fmt.Errorf("key '%s' already exists", cfg.KeyPath),
					Hint: "Remove it first, or point 'key_path' in your config at a different file",
				}
			}

			if err := ssh.GenerateKeys(fs, cfg.KeyPath); err != nil {
				return err
			}
			log.Information("generated %s", cfg.KeyPath)

			material, err := afero.ReadFile(fs, ssh.PublicKeyPath(cfg.KeyPath))
			if err != nil {
				return err
			}

			if err := provider.ImportPublicKey(ctx, material); err != nil {
				return err
			}

			// best effort, some environments don't run an ssh agent
			if err := process.Run(process.Kind("ssh-add"), []string{"ssh-add", cfg.KeyPath}); err != nil {
				log.Warningf("failed to add the key to the ssh agent: %s", err)
			}

			log.Success("keypair '%s' imported into EC2", cfg.KeyPairName())
			return nil
		},
	}
}
