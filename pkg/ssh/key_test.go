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

package ssh

import (
	"encoding/pem"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cryptossh "golang.org/x/crypto/ssh"
)

func TestGenerateKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	keyPath := "/home/dev/.ssh/id_rsa_remote_docker"

	assert.False(t, KeyExists(fs, keyPath))
	require.NoError(t, GenerateKeys(fs, keyPath))
	assert.True(t, KeyExists(fs, keyPath))

	private, err := afero.ReadFile(fs, keyPath)
	require.NoError(t, err)
	block, _ := pem.Decode(private)
	require.NotNil(t, block)
	assert.Equal(t, "RSA PRIVATE KEY", block.Type)

	public, err := afero.ReadFile(fs, PublicKeyPath(keyPath))
	require.NoError(t, err)
	parsed, _, _, _, err := cryptossh.ParseAuthorizedKey(public)
	require.NoError(t, err)
	assert.Equal(t, "ssh-rsa", parsed.Type())
}

func TestKeyExistsNeedsBothHalves(t *testing.T) {
	fs := afero.NewMemMapFs()
	keyPath := "/home/dev/.ssh/key"

	require.NoError(t, afero.WriteFile(fs, keyPath, []byte("private"), 0600))
	assert.False(t, KeyExists(fs, keyPath))

	require.NoError(t, afero.WriteFile(fs, PublicKeyPath(keyPath), []byte("public"), 0600))
	assert.True(t, KeyExists(fs, keyPath))
}
