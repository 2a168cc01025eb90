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
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"

	"github.com/lime-green/remote-docker/pkg/log"
)

const keyBits = 4096

// KeyExists returns true if both halves of the keypair are present
func KeyExists(fs afero.Fs, keyPath string) bool {
	for _, p := range []string{keyPath, PublicKeyPath(keyPath)} {
		ok, err := afero.Exists(fs, p)
		if err != nil || !ok {
			log.Infof("%s doesn't exist", p)
			return false
		}
	}
	return true
}

// PublicKeyPath returns the path of the public half for a private key path
func PublicKeyPath(keyPath string) string {
	return keyPath + ".pub"
}

// GenerateKeys generates an RSA keypair at keyPath, PEM-encoded private key
// plus an authorized_keys format public key next to it
func GenerateKeys(fs afero.Fs, keyPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return fmt.Errorf("failed to generate private SSH key: %w", err)
	}

	publicKeyBytes, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to generate public SSH key: %w", err)
	}

	privateKeyBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	if err := afero.WriteFile(fs, keyPath, privateKeyBytes, 0600); err != nil {
		return fmt.Errorf("failed to write private SSH key: %w", err)
	}

	if err := afero.WriteFile(fs, PublicKeyPath(keyPath), publicKeyBytes, 0600); err != nil {
		return fmt.Errorf("failed to write public SSH key: %w", err)
	}

	log.Infof("created ssh keypair at %s and %s", keyPath, PublicKeyPath(keyPath))
	return nil
}

func encodePublicKey(publicKey *rsa.PublicKey) ([]byte, error) {
	sshPublicKey, err := ssh.NewPublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return ssh.MarshalAuthorizedKey(sshPublicKey), nil
}
