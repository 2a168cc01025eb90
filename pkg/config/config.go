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

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
)

const (
	// DefaultConfigFile is the config file looked up in the user's home directory
	DefaultConfigFile = ".remote-docker.config.json"

	// DefaultInstanceType is a sensible middle ground between cost and build speed
	DefaultInstanceType = "t3.medium"

	// DefaultVolumeSize fits in the AWS free tier
	DefaultVolumeSize = 30

	// DefaultKeyPath is where create-keypair writes the private key
	DefaultKeyPath = "~/.ssh/id_rsa_remote_docker"

	// InstanceUsername is the login user of the Ubuntu AMIs the agent runs on
	InstanceUsername = "ubuntu"

	keyPairName         = "remote-docker-keypair"
	instanceServiceName = "remote-docker-ec2-agent"
	projectCode         = "remote-docker"
)

// VersionString is the version of the cli, set at build time
var VersionString string

// PortMap maps a cosmetic label to a set of external->internal port pairs
type PortMap map[string]map[string]string

// Config is a fully resolved configuration: the base document with the
// active profile already flattened onto it and defaults applied. It carries
// no profile data of its own.
type Config struct {
	AWSProfile         string
	AWSRegion          string
	InstanceType       string
	KeyPath            string
	VolumeSize         int
	UserID             string
	SyncIgnorePatterns []string
	WatchedDirectories []string
	LocalPortForwards  PortMap
	RemotePortForwards PortMap
}

// document is the raw JSON schema of the config file. Scalar fields are
// pointers so a profile can tell "unset" apart from the zero value.
type document struct {
	AWSProfile         *string              `json:"aws_profile,omitempty"`
	AWSRegion          *string              `json:"aws_region,omitempty"`
	InstanceType       *string              `json:"instance_type,omitempty"`
	KeyPath            *string              `json:"key_path,omitempty"`
	VolumeSize         *int                 `json:"volume_size,omitempty"`
	UserID             *string              `json:"user_id,omitempty"`
	SyncIgnorePatterns []string             `json:"sync_ignore_patterns,omitempty"`
	WatchedDirectories []string             `json:"watched_directories,omitempty"`
	LocalPortForwards  PortMap              `json:"local_port_forwards,omitempty"`
	RemotePortForwards PortMap              `json:"remote_port_forwards,omitempty"`
	Profiles           map[string]*document `json:"profiles,omitempty"`
	DefaultProfile     *string              `json:"default_profile,omitempty"`
}

// Options controls where the config is loaded from and which profile is applied
type Options struct {
	// Path of the config file. Empty means DefaultPath().
	Path string

	// PathExplicit marks Path as user-supplied: a missing file is then an
	// error instead of an empty config.
	PathExplicit bool

	// Profile requested on the command line. Empty falls back to the
	// config's default_profile.
	Profile string
}

// DefaultPath returns the default location of the config file
func DefaultPath() string {
	home, err := homedir.Dir()
	if err != nil {
		log.Fatalf("failed to get the user's home directory: %s", err)
	}
	return filepath.Join(home, DefaultConfigFile)
}

// Load reads the config file, applies the resolved profile and fills in
// defaults. A missing file is valid and yields the default configuration,
// unless the path was explicitly requested.
func Load(fs afero.Fs, opts Options) (*Config, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path '%s': %w", opts.Path, err)
	}

	doc := &document{}
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}

	if exists {
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, doc); err != nil {
			return nil, errors.ConfigParseError{Path: path, E: err}
		}
	} else if opts.PathExplicit {
		return nil, errors.ConfigNotFoundError{Path: path}
	} else {
		log.Debugf("no config file at %s, using defaults", path)
	}

	profileName := ResolveProfile(opts.Profile, doc.defaultProfile())
	if profileName != "" {
		overlay, ok := doc.Profiles[profileName]
		if !ok {
			return nil, errors.ProfileNotFoundError{Name: profileName}
		}
		log.Debugf("applying profile '%s'", profileName)
		doc = merge(doc, overlay)
	}

	return doc.resolve()
}

func (d *document) defaultProfile() string {
	if d.DefaultProfile == nil {
		return ""
	}
	return *d.DefaultProfile
}

// resolve flattens the document into a Config, applying defaults and
// expanding user paths
func (d *document) resolve() (*Config, error) {
	c := &Config{
		InstanceType:       DefaultInstanceType,
		VolumeSize:         DefaultVolumeSize,
		KeyPath:            DefaultKeyPath,
		SyncIgnorePatterns: []string{},
		WatchedDirectories: []string{},
		LocalPortForwards:  PortMap{},
		RemotePortForwards: PortMap{},
	}

	if d.AWSProfile != nil {
		c.AWSProfile = *d.AWSProfile
	}
	if d.AWSRegion != nil {
		c.AWSRegion = *d.AWSRegion
	}
	if d.InstanceType != nil {
		c.InstanceType = *d.InstanceType
	}
	if d.KeyPath != nil {
		c.KeyPath = *d.KeyPath
	}
	if d.VolumeSize != nil {
		c.VolumeSize = *d.VolumeSize
	}
	if d.UserID != nil {
		c.UserID = *d.UserID
	}

	keyPath, err := homedir.Expand(c.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand key path '%s': %w", c.KeyPath, err)
	}
	c.KeyPath = keyPath

	c.SyncIgnorePatterns = append(c.SyncIgnorePatterns, d.SyncIgnorePatterns...)
	for _, dir := range d.WatchedDirectories {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to expand watched directory '%s': %w", dir, err)
		}
		c.WatchedDirectories = append(c.WatchedDirectories, expanded)
	}

	for label, ports := range d.LocalPortForwards {
		c.LocalPortForwards[label] = ports
	}
	for label, ports := range d.RemotePortForwards {
		c.RemotePortForwards[label] = ports
	}

	return c, nil
}

// KeyPairName is the name of the EC2 keypair, suffixed per user when
// several developers share an account
func (c *Config) KeyPairName() string {
	if c.UserID == "" {
		return keyPairName
	}
	return fmt.Sprintf("%s-%s", keyPairName, c.UserID)
}

// InstanceServiceName is the value of the 'service' tag identifying the agent instance
func (c *Config) InstanceServiceName() string {
	if c.UserID == "" {
		return instanceServiceName
	}
	return fmt.Sprintf("%s-%s", instanceServiceName, c.UserID)
}

// ProjectCode prefixes the CloudFormation stack of the agent
func (c *Config) ProjectCode() string {
	if c.UserID == "" {
		return projectCode
	}
	return fmt.Sprintf("%s-%s", projectCode, c.UserID)
}
