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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/model"
)

func TestForwardFlagsParse(t *testing.T) {
	flags := &forwardFlags{
		local:  []string{"80:8080", "443:8443"},
		remote: []string{"9000:9000"},
	}

	local, remote, err := flags.parse()
	require.NoError(t, err)

	assert.Equal(t, []model.Forward{
		{Label: "cli", Direction: model.Local, External: 80, Internal: 8080},
		{Label: "cli", Direction: model.Local, External: 443, Internal: 8443},
	}, local)
	assert.Equal(t, []model.Forward{
		{Label: "cli", Direction: model.Remote, External: 9000, Internal: 9000},
	}, remote)
}

func TestForwardFlagsParseMalformed(t *testing.T) {
	flags := &forwardFlags{local: []string{"80"}}
	_, _, err := flags.parse()
	assert.Error(t, err)

	flags = &forwardFlags{remote: []string{"a:b"}}
	_, _, err = flags.parse()
	assert.Error(t, err)
}

func TestSyncDirectories(t *testing.T) {
	cfg := &config.Config{WatchedDirectories: []string{"/projects/app"}}

	dirs, err := syncDirectories(cfg, []string{"/projects/lib"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/projects/app", "/projects/lib"}, dirs)

	// the config's own list is not mutated by the extra arguments
	assert.Equal(t, []string{"/projects/app"}, cfg.WatchedDirectories)
}

func TestSyncDirectoriesEmpty(t *testing.T) {
	cfg := &config.Config{}

	_, err := syncDirectories(cfg, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyWatchedDirectories)
}
