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

//go:build !windows
// +build !windows

package cmd

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/process"
)

func TestSuperviseStopTerminatesChildren(t *testing.T) {
	sup := process.NewSupervisor()

	c1, err := sup.Start(process.Tunnel, []string{"sleep", "30"})
	require.NoError(t, err)
	c2, err := sup.Start(process.Sync, []string{"sleep", "30"})
	require.NoError(t, err)

	// an interrupt buffered before supervise runs must still shut the
	// children down: the handler is installed before the first Start
	stop := make(chan os.Signal, 1)
	stop <- os.Interrupt

	require.NoError(t, supervise(stop, sup, c1, c2))
	assert.Equal(t, process.Killed, c1.State())
	assert.Equal(t, process.Killed, c2.State())
}

func TestSuperviseSurfacesChildFailure(t *testing.T) {
	sup := process.NewSupervisor()

	c, err := sup.Start(process.Sync, []string{"sh", "-c", "exit 2"})
	require.NoError(t, err)

	stop := make(chan os.Signal, 1)
	err = supervise(stop, sup, c)
	require.Error(t, err)

	exitErr, ok := err.(errors.ProcessExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestSuperviseFailureDoesNotCascade(t *testing.T) {
	sup := process.NewSupervisor()

	sleeper, err := sup.Start(process.Tunnel, []string{"sleep", "30"})
	require.NoError(t, err)
	failing, err := sup.Start(process.Sync, []string{"sh", "-c", "exit 2"})
	require.NoError(t, err)

	stop := make(chan os.Signal, 1)
	var siblingState process.State
	go func() {
		<-failing.Done()
		time.Sleep(200 * time.Millisecond)
		siblingState = sleeper.State()
		stop <- os.Interrupt
	}()

	err = supervise(stop, sup, sleeper, failing)
	require.Error(t, err)
	assert.IsType(t, errors.ProcessExitError{}, err)

	// the sibling kept running after the failure; only the interrupt
	// took it down
	assert.Equal(t, process.Running, siblingState)
	assert.Equal(t, process.Killed, sleeper.State())
}
