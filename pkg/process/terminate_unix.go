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

package process

import (
	"fmt"
	"syscall"
	"time"

	gopsutil "github.com/shirou/gopsutil/process"

	"github.com/lime-green/remote-docker/pkg/log"
)

// Terminate attempts to gracefully shut down the child, waits up to the
// grace period for it to exit, and escalates to SIGKILL if it doesn't. It
// returns once the child has left the Running state.
func (s *Supervisor) Terminate(c *Child) error {
	select {
	case <-c.done:
		return nil
	default:
	}

	c.mu.Lock()
	c.killRequested = true
	c.mu.Unlock()

	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if !isAlive(c.Pid()) {
			<-c.done
			return nil
		}
		return fmt.Errorf("failed to terminate %s process %d: %w", c.Kind, c.Pid(), err)
	}

	timer := time.NewTimer(s.gracePeriod)
	defer timer.Stop()

	select {
	case <-c.done:
		log.Debugf("%s process %d terminated gracefully", c.Kind, c.Pid())
		return nil
	case <-timer.C:
	}

	log.Debugf("graceful termination of %s process %d timed out, killing it", c.Kind, c.Pid())
	if err := c.cmd.Process.Signal(syscall.SIGKILL); err != nil && isAlive(c.Pid()) {
		return fmt.Errorf("failed to kill %s process %d: %w", c.Kind, c.Pid(), err)
	}

	<-c.done
	return nil
}

func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := gopsutil.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	if err != nil {
		return false
	}
	return running
}
