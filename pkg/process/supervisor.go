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

// Package process supervises the external tunnel and sync binaries. It
// launches them, tracks a one-directional state machine per child and
// terminates them with a bounded grace period on shutdown.
package process

import (
	"os"
	osexec "os/exec"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
)

// Kind tells which external transport a child implements
type Kind string

const (
	// Tunnel is the ssh port-forwarding process
	Tunnel Kind = "tunnel"
	// Sync is the unison file synchronization process
	Sync Kind = "sync"
)

// State of a supervised child. Transitions are one-directional:
// Starting -> Running -> Exited | Killed. There is no restart-in-place; a
// new Start call creates a new Child.
type State int

const (
	// Starting means the child is being launched
	Starting State = iota
	// Running means the launch was confirmed
	Running
	// Exited means the child terminated on its own
	Exited
	// Killed means the child was terminated on request
	Killed
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	default:
		return "unknown"
	}
}

// Child is a supervised external process. It is owned exclusively by the
// Supervisor that created it.
type Child struct {
	Kind Kind

	cmd           *osexec.Cmd
	mu            sync.Mutex
	state         State
	exitCode      int
	killRequested bool
	done          chan struct{}
}

// State returns the current state of the child
func (c *Child) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ExitCode returns the exit status of the child. Only meaningful once the
// child has left the Running state.
func (c *Child) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// Pid returns the OS process ID of the child
func (c *Child) Pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Done is closed when the child leaves the Running state
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// ExitErr returns the error to surface for a child that exited on its own,
// or nil for a clean or requested termination
func (c *Child) ExitErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Exited && c.exitCode != 0 {
		return errors.ProcessExitError{Kind: string(c.Kind), Code: c.exitCode}
	}
	return nil
}

// Supervisor launches and tracks external processes. The child table is
// mutated by the single control goroutine running the command; the watch
// goroutines only flip per-child state.
type Supervisor struct {
	mu          sync.Mutex
	children    []*Child
	gracePeriod time.Duration
}

// NewSupervisor returns a supervisor with the default 3s termination grace period
func NewSupervisor() *Supervisor {
	return &Supervisor{
		gracePeriod: 3 * time.Second,
	}
}

// Start spawns argv and begins supervising it. Stdout and stderr are
// inherited so the transport's own output reaches the user.
func (s *Supervisor) Start(kind Kind, argv []string) (*Child, error) {
	if len(argv) == 0 {
		return nil, errors.ProcessSpawnError{Binary: string(kind), E: os.ErrInvalid}
	}

	cmd := osexec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	c := &Child{
		Kind:  kind,
		cmd:   cmd,
		state: Starting,
		done:  make(chan struct{}),
	}

	log.Debugf("starting %s process: %v", kind, argv)
	if err := cmd.Start(); err != nil {
		return nil, errors.ProcessSpawnError{Binary: argv[0], E: err}
	}

	c.mu.Lock()
	c.state = Running
	c.mu.Unlock()
	log.Infof("%s process running with pid %d", kind, c.Pid())

	s.mu.Lock()
	s.children = append(s.children, c)
	s.mu.Unlock()

	go c.watch()
	return c, nil
}

// watch waits for the process to exit and records the terminal state
func (c *Child) watch() {
	err := c.cmd.Wait()

	c.mu.Lock()
	if c.killRequested {
		c.state = Killed
	} else {
		c.state = Exited
		if exitErr, ok := err.(*osexec.ExitError); ok {
			c.exitCode = exitErr.ExitCode()
		} else if err != nil {
			c.exitCode = -1
		}
	}
	state, code := c.state, c.exitCode
	c.mu.Unlock()

	log.Debugf("%s process %d reached state %s (exit code %d)", c.Kind, c.Pid(), state, code)
	close(c.done)
}

// Wait blocks until the child leaves the Running state. It returns a
// ProcessExitError when the child exited on its own with a non-zero status;
// a clean exit or a requested termination returns nil.
func (s *Supervisor) Wait(c *Child) error {
	<-c.done
	return c.ExitErr()
}

// TerminateAll issues termination to every tracked child and waits for each
// to leave the Running state before returning. Failures to terminate one
// child don't stop the others from being signalled.
func (s *Supervisor) TerminateAll() error {
	s.mu.Lock()
	children := make([]*Child, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	var result error
	for _, c := range children {
		if err := s.Terminate(c); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Run spawns argv in the foreground with full stdio attached and waits for
// it, surfacing a non-zero exit as a ProcessExitError
func Run(kind Kind, argv []string) error {
	if len(argv) == 0 {
		return errors.ProcessSpawnError{Binary: string(kind), E: os.ErrInvalid}
	}

	cmd := osexec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Debugf("running %s: %v", kind, argv)
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*osexec.ExitError); ok {
			return errors.ProcessExitError{Kind: string(kind), Code: exitErr.ExitCode()}
		}
		return errors.ProcessSpawnError{Binary: argv[0], E: err}
	}
	return nil
}
