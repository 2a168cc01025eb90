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

package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the rd binary. Configuration failures and
// supervised process failures get distinct codes so callers can tell a bad
// config apart from a tunnel or sync process dying.
const (
	ExitCodeOK      = 0
	ExitCodeErr     = 1
	ExitCodeConfig  = 2
	ExitCodeProcess = 3
)

var (
	// ErrInstanceNotRunning is raised when an operation needs the agent but it is stopped
	ErrInstanceNotRunning = errors.New("instance is not running. Start it with 'rd start'")

	// ErrInstanceNotFound is raised when no agent instance exists for this service name
	ErrInstanceNotFound = errors.New("no instance found, did you run 'rd create'?")

	// ErrTerminationProtected is raised when deleting an instance that still has termination protection on
	ErrTerminationProtected = errors.New("termination protection is currently enabled. It first must be disabled to delete the instance")

	// ErrEmptyWatchedDirectories is raised when a sync is requested with nothing to sync
	ErrEmptyWatchedDirectories = errors.New("no directories to sync. Add 'watched_directories' to your config or pass them as arguments")
)

// UserError is meant for errors displayed to the user. It can include a message and a hint
type UserError struct {
	E    error
	Hint string
}

// Error returns the error message
func (u UserError) Error() string {
	return u.E.Error()
}

func (u UserError) Unwrap() error {
	return u.E
}

// ConfigNotFoundError is raised when an explicitly requested config file does not exist
type ConfigNotFoundError struct {
	Path string
}

func (e ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file '%s' not found", e.Path)
}

// ConfigParseError is raised when the config file exists but is not valid JSON
type ConfigParseError struct {
	Path string
	E    error
}

func (e ConfigParseError) Error() string {
	return fmt.Sprintf("failed to parse config file '%s': %s", e.Path, e.E)
}

func (e ConfigParseError) Unwrap() error {
	return e.E
}

// ProfileNotFoundError is raised when the requested profile is missing from the profiles map
type ProfileNotFoundError struct {
	Name string
}

func (e ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile '%s' not found in config", e.Name)
}

// MissingCredentialError is raised when a required AWS setting can't be resolved
// from the config or the environment
type MissingCredentialError struct {
	Credential string
}

func (e MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is not set. Add it to your config or set it in the environment", e.Credential)
}

// ProcessSpawnError is raised when an external binary can't be launched
type ProcessSpawnError struct {
	Binary string
	E      error
}

func (e ProcessSpawnError) Error() string {
	return fmt.Sprintf("failed to start '%s': %s", e.Binary, e.E)
}

func (e ProcessSpawnError) Unwrap() error {
	return e.E
}

// ProcessExitError is raised when a supervised process exits with a non-zero status
type ProcessExitError struct {
	Kind string
	Code int
}

func (e ProcessExitError) Error() string {
	return fmt.Sprintf("%s process exited with status %d", e.Kind, e.Code)
}

// IsConfigError returns true for errors of the configuration resolution taxonomy
func IsConfigError(err error) bool {
	var notFound ConfigNotFoundError
	var parse ConfigParseError
	var profile ProfileNotFoundError
	var credential MissingCredentialError
	return errors.As(err, &notFound) || errors.As(err, &parse) || errors.As(err, &profile) || errors.As(err, &credential)
}

// ExitCode maps an error to the exit code of the rd binary
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	if IsConfigError(err) {
		return ExitCodeConfig
	}

	var exit ProcessExitError
	if errors.As(err, &exit) {
		return ExitCodeProcess
	}

	return ExitCodeErr
}
