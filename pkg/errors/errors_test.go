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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: ExitCodeOK},
		{name: "generic", err: errors.New("boom"), expected: ExitCodeErr},
		{name: "sentinel", err: ErrInstanceNotRunning, expected: ExitCodeErr},
		{name: "config not found", err: ConfigNotFoundError{Path: "/x"}, expected: ExitCodeConfig},
		{name: "config parse", err: ConfigParseError{Path: "/x", E: errors.New("bad json")}, expected: ExitCodeConfig},
		{name: "profile not found", err: ProfileNotFoundError{Name: "work"}, expected: ExitCodeConfig},
		{name: "missing credential", err: MissingCredentialError{Credential: "aws_region"}, expected: ExitCodeConfig},
		{name: "process exit", err: ProcessExitError{Kind: "tunnel", Code: 255}, expected: ExitCodeProcess},
		{name: "spawn failure", err: ProcessSpawnError{Binary: "ssh", E: errors.New("not found")}, expected: ExitCodeErr},
		{
			name:     "wrapped config error",
			err:      fmt.Errorf("loading: %w", ProfileNotFoundError{Name: "work"}),
			expected: ExitCodeConfig,
		},
		{
			name:     "user error wrapping a process exit",
			err:      UserError{E: ProcessExitError{Kind: "sync", Code: 1}},
			expected: ExitCodeProcess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestUserErrorUnwraps(t *testing.T) {
	err := UserError{E: ErrTerminationProtected, Hint: "disable it first"}
	assert.True(t, errors.Is(err, ErrTerminationProtected))
	assert.Equal(t, ErrTerminationProtected.Error(), err.Error())
}
