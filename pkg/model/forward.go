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

package model

import (
	"fmt"
	"strconv"
	"strings"
)

const malformedPortForward = "Wrong port-forward syntax '%s', must be of the form 'externalPort:internalPort'"

// Direction tells which side of the tunnel opens the listening port
type Direction string

const (
	// Local forwards a local port to the remote side (ssh -L)
	Local Direction = "local"
	// Remote forwards a remote port back to the local side (ssh -R)
	Remote Direction = "remote"
)

// Forward represents a port forwarding rule requested of the tunnel
// transport. External is the listening side, Internal the destination.
// The label is cosmetic and only used for logging.
type Forward struct {
	Label     string
	Direction Direction
	External  int
	Internal  int
}

// ParseForward parses a command line port-forward of the form
// 'externalPort:internalPort'
func ParseForward(raw string, direction Direction) (Forward, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return Forward{}, fmt.Errorf(malformedPortForward, raw)
	}

	external, err := parsePort(parts[0])
	if err != nil {
		return Forward{}, fmt.Errorf("cannot convert external port '%s' in port-forward '%s'", parts[0], raw)
	}

	internal, err := parsePort(parts[1])
	if err != nil {
		return Forward{}, fmt.Errorf("cannot convert internal port '%s' in port-forward '%s'", parts[1], raw)
	}

	return Forward{
		Label:     "cli",
		Direction: direction,
		External:  external,
		Internal:  internal,
	}, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}

func (f Forward) String() string {
	return fmt.Sprintf("%s %d->%d (%s)", f.Direction, f.External, f.Internal, f.Label)
}
