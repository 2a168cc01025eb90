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

package sync

import (
	"reflect"
	"testing"
)

func TestNewReplica(t *testing.T) {
	tests := []struct {
		name     string
		dirs     []string
		expected *Replica
		wantErr  bool
	}{
		{
			name: "single directory",
			dirs: []string{"/projects/app"},
			expected: &Replica{
				Root:  "/projects",
				Paths: []string{"app"},
			},
		},
		{
			name: "shared first component",
			dirs: []string{"/projects/app", "/projects/lib/utils"},
			expected: &Replica{
				Root:  "/projects",
				Paths: []string{"app", "lib/utils"},
			},
		},
		{
			name: "first component itself",
			dirs: []string{"/projects"},
			expected: &Replica{
				Root:  "/projects",
				Paths: []string{""},
			},
		},
		{
			name:    "empty",
			dirs:    nil,
			wantErr: true,
		},
		{
			name:    "relative path",
			dirs:    []string{"projects/app"},
			wantErr: true,
		},
		{
			name:    "root directory",
			dirs:    []string{"/"},
			wantErr: true,
		},
		{
			name:    "mismatched first components",
			dirs:    []string{"/projects/app", "/home/dev/app"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReplica(tt.dirs)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error for %v", tt.dirs)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if !reflect.DeepEqual(r, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, r)
			}
		})
	}
}

func TestReplicaArgv(t *testing.T) {
	r := &Replica{Root: "/projects", Paths: []string{"app", "lib/utils"}}

	argv := r.Argv(Options{
		KeyPath:        "/home/dev/.ssh/key",
		Username:       "ubuntu",
		IP:             "1.2.3.4",
		IgnorePatterns: []string{".git"},
		RepeatWatch:    true,
	})

	expected := []string{
		"unison",
		"/projects",
		"ssh://ubuntu@1.2.3.4//projects",
		"-prefer", "/projects",
		"-batch",
		"-sshargs", "-i /home/dev/.ssh/key",
		"-ignore", "Name .git",
		"-path", "app",
		"-path", "lib/utils",
		"-repeat", "watch",
	}
	if !reflect.DeepEqual(argv, expected) {
		t.Errorf("expected %v, got %v", expected, argv)
	}
}

func TestReplicaArgvForce(t *testing.T) {
	r := &Replica{Root: "/projects", Paths: []string{""}}

	argv := r.Argv(Options{
		KeyPath:  "/home/dev/.ssh/key",
		Username: "ubuntu",
		IP:       "1.2.3.4",
		Force:    true,
	})

	expected := []string{
		"unison",
		"/projects",
		"ssh://ubuntu@1.2.3.4//projects",
		"-prefer", "/projects",
		"-batch",
		"-sshargs", "-i /home/dev/.ssh/key",
		"-path", ".",
		"-force", "/projects",
	}
	if !reflect.DeepEqual(argv, expected) {
		t.Errorf("expected %v, got %v", expected, argv)
	}
}

func TestMkdirArgv(t *testing.T) {
	cmd := MkdirArgv("ubuntu", []string{"/projects/app", "/projects/lib"})

	expected := "sudo install -d -o ubuntu -g ubuntu -p /projects/app -p /projects/lib"
	if cmd != expected {
		t.Errorf("expected %q, got %q", expected, cmd)
	}
}
