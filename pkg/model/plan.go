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
	"sort"
	"strconv"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/log"
)

// Plan turns the configured port-forward maps plus the command line extras
// into the ordered list of forwarding rules handed to the tunnel transport.
// Config-derived rules come first (label order, then external port order,
// for a deterministic argv), command line rules follow in input order.
//
// Duplicate external ports are passed through untouched: conflict handling
// is the transport's job, not ours.
func Plan(localMap, remoteMap config.PortMap, cliLocal, cliRemote []Forward) []Forward {
	rules := make([]Forward, 0, len(localMap)+len(remoteMap)+len(cliLocal)+len(cliRemote))

	rules = append(rules, fromPortMap(localMap, Local)...)
	rules = append(rules, fromPortMap(remoteMap, Remote)...)
	rules = append(rules, cliLocal...)
	rules = append(rules, cliRemote...)

	for _, r := range rules {
		log.Debugf("planned forward: %s", r)
	}

	return rules
}

func fromPortMap(m config.PortMap, direction Direction) []Forward {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rules := []Forward{}
	for _, label := range labels {
		ports := m[label]

		externals := make([]string, 0, len(ports))
		for external := range ports {
			externals = append(externals, external)
		}
		sort.Strings(externals)

		for _, external := range externals {
			ext, err := strconv.Atoi(external)
			if err != nil {
				log.Warningf("skipping forward '%s' of '%s': invalid external port", external, label)
				continue
			}
			internal, err := strconv.Atoi(ports[external])
			if err != nil {
				log.Warningf("skipping forward '%s' of '%s': invalid internal port '%s'", external, label, ports[external])
				continue
			}

			rules = append(rules, Forward{
				Label:     label,
				Direction: direction,
				External:  ext,
				Internal:  internal,
			})
		}
	}

	return rules
}
