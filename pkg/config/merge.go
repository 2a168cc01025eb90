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

// merge flattens a profile overlay onto the base document. The policy is
// deliberately asymmetric and field-by-field, not a generic deep merge:
//   - list fields concatenate, base first, no de-duplication
//   - map fields shallow-merge, profile entries replace base entries of the
//     same label whole (the inner port maps are not recursed into)
//   - scalar fields take the profile value when set
//
// The result carries no profile data: applying a profile is a one-shot
// flattening.
func merge(base, overlay *document) *document {
	merged := &document{
		AWSProfile:         base.AWSProfile,
		AWSRegion:          base.AWSRegion,
		InstanceType:       base.InstanceType,
		KeyPath:            base.KeyPath,
		VolumeSize:         base.VolumeSize,
		UserID:             base.UserID,
		SyncIgnorePatterns: base.SyncIgnorePatterns,
		WatchedDirectories: base.WatchedDirectories,
		LocalPortForwards:  PortMap{},
		RemotePortForwards: PortMap{},
	}

	if overlay.AWSProfile != nil {
		merged.AWSProfile = overlay.AWSProfile
	}
	if overlay.AWSRegion != nil {
		merged.AWSRegion = overlay.AWSRegion
	}
	if overlay.InstanceType != nil {
		merged.InstanceType = overlay.InstanceType
	}
	if overlay.KeyPath != nil {
		merged.KeyPath = overlay.KeyPath
	}
	if overlay.VolumeSize != nil {
		merged.VolumeSize = overlay.VolumeSize
	}
	if overlay.UserID != nil {
		merged.UserID = overlay.UserID
	}

	merged.SyncIgnorePatterns = concat(base.SyncIgnorePatterns, overlay.SyncIgnorePatterns)
	merged.WatchedDirectories = concat(base.WatchedDirectories, overlay.WatchedDirectories)

	for label, ports := range base.LocalPortForwards {
		merged.LocalPortForwards[label] = ports
	}
	for label, ports := range overlay.LocalPortForwards {
		merged.LocalPortForwards[label] = ports
	}

	for label, ports := range base.RemotePortForwards {
		merged.RemotePortForwards[label] = ports
	}
	for label, ports := range overlay.RemotePortForwards {
		merged.RemotePortForwards[label] = ports
	}

	return merged
}

func concat(base, overlay []string) []string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make([]string, 0, len(base)+len(overlay))
	out = append(out, base...)
	out = append(out, overlay...)
	return out
}
