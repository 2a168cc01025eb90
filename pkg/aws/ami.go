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

package aws

import "fmt"

// Ubuntu 18.04 LTS (hvm:ebs-ssd) images, looked up via
// https://cloud-images.ubuntu.com/locator/ec2/
var regionToUbuntuAMI = map[string]string{
	"us-west-2":      "ami-053bc2e89490c5ab7",
	"us-west-1":      "ami-0d705db840ec5f0c5",
	"us-east-2":      "ami-0a63f96e85105c6d3",
	"us-east-1":      "ami-0ac80df6eff0e70b5",
	"sa-east-1":      "ami-0faf2c48fc9c8f966",
	"me-south-1":     "ami-0ca656ad4cf917e1f",
	"eu-west-3":      "ami-0e11cbb34015ff725",
	"eu-west-2":      "ami-00f6a0c18edb19300",
	"eu-west-1":      "ami-089cc16f7f08c4457",
	"eu-south-1":     "ami-08bb6fa4a2d8676d4",
	"eu-north-1":     "ami-0f920d75f0ce2c4bb",
	"eu-central-1":   "ami-0d359437d1756caa8",
	"ca-central-1":   "ami-065ba2b6b298ed80f",
	"ap-southeast-2": "ami-0bc49f9283d686bab",
	"ap-southeast-1": "ami-063e3af9d2cc7fe94",
	"ap-south-1":     "ami-02d55cb47e83a99a0",
	"ap-northeast-3": "ami-056ee91a6ed694f5d",
	"ap-northeast-2": "ami-0d777f54156eae7d9",
	"ap-northeast-1": "ami-0cfa3caed4b487e77",
	"ap-east-1":      "ami-c42464b5",
	"af-south-1":     "ami-079652134906bcbad",
}

func amiForRegion(region string) (string, error) {
	ami, ok := regionToUbuntuAMI[region]
	if !ok {
		return "", fmt.Errorf("no known Ubuntu AMI for region '%s'", region)
	}
	return ami, nil
}
