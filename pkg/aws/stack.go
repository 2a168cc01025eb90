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

import (
	"context"
	"fmt"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/lime-green/remote-docker/pkg/log"
)

const (
	stackWaitTimeout = 10 * time.Minute
	stackWaitStep    = 10 * time.Second
)

// CreateStack provisions the agent's CloudFormation stack and waits for it
// to complete, then waits for the instance to come up
func (p *Provider) CreateStack(ctx context.Context) error {
	ami, err := amiForRegion(p.region)
	if err != nil {
		return err
	}

	log.Infof("creating stack '%s' in %s", p.stackName, p.region)
	_, err = p.cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:    awssdk.String(p.stackName),
		TemplateBody: awssdk.String(stackTemplate),
		Parameters:   p.stackParameters(ami),
	})
	if err != nil {
		return fmt.Errorf("failed to create stack '%s': %w", p.stackName, err)
	}

	if err := p.waitForStackStatus(ctx, cfntypes.StackStatusCreateComplete); err != nil {
		return err
	}
	log.Println("Stack created")

	return p.waitForInstanceState(ctx, "running")
}

// UpdateStack applies the current configuration (instance type, volume
// size) to the agent's stack and waits for the update to complete
func (p *Provider) UpdateStack(ctx context.Context) error {
	ami, err := amiForRegion(p.region)
	if err != nil {
		return err
	}

	log.Infof("updating stack '%s' in %s", p.stackName, p.region)
	_, err = p.cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    awssdk.String(p.stackName),
		TemplateBody: awssdk.String(stackTemplate),
		Parameters:   p.stackParameters(ami),
	})
	if err != nil {
		return fmt.Errorf("failed to update stack '%s': %w", p.stackName, err)
	}

	if err := p.waitForStackStatus(ctx, cfntypes.StackStatusUpdateComplete); err != nil {
		return err
	}
	log.Println("Stack updated")

	return p.waitForInstanceState(ctx, "running")
}

func (p *Provider) stackParameters(ami string) []cfntypes.Parameter {
	return []cfntypes.Parameter{
		{ParameterKey: awssdk.String("KeyPairName"), ParameterValue: awssdk.String(p.keyPairName)},
		{ParameterKey: awssdk.String("ImageId"), ParameterValue: awssdk.String(ami)},
		{ParameterKey: awssdk.String("InstanceType"), ParameterValue: awssdk.String(p.instanceType)},
		{ParameterKey: awssdk.String("ServiceName"), ParameterValue: awssdk.String(p.serviceName)},
		{ParameterKey: awssdk.String("VolumeSize"), ParameterValue: awssdk.String(strconv.Itoa(p.volumeSize))},
	}
}

// DeleteStack tears down the agent's CloudFormation stack and waits for
// the deletion to complete
func (p *Provider) DeleteStack(ctx context.Context) error {
	log.Infof("deleting stack '%s' in %s", p.stackName, p.region)
	if _, err := p.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: awssdk.String(p.stackName),
	}); err != nil {
		return fmt.Errorf("failed to delete stack '%s': %w", p.stackName, err)
	}

	return p.waitForStackGone(ctx)
}

func (p *Provider) waitForStackStatus(ctx context.Context, desired cfntypes.StackStatus) error {
	deadline := time.Now().Add(stackWaitTimeout)

	for {
		out, err := p.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
			StackName: awssdk.String(p.stackName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe stack '%s': %w", p.stackName, err)
		}
		if len(out.Stacks) == 0 {
			return fmt.Errorf("stack '%s' not found", p.stackName)
		}

		status := out.Stacks[0].StackStatus
		if status == desired {
			return nil
		}
		if isStackFailure(status) {
			return fmt.Errorf("stack '%s' reached status %s", p.stackName, status)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out while waiting for stack '%s' to reach %s (still in %s)", p.stackName, desired, status)
		}

		log.Infof("waiting for stack '%s': %s", p.stackName, status)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(stackWaitStep):
		}
	}
}

func (p *Provider) waitForStackGone(ctx context.Context) error {
	deadline := time.Now().Add(stackWaitTimeout)

	for {
		out, err := p.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
			StackName: awssdk.String(p.stackName),
		})
		// DescribeStacks errors once the stack no longer exists
		if err != nil || len(out.Stacks) == 0 {
			return nil
		}

		status := out.Stacks[0].StackStatus
		if status == cfntypes.StackStatusDeleteComplete {
			return nil
		}
		if status == cfntypes.StackStatusDeleteFailed {
			return fmt.Errorf("stack '%s' failed to delete", p.stackName)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out while waiting for stack '%s' to delete (still in %s)", p.stackName, status)
		}

		log.Infof("waiting for stack '%s' to delete: %s", p.stackName, status)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(stackWaitStep):
		}
	}
}

func isStackFailure(status cfntypes.StackStatus) bool {
	switch status {
	case cfntypes.StackStatusCreateFailed,
		cfntypes.StackStatusRollbackInProgress,
		cfntypes.StackStatusRollbackComplete,
		cfntypes.StackStatusRollbackFailed,
		cfntypes.StackStatusUpdateFailed,
		cfntypes.StackStatusUpdateRollbackInProgress,
		cfntypes.StackStatusUpdateRollbackComplete,
		cfntypes.StackStatusUpdateRollbackFailed:
		return true
	default:
		return false
	}
}
