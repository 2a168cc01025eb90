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

// Package aws drives the lifecycle of the EC2 agent instance. The cloud
// control plane is an external collaborator: this package only translates
// resolved configuration into SDK calls and interprets their responses.
package aws

import (
	"context"
	"fmt"
	"net"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
)

const (
	stateWaitTimeout = 120 * time.Second
	stateWaitStep    = 5 * time.Second
)

// EC2API is the slice of the EC2 client the provider uses
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	ModifyInstanceAttribute(ctx context.Context, params *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error)
	DescribeInstanceAttribute(ctx context.Context, params *ec2.DescribeInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceAttributeOutput, error)
	DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error)
	ImportKeyPair(ctx context.Context, params *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error)
}

// CloudFormationAPI is the slice of the CloudFormation client the provider uses
type CloudFormationAPI interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// Provider manages the EC2 agent instance for one resolved configuration
type Provider struct {
	ec2 EC2API
	cfn CloudFormationAPI

	region       string
	instanceType string
	serviceName  string
	keyPairName  string
	stackName    string
	volumeSize   int
}

// NewProvider resolves the AWS region and credentials (config value first,
// then the SDK's default chain: environment, shared config) and returns a
// provider for the agent instance. A region that can't be resolved is a
// MissingCredentialError: it is only raised here, when an operation
// actually needs AWS, never at config load time.
func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, errors.MissingCredentialError{Credential: "aws_region"}
	}

	return &Provider{
		ec2:          ec2.NewFromConfig(awsCfg),
		cfn:          cloudformation.NewFromConfig(awsCfg),
		region:       awsCfg.Region,
		instanceType: cfg.InstanceType,
		serviceName:  cfg.InstanceServiceName(),
		keyPairName:  cfg.KeyPairName(),
		stackName:    fmt.Sprintf("%s-dev-application", cfg.ProjectCode()),
		volumeSize:   cfg.VolumeSize,
	}, nil
}

// Region returns the resolved AWS region
func (p *Provider) Region() string {
	return p.region
}

func (p *Provider) getInstance(ctx context.Context) (*ec2types.Instance, error) {
	out, err := p.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   awssdk.String("tag:service"),
				Values: []string{p.serviceName},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}

	var instances []ec2types.Instance
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			if instance.State != nil && instance.State.Name != ec2types.InstanceStateNameTerminated {
				instances = append(instances, instance)
			}
		}
	}

	if len(instances) == 0 {
		return nil, errors.ErrInstanceNotFound
	}
	if len(instances) > 1 {
		return nil, fmt.Errorf("found %d instances tagged service=%s, expected exactly one", len(instances), p.serviceName)
	}

	return &instances[0], nil
}

// InstanceState returns the lifecycle state of the agent instance
func (p *Provider) InstanceState(ctx context.Context) (string, error) {
	instance, err := p.getInstance(ctx)
	if err != nil {
		return "", err
	}
	return string(instance.State.Name), nil
}

// GetIP returns the public IP of the agent instance. The instance must be running.
func (p *Provider) GetIP(ctx context.Context) (string, error) {
	instance, err := p.getInstance(ctx)
	if err != nil {
		return "", err
	}
	if instance.State.Name != ec2types.InstanceStateNameRunning {
		return "", errors.ErrInstanceNotRunning
	}
	if instance.PublicIpAddress == nil {
		return "", fmt.Errorf("instance has no public IP address")
	}
	return *instance.PublicIpAddress, nil
}

// StartInstance starts the agent instance and waits for it to be running
func (p *Provider) StartInstance(ctx context.Context) error {
	instance, err := p.getInstance(ctx)
	if err != nil {
		return err
	}

	if _, err := p.ec2.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{*instance.InstanceId},
	}); err != nil {
		return fmt.Errorf("failed to start instance: %w", err)
	}

	return p.waitForInstanceState(ctx, string(ec2types.InstanceStateNameRunning))
}

// StopInstance stops the agent instance and waits for it to be stopped
func (p *Provider) StopInstance(ctx context.Context) error {
	instance, err := p.getInstance(ctx)
	if err != nil {
		return err
	}

	if _, err := p.ec2.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{*instance.InstanceId},
	}); err != nil {
		return fmt.Errorf("failed to stop instance: %w", err)
	}

	return p.waitForInstanceState(ctx, string(ec2types.InstanceStateNameStopped))
}

// SetTerminationProtection toggles the instance's API termination protection
func (p *Provider) SetTerminationProtection(ctx context.Context, enabled bool) error {
	instance, err := p.getInstance(ctx)
	if err != nil {
		return err
	}

	if _, err := p.ec2.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId:            instance.InstanceId,
		DisableApiTermination: &ec2types.AttributeBooleanValue{Value: awssdk.Bool(enabled)},
	}); err != nil {
		return fmt.Errorf("failed to modify termination protection: %w", err)
	}

	return nil
}

// TerminationProtectionEnabled reports whether the instance is protected
// against API termination
func (p *Provider) TerminationProtectionEnabled(ctx context.Context) (bool, error) {
	instance, err := p.getInstance(ctx)
	if err != nil {
		return false, err
	}

	out, err := p.ec2.DescribeInstanceAttribute(ctx, &ec2.DescribeInstanceAttributeInput{
		InstanceId: instance.InstanceId,
		Attribute:  ec2types.InstanceAttributeNameDisableApiTermination,
	})
	if err != nil {
		return false, fmt.Errorf("failed to describe termination protection: %w", err)
	}

	return out.DisableApiTermination != nil && out.DisableApiTermination.Value != nil && *out.DisableApiTermination.Value, nil
}

// ImportPublicKey replaces the agent keypair with the given public key material
func (p *Provider) ImportPublicKey(ctx context.Context, material []byte) error {
	// the old key has to go first: ImportKeyPair fails on an existing name
	if _, err := p.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: awssdk.String(p.keyPairName),
	}); err != nil {
		log.Debugf("failed to delete keypair '%s': %s", p.keyPairName, err)
	}

	if _, err := p.ec2.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           awssdk.String(p.keyPairName),
		PublicKeyMaterial: material,
	}); err != nil {
		return fmt.Errorf("failed to import keypair '%s': %w", p.keyPairName, err)
	}

	log.Infof("imported public key as keypair '%s'", p.keyPairName)
	return nil
}

func (p *Provider) waitForInstanceState(ctx context.Context, desired string) error {
	deadline := time.Now().Add(stateWaitTimeout)

	for {
		state, err := p.InstanceState(ctx)
		if err != nil {
			return err
		}
		if state == desired {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out while waiting for instance to reach %s state (still in %s)", desired, state)
		}

		log.Infof("waiting for instance to reach %s state", desired)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(stateWaitStep):
		}
	}
}

// WaitForSSH waits until the instance accepts TCP connections on port 22
func WaitForSSH(ctx context.Context, ip string) error {
	addr := net.JoinHostPort(ip, "22")

	for attempts := 0; attempts < 10; attempts++ {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err == nil {
			conn.Close()
			return nil
		}

		log.Debugf("%s is not reachable yet: %s", addr, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return fmt.Errorf("%s has not opened", addr)
}
