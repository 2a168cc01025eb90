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
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lime-green/remote-docker/pkg/errors"
)

type fakeEC2 struct {
	instances []ec2types.Instance

	started         []string
	stopped         []string
	protection      map[string]bool
	deletedKeyPairs []string
	importedKeys    map[string][]byte
	deleteKeyErr    error
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{
			{Instances: f.instances},
		},
	}, nil
}

func (f *fakeEC2) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	f.started = append(f.started, params.InstanceIds...)
	for i := range f.instances {
		f.instances[i].State = &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning}
	}
	return &ec2.StartInstancesOutput{}, nil
}

func (f *fakeEC2) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	f.stopped = append(f.stopped, params.InstanceIds...)
	for i := range f.instances {
		f.instances[i].State = &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped}
	}
	return &ec2.StopInstancesOutput{}, nil
}

func (f *fakeEC2) ModifyInstanceAttribute(ctx context.Context, params *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error) {
	if f.protection == nil {
		f.protection = map[string]bool{}
	}
	f.protection[*params.InstanceId] = *params.DisableApiTermination.Value
	return &ec2.ModifyInstanceAttributeOutput{}, nil
}

func (f *fakeEC2) DescribeInstanceAttribute(ctx context.Context, params *ec2.DescribeInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceAttributeOutput, error) {
	return &ec2.DescribeInstanceAttributeOutput{
		DisableApiTermination: &ec2types.AttributeBooleanValue{
			Value: awssdk.Bool(f.protection[*params.InstanceId]),
		},
	}, nil
}

func (f *fakeEC2) DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	f.deletedKeyPairs = append(f.deletedKeyPairs, *params.KeyName)
	if f.deleteKeyErr != nil {
		return nil, f.deleteKeyErr
	}
	return &ec2.DeleteKeyPairOutput{}, nil
}

func (f *fakeEC2) ImportKeyPair(ctx context.Context, params *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error) {
	if f.importedKeys == nil {
		f.importedKeys = map[string][]byte{}
	}
	f.importedKeys[*params.KeyName] = params.PublicKeyMaterial
	return &ec2.ImportKeyPairOutput{}, nil
}

type fakeCFN struct {
	created     []*cloudformation.CreateStackInput
	updated     []*cloudformation.UpdateStackInput
	deleted     []string
	stackStatus cfntypes.StackStatus
	gone        bool
}

func (f *fakeCFN) CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.created = append(f.created, params)
	return &cloudformation.CreateStackOutput{}, nil
}

func (f *fakeCFN) UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.updated = append(f.updated, params)
	return &cloudformation.UpdateStackOutput{}, nil
}

func (f *fakeCFN) DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.deleted = append(f.deleted, *params.StackName)
	f.gone = true
	return &cloudformation.DeleteStackOutput{}, nil
}

func (f *fakeCFN) DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	if f.gone {
		return &cloudformation.DescribeStacksOutput{}, nil
	}
	return &cloudformation.DescribeStacksOutput{
		Stacks: []cfntypes.Stack{
			{StackName: params.StackName, StackStatus: f.stackStatus},
		},
	}, nil
}

func instance(id, state, ip string) ec2types.Instance {
	inst := ec2types.Instance{
		InstanceId: awssdk.String(id),
		State:      &ec2types.InstanceState{Name: ec2types.InstanceStateName(state)},
	}
	if ip != "" {
		inst.PublicIpAddress = awssdk.String(ip)
	}
	return inst
}

func newTestProvider(ec2Client EC2API, cfnClient CloudFormationAPI) *Provider {
	return &Provider{
		ec2:          ec2Client,
		cfn:          cfnClient,
		region:       "ca-central-1",
		instanceType: "t3.medium",
		serviceName:  "remote-docker-ec2-agent",
		keyPairName:  "remote-docker-keypair",
		stackName:    "remote-docker-dev-application",
		volumeSize:   30,
	}
}

func TestGetIP(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(&fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "running", "1.2.3.4"),
	}}, nil)

	ip, err := p.GetIP(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)
}

func TestGetIPNotRunning(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(&fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "stopped", ""),
	}}, nil)

	_, err := p.GetIP(ctx)
	assert.Equal(t, errors.ErrInstanceNotRunning, err)
}

func TestGetIPNoInstance(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(&fakeEC2{}, nil)

	_, err := p.GetIP(ctx)
	assert.Equal(t, errors.ErrInstanceNotFound, err)
}

func TestGetInstanceSkipsTerminated(t *testing.T) {
	ctx := context.Background()

	// a terminated instance from an earlier create/delete cycle lingers in
	// DescribeInstances for a while and must not shadow the live one
	p := newTestProvider(&fakeEC2{instances: []ec2types.Instance{
		instance("i-old", "terminated", ""),
		instance("i-new", "running", "1.2.3.4"),
	}}, nil)

	ip, err := p.GetIP(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)
}

func TestGetInstanceAmbiguous(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(&fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "running", "1.2.3.4"),
		instance("i-2", "running", "5.6.7.8"),
	}}, nil)

	_, err := p.GetIP(ctx)
	assert.Error(t, err)
}

func TestStartInstance(t *testing.T) {
	ctx := context.Background()

	client := &fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "stopped", ""),
	}}
	p := newTestProvider(client, nil)

	require.NoError(t, p.StartInstance(ctx))
	assert.Equal(t, []string{"i-1"}, client.started)

	state, err := p.InstanceState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "running", state)
}

func TestStopInstance(t *testing.T) {
	ctx := context.Background()

	client := &fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "running", "1.2.3.4"),
	}}
	p := newTestProvider(client, nil)

	require.NoError(t, p.StopInstance(ctx))
	assert.Equal(t, []string{"i-1"}, client.stopped)
}

func TestTerminationProtection(t *testing.T) {
	ctx := context.Background()

	client := &fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "running", "1.2.3.4"),
	}}
	p := newTestProvider(client, nil)

	enabled, err := p.TerminationProtectionEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, p.SetTerminationProtection(ctx, true))
	enabled, err = p.TerminationProtectionEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, p.SetTerminationProtection(ctx, false))
	enabled, err = p.TerminationProtectionEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestImportPublicKey(t *testing.T) {
	ctx := context.Background()

	client := &fakeEC2{}
	p := newTestProvider(client, nil)

	material := []byte("ssh-rsa AAAA test")
	require.NoError(t, p.ImportPublicKey(ctx, material))

	// the old keypair is deleted first so the import can't collide
	assert.Equal(t, []string{"remote-docker-keypair"}, client.deletedKeyPairs)
	assert.Equal(t, material, client.importedKeys["remote-docker-keypair"])
}

func TestImportPublicKeyIgnoresDeleteFailure(t *testing.T) {
	ctx := context.Background()

	client := &fakeEC2{deleteKeyErr: assert.AnError}
	p := newTestProvider(client, nil)

	require.NoError(t, p.ImportPublicKey(ctx, []byte("ssh-rsa AAAA test")))
	assert.Len(t, client.importedKeys, 1)
}

func TestCreateStack(t *testing.T) {
	ctx := context.Background()

	ec2Client := &fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "running", "1.2.3.4"),
	}}
	cfnClient := &fakeCFN{stackStatus: cfntypes.StackStatusCreateComplete}
	p := newTestProvider(ec2Client, cfnClient)

	require.NoError(t, p.CreateStack(ctx))
	require.Len(t, cfnClient.created, 1)

	created := cfnClient.created[0]
	assert.Equal(t, "remote-docker-dev-application", *created.StackName)

	params := map[string]string{}
	for _, parameter := range created.Parameters {
		params[*parameter.ParameterKey] = *parameter.ParameterValue
	}
	assert.Equal(t, "remote-docker-keypair", params["KeyPairName"])
	assert.Equal(t, "t3.medium", params["InstanceType"])
	assert.Equal(t, "remote-docker-ec2-agent", params["ServiceName"])
	assert.Equal(t, "30", params["VolumeSize"])
	assert.NotEmpty(t, params["ImageId"])
}

func TestCreateStackUnknownRegion(t *testing.T) {
	ctx := context.Background()

	p := newTestProvider(&fakeEC2{}, &fakeCFN{})
	p.region = "mars-north-1"

	err := p.CreateStack(ctx)
	assert.Error(t, err)
}

func TestCreateStackRollback(t *testing.T) {
	ctx := context.Background()

	cfnClient := &fakeCFN{stackStatus: cfntypes.StackStatusRollbackComplete}
	p := newTestProvider(&fakeEC2{}, cfnClient)

	err := p.CreateStack(ctx)
	assert.Error(t, err)
}

func TestUpdateStack(t *testing.T) {
	ctx := context.Background()

	ec2Client := &fakeEC2{instances: []ec2types.Instance{
		instance("i-1", "running", "1.2.3.4"),
	}}
	cfnClient := &fakeCFN{stackStatus: cfntypes.StackStatusUpdateComplete}
	p := newTestProvider(ec2Client, cfnClient)
	p.instanceType = "c5.4xlarge"
	p.volumeSize = 100

	require.NoError(t, p.UpdateStack(ctx))
	require.Len(t, cfnClient.updated, 1)

	updated := cfnClient.updated[0]
	assert.Equal(t, "remote-docker-dev-application", *updated.StackName)
	assert.NotEmpty(t, *updated.TemplateBody)

	params := map[string]string{}
	for _, parameter := range updated.Parameters {
		params[*parameter.ParameterKey] = *parameter.ParameterValue
	}
	assert.Equal(t, "c5.4xlarge", params["InstanceType"])
	assert.Equal(t, "100", params["VolumeSize"])
	assert.Equal(t, "remote-docker-keypair", params["KeyPairName"])
}

func TestUpdateStackRollback(t *testing.T) {
	ctx := context.Background()

	cfnClient := &fakeCFN{stackStatus: cfntypes.StackStatusUpdateRollbackComplete}
	p := newTestProvider(&fakeEC2{}, cfnClient)

	err := p.UpdateStack(ctx)
	assert.Error(t, err)
}

func TestDeleteStack(t *testing.T) {
	ctx := context.Background()

	cfnClient := &fakeCFN{stackStatus: cfntypes.StackStatusCreateComplete}
	p := newTestProvider(&fakeEC2{}, cfnClient)

	require.NoError(t, p.DeleteStack(ctx))
	assert.Equal(t, []string{"remote-docker-dev-application"}, cfnClient.deleted)
}
