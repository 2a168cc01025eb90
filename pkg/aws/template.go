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

// stackTemplate is the CloudFormation template of the agent: one EC2
// instance tagged with the service name so it can be found again, a
// security group that only admits SSH, and an Elastic IP so the address
// survives stop/start cycles.
const stackTemplate = `
AWSTemplateFormatVersion: "2010-09-09"
Description: remote-docker agent

Parameters:
  KeyPairName:
    Type: String
  ImageId:
    Type: AWS::EC2::Image::Id
  InstanceType:
    Type: String
  ServiceName:
    Type: String
  VolumeSize:
    Type: Number

Resources:
  SecurityGroup:
    Type: AWS::EC2::SecurityGroup
    Properties:
      GroupDescription: SSH access to the remote-docker agent
      SecurityGroupIngress:
        - IpProtocol: tcp
          FromPort: 22
          ToPort: 22
          CidrIp: 0.0.0.0/0

  Instance:
    Type: AWS::EC2::Instance
    Properties:
      ImageId: !Ref ImageId
      InstanceType: !Ref InstanceType
      KeyName: !Ref KeyPairName
      SecurityGroupIds:
        - !GetAtt SecurityGroup.GroupId
      BlockDeviceMappings:
        - DeviceName: /dev/sda1
          Ebs:
            VolumeSize: !Ref VolumeSize
            VolumeType: gp3
            DeleteOnTermination: true
      Tags:
        - Key: service
          Value: !Ref ServiceName

  ElasticIP:
    Type: AWS::EC2::EIP
    Properties:
      InstanceId: !Ref Instance

Outputs:
  InstanceId:
    Value: !Ref Instance
  PublicIp:
    Value: !Ref ElasticIP
`
