// internal/common/aws/sns.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes to one topic.
type SNSClient struct {
	client   SNSAPI
	topicARN string
}

func NewSNSClient(cfg aws.Config, topicARN string) *SNSClient {
	return NewSNSClientWithAPI(sns.NewFromConfig(cfg), topicARN)
}

func NewSNSClientWithAPI(client SNSAPI, topicARN string) *SNSClient {
	return &SNSClient{client: client, topicARN: topicARN}
}

// Publish sends message to the topic and returns the message id.
func (s *SNSClient) Publish(ctx context.Context, subject, message string) (string, error) {
	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(message),
	}
	if subject != "" {
		input.Subject = aws.String(subject)
	}
	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
