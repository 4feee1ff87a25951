package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes shortlist notifications.
type SNSClient struct {
	client   snsAPI
	topicARN string
}

func NewSNSClient(cfg aws.Config, topicARN string) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

// ShortlistEvent is sent when a resume scores at or above the shortlist threshold.
type ShortlistEvent struct {
	JobTitle string `json:"job_title"`
	Company  string `json:"company,omitempty"`
	Score    int    `json:"score"`
}

// PublishShortlist publishes the event as JSON with a job_title message attribute.
func (s *SNSClient) PublishShortlist(ctx context.Context, event ShortlistEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String("ATS shortlist candidate"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"job_title": {DataType: aws.String("String"), StringValue: aws.String(event.JobTitle)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
