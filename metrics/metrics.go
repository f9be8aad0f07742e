package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/jsphweid/accompanist/logger"
)

const (
	namespace = "Accompanist/Pipeline"
	timeout   = 5 * time.Second
)

// Recorder receives the duration and outcome of each pipeline stage.
type Recorder interface {
	RecordStage(stage string, d time.Duration, err error)
}

type Nop struct{}

func (Nop) RecordStage(string, time.Duration, error) {}

// CloudWatch publishes StageLatency for every stage and StageErrors for
// failed ones. Publishing is synchronous so a CLI run does not exit with
// metrics still in flight.
type CloudWatch struct {
	client      cloudwatchiface.CloudWatchAPI
	environment string
}

func NewCloudWatch(client cloudwatchiface.CloudWatchAPI, environment string) *CloudWatch {
	return &CloudWatch{client: client, environment: environment}
}

func Open(region, environment string) (*CloudWatch, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("could not create a CloudWatch session: %w", err)
	}
	logger.Info("CloudWatch metrics enabled", logger.Fields{"namespace": namespace})
	return NewCloudWatch(cloudwatch.New(sess), environment), nil
}

func (c *CloudWatch) RecordStage(stage string, d time.Duration, err error) {
	dimensions := []*cloudwatch.Dimension{
		{Name: aws.String("Stage"), Value: aws.String(stage)},
		{Name: aws.String("Environment"), Value: aws.String(c.environment)},
	}
	data := []*cloudwatch.MetricDatum{{
		MetricName: aws.String("StageLatency"),
		Unit:       aws.String(cloudwatch.StandardUnitMilliseconds),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Dimensions: dimensions,
	}}
	if err != nil {
		data = append(data, &cloudwatch.MetricDatum{
			MetricName: aws.String("StageErrors"),
			Unit:       aws.String(cloudwatch.StandardUnitCount),
			Value:      aws.Float64(1),
			Dimensions: dimensions,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, putErr := c.client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	if putErr != nil {
		logger.Warn("Failed to record stage metrics", logger.Fields{"stage": stage, "error": putErr.Error()})
	}
}
