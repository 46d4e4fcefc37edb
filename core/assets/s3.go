package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gridshop/functions/core/logger"
)

// S3Configuration contains the configuration for the S3 asset host
type S3Configuration struct {
	AWSBucketName string
	AWSRegion     string
	AccessID      string
	AccessKey     string
}

// S3 is the implementation of the asset host for AWS S3
type S3 struct {
	config aws.Config
	bucket string
	region string
}

// NewS3 returns a new S3 asset host
func NewS3(hostConfig S3Configuration) (*S3, error) {
	if hostConfig.AWSBucketName == "" {
		return nil, fmt.Errorf("AWSBucketName must not be empty")
	}

	config, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithRegion(hostConfig.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(hostConfig.AccessID, hostConfig.AccessKey, "")),
	)
	if err != nil {
		return nil, err
	}
	logger.Default().Debugln("S3 asset host enabled")
	s := S3{config, hostConfig.AWSBucketName, hostConfig.AWSRegion}
	return &s, nil
}

// UploadData uploads data into a new key object and returns its public URL
func (s *S3) UploadData(ctx context.Context, key string, data []byte) (string, error) {
	client := s3.NewFromConfig(s.config)

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file, %v", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
