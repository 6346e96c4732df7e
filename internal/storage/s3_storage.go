package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
)

// IS3Storage defines the S3 operations used for ad banner images.
type IS3Storage interface {
	GenerateBannerUploadURL(ctx context.Context, userID, filename, contentType string) (string, string, error)
	PublicURL(key string) string
}

type s3Storage struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	return &s3Storage{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// GenerateBannerUploadURL creates a pre-signed PUT URL for a banner upload and
// returns the URL together with the generated object key. The banner
// normalization task picks the object up after the upload completes.
func (s *s3Storage) GenerateBannerUploadURL(ctx context.Context, userID, filename, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("banners/%s/%s_%s", userID, uuid.NewString(), filename)

	presignParams := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presignClient.PresignPutObject(ctx, presignParams, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", objectKey, err)
	}
	return presignedReq.URL, objectKey, nil
}

// PublicURL maps an object key to its public URL.
func (s *s3Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.cfg.BannerBaseS3URL, key)
}
