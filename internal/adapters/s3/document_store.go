package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
)

// Config contains configuration for the S3 document store
type Config struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: Custom endpoint (MinIO or LocalStack)
	Endpoint string

	// Force path-style addressing (required by MinIO)
	UsePathStyle bool
}

// DocumentStore implements ports.DocumentStore backed by S3-compatible
// object storage
type DocumentStore struct {
	client *s3.Client
	logger *zap.Logger
}

// NewDocumentStore creates a new S3 document store
func NewDocumentStore(ctx context.Context, cfg *Config, logger *zap.Logger) (*DocumentStore, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	logger.Info("S3 document store initialized",
		zap.String("region", cfg.Region),
	)

	return &DocumentStore{
		client: s3.NewFromConfig(awsConfig, clientOptions...),
		logger: logger,
	}, nil
}

// Get retrieves a stored object by bucket and path. The returned body must
// be closed by the caller.
func (s *DocumentStore) Get(ctx context.Context, bucket, path string) (*ports.Document, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		var noBucket *s3types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeStoreUnavailable, "object storage unavailable", err)
	}

	doc := &ports.Document{
		Body:        output.Body,
		ContentType: aws.ToString(output.ContentType),
	}
	if output.ContentLength != nil {
		doc.ContentLength = *output.ContentLength
	}
	if doc.ContentType == "" {
		doc.ContentType = "application/octet-stream"
	}
	return doc, nil
}
