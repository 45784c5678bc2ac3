package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pos-billing/internal/common/config"
)

// ReceiptStore archives text receipts in an S3-compatible bucket (R2, MinIO, AWS).
type ReceiptStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func ReceiptKey(billNumber string) string { return "receipts/" + billNumber + ".txt" }

func NewReceiptStore(ctx context.Context, c config.Storage) (*ReceiptStore, error) {
	if c.Bucket == "" {
		return nil, errors.New("storage bucket is not configured")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(c.PublicBaseURL, "/")
	if baseURL == "" && c.Endpoint != "" {
		baseURL = strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	}
	return &ReceiptStore{client: client, bucket: c.Bucket, baseURL: baseURL}, nil
}

// PutReceipt uploads body under key and returns its public URL.
func (r *ReceiptStore) PutReceipt(ctx context.Context, key string, body []byte) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return r.URL(key), nil
}

func (r *ReceiptStore) URL(key string) string {
	if r.baseURL == "" {
		return fmt.Sprintf("s3://%s/%s", r.bucket, key)
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key)
}
